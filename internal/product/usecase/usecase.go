package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo   product.Repository
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		logger: log,
	}
}

// ResolveMethod decides how the product's stock is tracked. It only reads.
func (uc *productUseCase) ResolveMethod(ctx context.Context, venueID, productID string) (model.InventoryMethod, error) {
	p, err := uc.repo.FindForResolution(ctx, venueID, productID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", apperror.NewNotFound("product %s not found", productID)
	}

	if !p.TrackInventory {
		return model.InventoryMethodNone, nil
	}

	if p.InventoryMethod != nil && *p.InventoryMethod != "" {
		method := model.InventoryMethod(*p.InventoryMethod)
		if !method.Valid() {
			return "", fmt.Errorf("product %s has unknown inventory method %q", productID, *p.InventoryMethod)
		}
		return method, nil
	}

	// Legacy products predate explicit tagging: a recipe implies RECIPE.
	if p.HasRecipe {
		uc.logger.Debug("inventory method inferred from recipe",
			zap.String("venue_id", venueID),
			zap.String("product_id", productID),
		)
		return model.InventoryMethodRecipe, nil
	}
	return model.InventoryMethodNone, nil
}

func (uc *productUseCase) BackfillInventoryMethods(ctx context.Context, venueID string) (int64, error) {
	n, err := uc.repo.BackfillInventoryMethods(ctx, venueID)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("backfilled inventory methods",
		zap.String("venue_id", venueID),
		zap.Int64("products_updated", n),
	)
	return n, nil
}
