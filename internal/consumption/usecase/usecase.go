package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	inventorydto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe"
	recipedto "github.com/fekuna/omnipos-inventory-service/internal/recipe/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/stock"
	stockdto "github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("omnipos-inventory-service/consumption")

type consumptionUseCase struct {
	products  product.UseCase
	inventory inventory.UseCase
	recipes   recipe.UseCase
	stock     stock.UseCase
	tx        postgres.Transactor
	logger    logger.ZapLogger
}

func NewConsumptionUseCase(
	products product.UseCase,
	inventory inventory.UseCase,
	recipes recipe.UseCase,
	stock stock.UseCase,
	tx postgres.Transactor,
	log logger.ZapLogger,
) consumption.UseCase {
	return &consumptionUseCase{
		products:  products,
		inventory: inventory,
		recipes:   recipes,
		stock:     stock,
		tx:        tx,
		logger:    log,
	}
}

// Deduct resolves the product's inventory method and consumes stock accordingly. Every
// write of one call shares a single transaction, so a failure leaves nothing behind.
func (uc *consumptionUseCase) Deduct(ctx context.Context, input *dto.DeductInput) (*dto.DeductionResult, error) {
	log := uc.logger.With(
		zap.String("venue_id", input.VenueID),
		zap.String("product_id", input.ProductID),
		zap.String("order_reference", input.OrderReference),
	)

	if !input.Quantity.IsPositive() {
		err := apperror.NewValidation("quantity sold must be positive")
		log.Warn("deduction rejected", zap.Error(err))
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "consumption.Deduct", trace.WithAttributes(
		attribute.String("venue_id", input.VenueID),
		attribute.String("product_id", input.ProductID),
		attribute.String("quantity", input.Quantity.String()),
	))
	defer span.End()

	var result *dto.DeductionResult
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		method, err := uc.products.ResolveMethod(ctx, input.VenueID, input.ProductID)
		if err != nil {
			return err
		}

		switch method {
		case model.InventoryMethodNone:
			result = &dto.DeductionResult{
				Method:    method,
				TotalCost: decimal.Zero,
				Message:   "product does not track inventory, no deduction needed",
			}
			return nil
		case model.InventoryMethodQuantity:
			result, err = uc.deductQuantity(ctx, input)
			return err
		case model.InventoryMethodRecipe:
			result, err = uc.deductRecipe(ctx, input)
			return err
		default:
			return fmt.Errorf("unsupported inventory method %q", method)
		}
	})
	if err != nil {
		err = apperror.FromTx(err, "order line of product "+input.ProductID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.logFailure(log, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("method", string(result.Method)),
		attribute.Int("items_affected", result.ItemsAffected),
	)
	log.Info("order line deducted",
		zap.String("method", string(result.Method)),
		zap.Int("items_affected", result.ItemsAffected),
		zap.String("total_cost", result.TotalCost.String()),
	)
	return result, nil
}

func (uc *consumptionUseCase) deductQuantity(ctx context.Context, input *dto.DeductInput) (*dto.DeductionResult, error) {
	inv, err := uc.inventory.DeductStock(ctx, &inventorydto.DeductStockInput{
		VenueID:   input.VenueID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Reason:    "Order Sale",
		Reference: input.OrderReference,
		ActorID:   input.ActorID,
	})
	if err != nil {
		return nil, err
	}

	remaining := inv.CurrentStock
	return &dto.DeductionResult{
		Method:         model.InventoryMethodQuantity,
		ItemsAffected:  1,
		RemainingStock: &remaining,
		TotalCost:      decimal.Zero,
		Message:        fmt.Sprintf("deducted %s from product stock, %s remaining", input.Quantity, remaining),
	}, nil
}

// deductRecipe draws every ingredient through the FIFO ledger. Ingredients are processed
// in raw material id order so concurrent orders lock rows in the same sequence; the
// result keeps recipe order.
func (uc *consumptionUseCase) deductRecipe(ctx context.Context, input *dto.DeductInput) (*dto.DeductionResult, error) {
	requests, err := uc.recipes.Expand(ctx, input.VenueID, input.ProductID, input.Quantity, input.SkipOptional)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(requests))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return requests[order[a]].RawMaterialID < requests[order[b]].RawMaterialID
	})

	ingredients := make([]dto.IngredientDeduction, len(requests))
	total := decimal.Zero
	for _, i := range order {
		req := requests[i]
		res, err := uc.stock.DeductFIFO(ctx, &stockdto.DeductFIFOInput{
			VenueID:       input.VenueID,
			RawMaterialID: req.RawMaterialID,
			Quantity:      req.RequiredQuantity,
			MovementType:  model.RawMaterialMovementUsage,
			Reason:        "Recipe consumption for product " + input.ProductID,
			Reference:     input.OrderReference,
			ActorID:       input.ActorID,
		})
		if err != nil {
			return nil, fmt.Errorf("deduct ingredient %s: %w", req.RawMaterialID, err)
		}
		ingredients[i] = dto.IngredientDeduction{
			RawMaterialID:  req.RawMaterialID,
			Unit:           req.Unit,
			Quantity:       req.RequiredQuantity,
			IsOptional:     req.IsOptional,
			Allocations:    res.Allocations,
			TotalCost:      res.TotalCost,
			RemainingStock: res.NewStock,
		}
		total = total.Add(res.TotalCost)
	}

	message := fmt.Sprintf("deducted %d ingredients", len(ingredients))
	if len(ingredients) == 0 {
		message = "every recipe line was skipped, no deduction needed"
	}
	return &dto.DeductionResult{
		Method:        model.InventoryMethodRecipe,
		ItemsAffected: len(ingredients),
		Ingredients:   ingredients,
		TotalCost:     total,
		Message:       message,
	}, nil
}

func (uc *consumptionUseCase) ValidateRecipeIngredients(ctx context.Context, venueID string, rawMaterialIDs []string) (*recipedto.ValidationResult, error) {
	res, err := uc.recipes.ValidateRecipeIngredients(ctx, venueID, rawMaterialIDs)
	if err != nil {
		uc.logger.Error("recipe ingredient validation failed",
			zap.String("venue_id", venueID),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

// Business outcomes are warnings; anything else is a system fault.
func (uc *consumptionUseCase) logFailure(log logger.ZapLogger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindUnknown {
		log.Error("deduction failed", zap.Error(err))
		return
	}
	log.Warn("deduction rejected",
		zap.String("kind", kind.String()),
		zap.Bool("retryable", apperror.IsRetryable(err)),
		zap.Error(err),
	)
}
