package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	tx     postgres.Transactor
	logger logger.ZapLogger
	now    func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, tx postgres.Transactor, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		tx:     tx,
		logger: log,
		now:    time.Now,
	}
}

// DeductStock decrements a QUANTITY-tracked product and logs one SALE movement. A missing
// inventory row is a data error and is never created here.
func (uc *inventoryUseCase) DeductStock(ctx context.Context, input *dto.DeductStockInput) (*model.Inventory, error) {
	if !input.Quantity.IsPositive() {
		return nil, apperror.NewValidation("deduction quantity must be positive")
	}

	var inv *model.Inventory
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 1. Lock the counter row
		var err error
		inv, err = uc.repo.LockByProduct(ctx, input.VenueID, input.ProductID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperror.NewNotFound("no inventory record for product %s", input.ProductID)
		}

		if inv.CurrentStock.LessThan(input.Quantity) {
			return apperror.NewInsufficientStock("product "+input.ProductID, input.Quantity, inv.CurrentStock)
		}

		// 2. Decrement and log the movement in the same transaction
		now := uc.now()
		previous := inv.CurrentStock
		inv.CurrentStock = previous.Sub(input.Quantity)
		inv.UpdatedAt = now

		reason := input.Reason
		if reason == "" {
			reason = "Order Sale"
		}
		movement := &model.InventoryMovement{
			ID:            uuid.New().String(),
			VenueID:       input.VenueID,
			ProductID:     input.ProductID,
			Type:          model.InventoryMovementSale,
			Quantity:      input.Quantity.Neg(),
			PreviousStock: previous,
			NewStock:      inv.CurrentStock,
			Reason:        reason,
			Reference:     optional(input.Reference),
			CreatedBy:     optional(input.ActorID),
			CreatedAt:     now,
		}

		if err := uc.repo.UpdateStock(ctx, inv); err != nil {
			return err
		}
		return uc.repo.LogMovement(ctx, movement)
	})
	if err != nil {
		return nil, apperror.FromTx(err, "inventory of product "+input.ProductID)
	}
	return inv, nil
}

func (uc *inventoryUseCase) GetProductInventory(ctx context.Context, venueID, productID string) (*model.Inventory, error) {
	inv, err := uc.repo.GetByProduct(ctx, venueID, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFound("no inventory record for product %s", productID)
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, venueID string, page, pageSize int) ([]model.Inventory, int, error) {
	return uc.repo.FindAll(ctx, &dto.InventoryFilters{
		VenueID:  venueID,
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
