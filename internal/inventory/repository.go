package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// Inventory Items
	GetByProduct(ctx context.Context, venueID, productID string) (*model.Inventory, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.Inventory, int, error)

	// LockByProduct takes the row lock with NOWAIT. Must run inside a transaction.
	LockByProduct(ctx context.Context, venueID, productID string) (*model.Inventory, error)
	UpdateStock(ctx context.Context, inv *model.Inventory) error

	// Movements / Audit
	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
