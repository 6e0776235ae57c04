package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	DeductStock(ctx context.Context, input *dto.DeductStockInput) (*model.Inventory, error)
	GetProductInventory(ctx context.Context, venueID, productID string) (*model.Inventory, error)
	ListLowStock(ctx context.Context, venueID string, page, pageSize int) ([]model.Inventory, int, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
