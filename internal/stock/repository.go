package stock

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Row locks, NOWAIT. Must run inside a transaction.
	LockRawMaterial(ctx context.Context, venueID, rawMaterialID string) (*model.RawMaterial, error)
	LockAvailableBatches(ctx context.Context, rawMaterialID string) ([]model.StockBatch, error)

	// Writes
	InsertBatch(ctx context.Context, batch *model.StockBatch) error
	UpdateBatchRemaining(ctx context.Context, batchID string, remaining decimal.Decimal) error
	UpdateRawMaterialStock(ctx context.Context, rm *model.RawMaterial) error
	InsertMovements(ctx context.Context, movements []model.RawMaterialMovement) error

	// Reads for alerting and reconciliation
	ListLowStock(ctx context.Context, venueID string) ([]model.RawMaterial, error)
	FindDivergent(ctx context.Context, venueID string) ([]dto.StockDivergence, error)
}
