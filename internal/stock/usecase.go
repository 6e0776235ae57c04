package stock

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
)

type UseCase interface {
	DeductFIFO(ctx context.Context, input *dto.DeductFIFOInput) (*dto.FIFOResult, error)
	ReceiveBatch(ctx context.Context, input *dto.ReceiveBatchInput) (*model.StockBatch, error)
	ListLowStock(ctx context.Context, venueID string) ([]model.RawMaterial, error)
	Reconcile(ctx context.Context, venueID string) ([]dto.StockDivergence, error)
}
