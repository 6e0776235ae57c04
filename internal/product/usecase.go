package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	ResolveMethod(ctx context.Context, venueID, productID string) (model.InventoryMethod, error)
	BackfillInventoryMethods(ctx context.Context, venueID string) (int64, error)
}
