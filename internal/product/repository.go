package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// FindForResolution loads the product together with whether a recipe exists for it.
	FindForResolution(ctx context.Context, venueID, productID string) (*model.Product, error)

	// BackfillInventoryMethods tags tracked legacy products that own a recipe as RECIPE.
	// An empty venueID covers every venue.
	BackfillInventoryMethods(ctx context.Context, venueID string) (int64, error)
}
