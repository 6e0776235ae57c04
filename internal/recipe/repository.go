package recipe

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// FindByProduct returns the product's recipe with its lines ordered by position, or
	// nil when the product has none.
	FindByProduct(ctx context.Context, venueID, productID string) (*model.Recipe, error)

	// FindActiveRawMaterials is the bulk existence check. Only active, non-deleted raw
	// materials of the venue are returned.
	FindActiveRawMaterials(ctx context.Context, venueID string, ids []string) ([]model.RawMaterial, error)

	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe) error
	InsertLines(ctx context.Context, lines []model.RecipeLine) error
	DeleteLines(ctx context.Context, recipeID string) error
}
