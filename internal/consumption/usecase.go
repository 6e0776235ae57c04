package consumption

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/consumption/dto"
	recipedto "github.com/fekuna/omnipos-inventory-service/internal/recipe/dto"
)

type UseCase interface {
	// Deduct consumes stock for one sold order line. It is not idempotent: callers guard
	// against replays.
	Deduct(ctx context.Context, input *dto.DeductInput) (*dto.DeductionResult, error)
	ValidateRecipeIngredients(ctx context.Context, venueID string, rawMaterialIDs []string) (*recipedto.ValidationResult, error)
}
