package recipe

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	Expand(ctx context.Context, venueID, productID string, quantitySold decimal.Decimal, skipOptional []string) ([]dto.ConsumptionRequest, error)
	ValidateRecipeIngredients(ctx context.Context, venueID string, rawMaterialIDs []string) (*dto.ValidationResult, error)

	// Management-time mutations
	CreateRecipe(ctx context.Context, input *dto.CreateRecipeInput) (*model.Recipe, error)
	ReplaceRecipeLines(ctx context.Context, input *dto.ReplaceRecipeLinesInput) (*model.Recipe, error)
	AddRecipeLine(ctx context.Context, input *dto.AddRecipeLineInput) (*model.Recipe, error)
}
