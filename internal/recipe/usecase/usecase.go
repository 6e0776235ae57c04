package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// quantityScale matches the NUMERIC(18,4) stock columns.
const quantityScale = 4

type recipeUseCase struct {
	repo   recipe.Repository
	tx     postgres.Transactor
	logger logger.ZapLogger
	now    func() time.Time
}

func NewRecipeUseCase(repo recipe.Repository, tx postgres.Transactor, log logger.ZapLogger) recipe.UseCase {
	return &recipeUseCase{
		repo:   repo,
		tx:     tx,
		logger: log,
		now:    time.Now,
	}
}

// Expand scales every recipe line by quantitySold / portionYield. Optional lines are kept
// unless their raw material id is listed in skipOptional.
func (uc *recipeUseCase) Expand(ctx context.Context, venueID, productID string, quantitySold decimal.Decimal, skipOptional []string) ([]dto.ConsumptionRequest, error) {
	if !quantitySold.IsPositive() {
		return nil, apperror.NewValidation("quantity sold must be positive")
	}

	rec, err := uc.repo.FindByProduct(ctx, venueID, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperror.NewNotFound("no recipe for product %s", productID)
	}
	if !rec.PortionYield.IsPositive() {
		return nil, apperror.NewValidation("recipe " + rec.ID + " has a non-positive portion yield")
	}

	skip, err := skipSet(rec, skipOptional)
	if err != nil {
		return nil, err
	}

	requests := make([]dto.ConsumptionRequest, 0, len(rec.Lines))
	for _, line := range rec.Lines {
		if skip[line.RawMaterialID] {
			continue
		}
		requests = append(requests, dto.ConsumptionRequest{
			RawMaterialID:    line.RawMaterialID,
			RequiredQuantity: line.Quantity.Mul(quantitySold).Div(rec.PortionYield).Round(quantityScale),
			Unit:             line.Unit,
			IsOptional:       line.IsOptional,
		})
	}
	return requests, nil
}

// skipSet only accepts ids of optional lines of rec.
func skipSet(rec *model.Recipe, skipOptional []string) (map[string]bool, error) {
	if len(skipOptional) == 0 {
		return nil, nil
	}
	optional := make(map[string]bool, len(rec.Lines))
	for _, l := range rec.Lines {
		if l.IsOptional {
			optional[l.RawMaterialID] = true
		}
	}
	skip := make(map[string]bool, len(skipOptional))
	var rejected []string
	for _, id := range skipOptional {
		if !optional[id] {
			rejected = append(rejected, id)
			continue
		}
		skip[id] = true
	}
	if len(rejected) > 0 {
		return nil, apperror.NewValidation("only optional recipe ingredients can be skipped", rejected...)
	}
	return skip, nil
}

// ValidateRecipeIngredients checks all ids with one bulk lookup. Duplicates collapse and
// missing ids come back in request order.
func (uc *recipeUseCase) ValidateRecipeIngredients(ctx context.Context, venueID string, rawMaterialIDs []string) (*dto.ValidationResult, error) {
	_, missing, err := uc.liveRawMaterials(ctx, venueID, rawMaterialIDs)
	if err != nil {
		return nil, err
	}
	return &dto.ValidationResult{Valid: len(missing) == 0, MissingIDs: missing}, nil
}

func (uc *recipeUseCase) liveRawMaterials(ctx context.Context, venueID string, ids []string) (map[string]model.RawMaterial, []string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	found, err := uc.repo.FindActiveRawMaterials(ctx, venueID, unique)
	if err != nil {
		return nil, nil, err
	}
	live := make(map[string]model.RawMaterial, len(found))
	for _, rm := range found {
		live[rm.ID] = rm
	}

	missing := []string{}
	for _, id := range unique {
		if _, ok := live[id]; !ok {
			missing = append(missing, id)
		}
	}
	return live, missing, nil
}

func (uc *recipeUseCase) CreateRecipe(ctx context.Context, input *dto.CreateRecipeInput) (*model.Recipe, error) {
	if !input.PortionYield.IsPositive() {
		return nil, apperror.NewValidation("portion yield must be positive")
	}
	if err := validateLines(input.Lines); err != nil {
		return nil, err
	}

	var rec *model.Recipe
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := uc.repo.FindByProduct(ctx, input.VenueID, input.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewValidation("product " + input.ProductID + " already has a recipe")
		}

		costs, err := uc.requireLive(ctx, "create recipe", input.VenueID, input.Lines)
		if err != nil {
			return err
		}

		now := uc.now()
		rec = &model.Recipe{
			BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			VenueID:      input.VenueID,
			ProductID:    input.ProductID,
			PortionYield: input.PortionYield,
		}
		rec.Lines = buildLines(rec.ID, 0, input.Lines)
		rec.TotalCost = lineCost(rec.Lines, costs)

		if err := uc.repo.Create(ctx, rec); err != nil {
			return err
		}
		return uc.repo.InsertLines(ctx, rec.Lines)
	})
	if err != nil {
		return nil, uc.fail("create recipe", input.VenueID, input.ProductID, err)
	}
	return rec, nil
}

// ReplaceRecipeLines swaps the full line set of an existing recipe.
func (uc *recipeUseCase) ReplaceRecipeLines(ctx context.Context, input *dto.ReplaceRecipeLinesInput) (*model.Recipe, error) {
	if input.PortionYield != nil && !input.PortionYield.IsPositive() {
		return nil, apperror.NewValidation("portion yield must be positive")
	}
	if err := validateLines(input.Lines); err != nil {
		return nil, err
	}

	var rec *model.Recipe
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = uc.repo.FindByProduct(ctx, input.VenueID, input.ProductID)
		if err != nil {
			return err
		}
		if rec == nil {
			return apperror.NewNotFound("no recipe for product %s", input.ProductID)
		}

		costs, err := uc.requireLive(ctx, "update recipe", input.VenueID, input.Lines)
		if err != nil {
			return err
		}

		if err := uc.repo.DeleteLines(ctx, rec.ID); err != nil {
			return err
		}
		if input.PortionYield != nil {
			rec.PortionYield = *input.PortionYield
		}
		rec.Lines = buildLines(rec.ID, 0, input.Lines)
		rec.TotalCost = lineCost(rec.Lines, costs)
		rec.UpdatedAt = uc.now()

		if err := uc.repo.InsertLines(ctx, rec.Lines); err != nil {
			return err
		}
		return uc.repo.Update(ctx, rec)
	})
	if err != nil {
		return nil, uc.fail("update recipe", input.VenueID, input.ProductID, err)
	}
	return rec, nil
}

func (uc *recipeUseCase) AddRecipeLine(ctx context.Context, input *dto.AddRecipeLineInput) (*model.Recipe, error) {
	if err := validateLines([]dto.RecipeLineInput{input.Line}); err != nil {
		return nil, err
	}

	var rec *model.Recipe
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = uc.repo.FindByProduct(ctx, input.VenueID, input.ProductID)
		if err != nil {
			return err
		}
		if rec == nil {
			return apperror.NewNotFound("no recipe for product %s", input.ProductID)
		}
		for _, l := range rec.Lines {
			if l.RawMaterialID == input.Line.RawMaterialID {
				return apperror.NewValidation("raw material is already part of the recipe", input.Line.RawMaterialID)
			}
		}

		costs, err := uc.requireLive(ctx, "add recipe line", input.VenueID, []dto.RecipeLineInput{input.Line})
		if err != nil {
			return err
		}

		added := buildLines(rec.ID, len(rec.Lines), []dto.RecipeLineInput{input.Line})
		if err := uc.repo.InsertLines(ctx, added); err != nil {
			return err
		}
		rec.Lines = append(rec.Lines, added...)
		rec.TotalCost = rec.TotalCost.Add(lineCost(added, costs))
		rec.UpdatedAt = uc.now()
		return uc.repo.Update(ctx, rec)
	})
	if err != nil {
		return nil, uc.fail("add recipe line", input.VenueID, input.ProductID, err)
	}
	return rec, nil
}

// requireLive rejects the whole mutation if any referenced raw material is inactive,
// deleted or foreign to the venue. It returns the cost per unit of every line's material.
func (uc *recipeUseCase) requireLive(ctx context.Context, operation, venueID string, lines []dto.RecipeLineInput) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.RawMaterialID)
	}
	live, missing, err := uc.liveRawMaterials(ctx, venueID, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperror.NewValidation(operation+" references inactive or deleted ingredients", missing...)
	}
	costs := make(map[string]decimal.Decimal, len(live))
	for id, rm := range live {
		costs[id] = rm.CostPerUnit
	}
	return costs, nil
}

func (uc *recipeUseCase) fail(operation, venueID, productID string, err error) error {
	err = apperror.FromTx(err, "recipe of product "+productID)
	uc.logger.Warn("recipe mutation rejected",
		zap.String("operation", operation),
		zap.String("venue_id", venueID),
		zap.String("product_id", productID),
		zap.Error(err),
	)
	return err
}

func validateLines(lines []dto.RecipeLineInput) error {
	if len(lines) == 0 {
		return apperror.NewValidation("recipe needs at least one line")
	}
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.RawMaterialID == "" {
			return apperror.NewValidation("recipe line is missing its raw material")
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("recipe line quantity must be positive", l.RawMaterialID)
		}
		if seen[l.RawMaterialID] {
			return apperror.NewValidation("raw material listed more than once", l.RawMaterialID)
		}
		seen[l.RawMaterialID] = true
	}
	return nil
}

func buildLines(recipeID string, offset int, inputs []dto.RecipeLineInput) []model.RecipeLine {
	lines := make([]model.RecipeLine, 0, len(inputs))
	for i, in := range inputs {
		lines = append(lines, model.RecipeLine{
			ID:            uuid.New().String(),
			RecipeID:      recipeID,
			RawMaterialID: in.RawMaterialID,
			Quantity:      in.Quantity,
			Unit:          in.Unit,
			IsOptional:    in.IsOptional,
			Position:      offset + i,
		})
	}
	return lines
}

func lineCost(lines []model.RecipeLine, costs map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Quantity.Mul(costs[l.RawMaterialID]))
	}
	return total
}
