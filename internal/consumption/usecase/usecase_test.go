package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/inventorytest"
	inventoryuc "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/producttest"
	productuc "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe/recipetest"
	recipeuc "github.com/fekuna/omnipos-inventory-service/internal/recipe/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/stocktest"
	stockuc "github.com/fekuna/omnipos-inventory-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres/pgtest"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const venue = "venue-1"

var day = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func num(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	uc        *consumptionUseCase
	products  *producttest.MemRepository
	inventory *inventorytest.MemRepository
	recipes   *recipetest.MemRepository
	stock     *stocktest.MemRepository
	tx        *pgtest.Transactor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		products:  producttest.NewMemRepository(),
		inventory: inventorytest.NewMemRepository(),
		recipes:   recipetest.NewMemRepository(),
		stock:     stocktest.NewMemRepository(),
	}
	e.tx = pgtest.NewTransactor(e.inventory, e.recipes, e.stock)
	log := logger.NewNop()

	e.uc = NewConsumptionUseCase(
		productuc.NewProductUseCase(e.products, log),
		inventoryuc.NewInventoryUseCase(e.inventory, e.tx, log),
		recipeuc.NewRecipeUseCase(e.recipes, e.tx, log),
		stockuc.NewStockUseCase(e.stock, e.tx, log),
		e.tx,
		log,
	).(*consumptionUseCase)

	recipe := string(model.InventoryMethodRecipe)
	quantity := string(model.InventoryMethodQuantity)
	e.products.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "pizza"}, VenueID: venue, TrackInventory: true, InventoryMethod: &recipe})
	e.products.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "legacy-pizza"}, VenueID: venue, TrackInventory: true, HasRecipe: true})
	e.products.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "cola"}, VenueID: venue, TrackInventory: true, InventoryMethod: &quantity})
	e.products.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "gift-card"}, VenueID: venue, TrackInventory: false})

	e.inventory.AddInventory(model.Inventory{ID: "inv-cola", VenueID: venue, ProductID: "cola", CurrentStock: num("10")})

	for _, productID := range []string{"pizza", "legacy-pizza"} {
		recipeID := "recipe-" + productID
		e.recipes.AddRecipe(model.Recipe{
			BaseModel:    model.BaseModel{ID: recipeID},
			VenueID:      venue,
			ProductID:    productID,
			PortionYield: num("1"),
			Lines: []model.RecipeLine{
				{ID: recipeID + "-1", RecipeID: recipeID, RawMaterialID: "flour", Quantity: num("0.5"), Unit: "kg", Position: 0},
				{ID: recipeID + "-2", RecipeID: recipeID, RawMaterialID: "cheese", Quantity: num("0.1"), Unit: "kg", IsOptional: true, Position: 1},
			},
		})
	}

	e.stock.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "flour"}, VenueID: venue, Name: "flour", Unit: "kg", Active: true})
	e.stock.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "cheese"}, VenueID: venue, Name: "cheese", Unit: "kg", Active: true})
	e.stock.AddBatch(model.StockBatch{ID: "b-f1", RawMaterialID: "flour", ReceivedDate: day, RemainingQuantity: num("0.6"), CostPerUnit: num("2"), Unit: "kg"})
	e.stock.AddBatch(model.StockBatch{ID: "b-f2", RawMaterialID: "flour", ReceivedDate: day.Add(24 * time.Hour), RemainingQuantity: num("5"), CostPerUnit: num("3"), Unit: "kg"})
	e.stock.AddBatch(model.StockBatch{ID: "b-c1", RawMaterialID: "cheese", ReceivedDate: day, RemainingQuantity: num("10"), CostPerUnit: num("10"), Unit: "kg"})
	return e
}

func (e *env) deduct(productID, quantity string, skip ...string) (*dto.DeductionResult, error) {
	return e.uc.Deduct(context.Background(), &dto.DeductInput{
		VenueID:        venue,
		ProductID:      productID,
		Quantity:       num(quantity),
		OrderReference: "order-1001",
		ActorID:        "cashier-7",
		SkipOptional:   skip,
	})
}

func TestDeduct_UntrackedProductIsNoop(t *testing.T) {
	e := newEnv(t)

	res, err := e.deduct("gift-card", "1")

	require.NoError(t, err)
	assert.Equal(t, model.InventoryMethodNone, res.Method)
	assert.Equal(t, 0, res.ItemsAffected)
	assert.Contains(t, res.Message, "no deduction needed")
	assert.Empty(t, e.inventory.Movements())
	assert.Empty(t, e.stock.Movements())
}

func TestDeduct_QuantityMethodReachesZero(t *testing.T) {
	e := newEnv(t)

	res, err := e.deduct("cola", "10")

	require.NoError(t, err)
	assert.Equal(t, model.InventoryMethodQuantity, res.Method)
	require.NotNil(t, res.RemainingStock)
	assert.True(t, res.RemainingStock.IsZero())
	assert.Equal(t, 1, res.ItemsAffected)
	require.Len(t, e.inventory.Movements(), 1)
	assert.Equal(t, model.InventoryMovementSale, e.inventory.Movements()[0].Type)
}

func TestDeduct_QuantityMethodInsufficient(t *testing.T) {
	e := newEnv(t)

	_, err := e.deduct("cola", "11")

	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.True(t, e.inventory.Inventory("cola").CurrentStock.Equal(num("10")))
}

func TestDeduct_RecipeMethodAllocatesEveryIngredient(t *testing.T) {
	e := newEnv(t)

	res, err := e.deduct("pizza", "2")

	require.NoError(t, err)
	assert.Equal(t, model.InventoryMethodRecipe, res.Method)
	assert.Equal(t, 2, res.ItemsAffected)
	require.Len(t, res.Ingredients, 2)

	flour, cheese := res.Ingredients[0], res.Ingredients[1]
	assert.Equal(t, "flour", flour.RawMaterialID)
	assert.True(t, flour.Quantity.Equal(num("1")))
	require.Len(t, flour.Allocations, 2)
	assert.Equal(t, "b-f1", flour.Allocations[0].BatchID)
	assert.True(t, flour.Allocations[0].Quantity.Equal(num("0.6")))
	assert.True(t, flour.Allocations[1].Quantity.Equal(num("0.4")))
	assert.True(t, flour.TotalCost.Equal(num("2.4")))
	assert.True(t, flour.RemainingStock.Equal(num("4.6")))

	assert.Equal(t, "cheese", cheese.RawMaterialID)
	assert.True(t, cheese.IsOptional)
	assert.True(t, cheese.TotalCost.Equal(num("2")))

	assert.True(t, res.TotalCost.Equal(num("4.4")))
	assert.True(t, e.stock.Stock("flour").Equal(e.stock.BatchTotal("flour")))
	assert.True(t, e.stock.Stock("cheese").Equal(num("9.8")))
}

func TestDeduct_RecipeIngredientsLockInStableOrder(t *testing.T) {
	e := newEnv(t)

	_, err := e.deduct("pizza", "2")
	require.NoError(t, err)

	movements := e.stock.Movements()
	require.Len(t, movements, 3)
	assert.Equal(t, "cheese", movements[0].RawMaterialID)
	assert.Equal(t, "flour", movements[1].RawMaterialID)
	assert.Equal(t, "flour", movements[2].RawMaterialID)
	for _, mv := range movements {
		assert.Equal(t, "order-1001", *mv.Reference)
		assert.Equal(t, "cashier-7", *mv.CreatedBy)
	}
}

func TestDeduct_FailingIngredientRollsBackTheOthers(t *testing.T) {
	e := newEnv(t)

	_, err := e.deduct("pizza", "20")

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
	assert.ErrorContains(t, err, "deduct ingredient flour")
	assert.True(t, appErr.Requested.Equal(num("10")))
	assert.True(t, appErr.Available.Equal(num("5.6")))

	// cheese was deducted first and must be restored
	assert.True(t, e.stock.Stock("cheese").Equal(num("10")))
	assert.True(t, e.stock.BatchRemaining("b-c1").Equal(num("10")))
	assert.True(t, e.stock.Stock("flour").Equal(num("5.6")))
	assert.Empty(t, e.stock.Movements())
	assert.Equal(t, 1, e.tx.Rolled)
}

func TestDeduct_LockConflictIsRetryableAndAtomic(t *testing.T) {
	e := newEnv(t)
	e.stock.LockedBatches["flour"] = true

	_, err := e.deduct("pizza", "1")

	assert.Equal(t, apperror.KindLockConflict, apperror.KindOf(err))
	assert.True(t, apperror.IsRetryable(err))
	assert.True(t, e.stock.Stock("cheese").Equal(num("10")))
	assert.Empty(t, e.stock.Movements())
}

func TestDeduct_LegacyProductFallsBackToRecipe(t *testing.T) {
	e := newEnv(t)

	res, err := e.deduct("legacy-pizza", "1")

	require.NoError(t, err)
	assert.Equal(t, model.InventoryMethodRecipe, res.Method)
}

func TestDeduct_SkipOptionalIngredient(t *testing.T) {
	e := newEnv(t)

	res, err := e.deduct("pizza", "1", "cheese")

	require.NoError(t, err)
	require.Len(t, res.Ingredients, 1)
	assert.Equal(t, "flour", res.Ingredients[0].RawMaterialID)
	assert.True(t, e.stock.Stock("cheese").Equal(num("10")))

	_, err = e.deduct("pizza", "1", "flour")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestDeduct_Rejections(t *testing.T) {
	e := newEnv(t)

	_, err := e.deduct("pizza", "0")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = e.deduct("ghost", "1")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	assert.Empty(t, e.stock.Movements())
	assert.Empty(t, e.inventory.Movements())
}

func TestValidateRecipeIngredients_Delegates(t *testing.T) {
	e := newEnv(t)
	e.recipes.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "flour"}, VenueID: venue, Active: true})
	e.recipes.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "old-yeast"}, VenueID: venue, Active: false})

	res, err := e.uc.ValidateRecipeIngredients(context.Background(), venue, []string{"flour", "old-yeast"})

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"old-yeast"}, res.MissingIDs)
}
