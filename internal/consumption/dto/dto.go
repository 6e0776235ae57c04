package dto

import (
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	stockdto "github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
)

type IngredientDeduction struct {
	RawMaterialID  string
	Unit           string
	Quantity       decimal.Decimal
	IsOptional     bool
	Allocations    []stockdto.Allocation
	TotalCost      decimal.Decimal
	RemainingStock decimal.Decimal
}

// DeductionResult has the same shape for every method. RemainingStock is set for
// QUANTITY, Ingredients for RECIPE.
type DeductionResult struct {
	Method         model.InventoryMethod
	ItemsAffected  int
	RemainingStock *decimal.Decimal
	Ingredients    []IngredientDeduction
	TotalCost      decimal.Decimal
	Message        string
}
