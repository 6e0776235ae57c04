package dto

import "github.com/shopspring/decimal"

// ConsumptionRequest is one raw material draw produced by expanding a sold product.
type ConsumptionRequest struct {
	RawMaterialID    string
	RequiredQuantity decimal.Decimal
	Unit             string
	IsOptional       bool
}

type ValidationResult struct {
	Valid      bool
	MissingIDs []string // In request order
}
