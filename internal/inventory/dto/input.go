package dto

import "github.com/shopspring/decimal"

type DeductStockInput struct {
	VenueID   string
	ProductID string
	Quantity  decimal.Decimal
	Reason    string
	Reference string // Order reference
	ActorID   string
}
