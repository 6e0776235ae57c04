package dto

import "github.com/shopspring/decimal"

type DeductInput struct {
	VenueID        string
	ProductID      string
	Quantity       decimal.Decimal
	OrderReference string
	ActorID        string
	// SkipOptional lists raw material ids of optional recipe lines to leave out.
	SkipOptional []string
}
