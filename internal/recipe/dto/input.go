package dto

import "github.com/shopspring/decimal"

type RecipeLineInput struct {
	RawMaterialID string
	Quantity      decimal.Decimal
	Unit          string
	IsOptional    bool
}

type CreateRecipeInput struct {
	VenueID      string
	ProductID    string
	PortionYield decimal.Decimal
	Lines        []RecipeLineInput
}

type ReplaceRecipeLinesInput struct {
	VenueID   string
	ProductID string
	// PortionYield keeps the current yield when nil.
	PortionYield *decimal.Decimal
	Lines        []RecipeLineInput
}

type AddRecipeLineInput struct {
	VenueID   string
	ProductID string
	Line      RecipeLineInput
}
