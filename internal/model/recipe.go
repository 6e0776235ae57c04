package model

import "github.com/shopspring/decimal"

type Recipe struct {
	BaseModel
	VenueID      string          `db:"venue_id"`
	ProductID    string          `db:"product_id"`
	PortionYield decimal.Decimal `db:"portion_yield"`
	TotalCost    decimal.Decimal `db:"total_cost"` // Sum of line costs
	Lines        []RecipeLine    `db:"-"`
}

type RecipeLine struct {
	ID            string          `db:"id"`
	RecipeID      string          `db:"recipe_id"`
	RawMaterialID string          `db:"raw_material_id"`
	Quantity      decimal.Decimal `db:"quantity"`
	Unit          string          `db:"unit"`
	IsOptional    bool            `db:"is_optional"`
	Position      int             `db:"position"`
}

// RawMaterialIDs returns the referenced raw material ids in line order.
func (r *Recipe) RawMaterialIDs() []string {
	ids := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		ids = append(ids, l.RawMaterialID)
	}
	return ids
}
