package model

// InventoryMethod says how a product's stock is tracked.
type InventoryMethod string

const (
	InventoryMethodNone     InventoryMethod = "NONE"
	InventoryMethodQuantity InventoryMethod = "QUANTITY"
	InventoryMethodRecipe   InventoryMethod = "RECIPE"
)

func (m InventoryMethod) Valid() bool {
	switch m {
	case InventoryMethodNone, InventoryMethodQuantity, InventoryMethodRecipe:
		return true
	}
	return false
}

type Product struct {
	BaseModel
	VenueID         string  `db:"venue_id" json:"venue_id"`
	Name            string  `db:"name" json:"name"`
	TrackInventory  bool    `db:"track_inventory" json:"track_inventory"`
	InventoryMethod *string `db:"inventory_method" json:"inventory_method"` // Nullable for legacy rows
	HasRecipe       bool    `db:"has_recipe" json:"has_recipe"`             // Joined, not a column
}
