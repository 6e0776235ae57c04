package dto

type InventoryFilters struct {
	VenueID   string
	ProductID string
	LowStock  bool // If true, filter by current_stock <= minimum_stock
	Page      int
	PageSize  int
}

type MovementFilters struct {
	VenueID      string
	ProductID    string
	MovementType string
	Page         int
	PageSize     int
}
