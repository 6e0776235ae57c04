package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory holds the counters of a product tracked with the QUANTITY method.
type Inventory struct {
	ID            string          `db:"id"`
	VenueID       string          `db:"venue_id"`
	ProductID     string          `db:"product_id"`
	CurrentStock  decimal.Decimal `db:"current_stock"`
	ReservedStock decimal.Decimal `db:"reserved_stock"`
	MinimumStock  decimal.Decimal `db:"minimum_stock"`
	MaximumStock  decimal.Decimal `db:"maximum_stock"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type InventoryMovementType string

const (
	InventoryMovementSale       InventoryMovementType = "SALE"
	InventoryMovementAdjustment InventoryMovementType = "ADJUSTMENT"
	InventoryMovementReturn     InventoryMovementType = "RETURN"
)

type InventoryMovement struct {
	ID            string                `db:"id"`
	VenueID       string                `db:"venue_id"`
	ProductID     string                `db:"product_id"`
	Type          InventoryMovementType `db:"type"`
	Quantity      decimal.Decimal       `db:"quantity"` // Signed delta
	PreviousStock decimal.Decimal       `db:"previous_stock"`
	NewStock      decimal.Decimal       `db:"new_stock"`
	Reason        string                `db:"reason"`
	Reference     *string               `db:"reference"`
	CreatedBy     *string               `db:"created_by"`
	CreatedAt     time.Time             `db:"created_at"`
}
