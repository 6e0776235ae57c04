package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RawMaterial struct {
	BaseModel
	VenueID      string          `db:"venue_id"`
	Name         string          `db:"name"`
	Unit         string          `db:"unit"`
	CurrentStock decimal.Decimal `db:"current_stock"` // Always equals the sum of its batches
	MinimumStock decimal.Decimal `db:"minimum_stock"`
	CostPerUnit  decimal.Decimal `db:"cost_per_unit"` // Cost of the latest receipt
	Active       bool            `db:"active"`
	DeletedAt    *time.Time      `db:"deleted_at"`
}

// StockBatch is one received lot. It is exhausted, never deleted, at zero.
type StockBatch struct {
	ID                string          `db:"id"`
	RawMaterialID     string          `db:"raw_material_id"`
	BatchNumber       string          `db:"batch_number"`
	ReceivedDate      time.Time       `db:"received_date"`
	InitialQuantity   decimal.Decimal `db:"initial_quantity"`
	RemainingQuantity decimal.Decimal `db:"remaining_quantity"`
	CostPerUnit       decimal.Decimal `db:"cost_per_unit"`
	Unit              string          `db:"unit"`
	CreatedAt         time.Time       `db:"created_at"`
}

type RawMaterialMovementType string

const (
	RawMaterialMovementUsage      RawMaterialMovementType = "USAGE"
	RawMaterialMovementReceipt    RawMaterialMovementType = "RECEIPT"
	RawMaterialMovementAdjustment RawMaterialMovementType = "ADJUSTMENT"
	RawMaterialMovementWaste      RawMaterialMovementType = "WASTE"
)

// RawMaterialMovement is an append-only ledger row. BatchID is nil for aggregate-only
// adjustments.
type RawMaterialMovement struct {
	ID            string                  `db:"id"`
	VenueID       string                  `db:"venue_id"`
	RawMaterialID string                  `db:"raw_material_id"`
	BatchID       *string                 `db:"batch_id"`
	Type          RawMaterialMovementType `db:"type"`
	Quantity      decimal.Decimal         `db:"quantity"` // Signed delta
	PreviousStock decimal.Decimal         `db:"previous_stock"`
	NewStock      decimal.Decimal         `db:"new_stock"`
	CostPerUnit   decimal.Decimal         `db:"cost_per_unit"`
	Reason        string                  `db:"reason"`
	Reference     *string                 `db:"reference"`
	CreatedBy     *string                 `db:"created_by"`
	CreatedAt     time.Time               `db:"created_at"`
}
