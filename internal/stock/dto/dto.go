package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is the share of one deduction taken from a single batch.
type Allocation struct {
	BatchID        string          `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	ReceivedDate   time.Time       `json:"received_date"`
	Quantity       decimal.Decimal `json:"quantity"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	Cost           decimal.Decimal `json:"cost"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
}

// AllocationPlan is the outcome of walking the batches. A positive Shortfall means the
// batches could not cover the request.
type AllocationPlan struct {
	Allocations []Allocation
	Allocated   decimal.Decimal
	Shortfall   decimal.Decimal
	TotalCost   decimal.Decimal
}

type FIFOResult struct {
	RawMaterialID string          `json:"raw_material_id"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Allocations   []Allocation    `json:"allocations"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	NewStock      decimal.Decimal `json:"new_stock"`
}

// StockDivergence is a raw material whose aggregate counter disagrees with its batches.
type StockDivergence struct {
	RawMaterialID string          `db:"raw_material_id"`
	Name          string          `db:"name"`
	CurrentStock  decimal.Decimal `db:"current_stock"`
	BatchTotal    decimal.Decimal `db:"batch_total"`
}
