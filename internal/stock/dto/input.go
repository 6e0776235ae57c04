package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type DeductFIFOInput struct {
	VenueID       string
	RawMaterialID string
	Quantity      decimal.Decimal
	MovementType  model.RawMaterialMovementType // Defaults to USAGE
	Reason        string
	Reference     string // e.g. order id
	ActorID       string
}

type ReceiveBatchInput struct {
	VenueID       string
	RawMaterialID string
	BatchNumber   string
	ReceivedDate  time.Time // Zero means now
	Quantity      decimal.Decimal
	CostPerUnit   decimal.Decimal
	Unit          string // Defaults to the raw material unit
	Reason        string
	Reference     string
	ActorID       string
}
