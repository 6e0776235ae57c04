package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type RawMaterialHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewRawMaterialHandler(uc stock.UseCase, log logger.ZapLogger) *RawMaterialHandler {
	return &RawMaterialHandler{
		uc:     uc,
		logger: log,
	}
}

// ReceiveBatch expects {raw_material_id, quantity, cost_per_unit, batch_number?,
// received_date?, unit?, reason?, reference?}.
func (h *RawMaterialHandler) ReceiveBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	rawMaterialID := rpc.String(req, "raw_material_id")
	if rawMaterialID == "" {
		return nil, status.Error(codes.InvalidArgument, "raw_material_id is required")
	}
	quantity, err := rpc.Decimal(req, "quantity")
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}
	cost, err := rpc.Decimal(req, "cost_per_unit")
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}
	received, err := rpc.Time(req, "received_date")
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}

	batch, err := h.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		VenueID:       venueID,
		RawMaterialID: rawMaterialID,
		BatchNumber:   rpc.String(req, "batch_number"),
		ReceivedDate:  received,
		Quantity:      quantity,
		CostPerUnit:   cost,
		Unit:          rpc.String(req, "unit"),
		Reason:        rpc.String(req, "reason"),
		Reference:     rpc.String(req, "reference"),
		ActorID:       auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	return rpc.Response(map[string]interface{}{
		"batch": mapBatch(batch),
	})
}

func (h *RawMaterialHandler) ListLowStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := h.uc.ListLowStock(ctx, venueID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	entries := make([]interface{}, len(items))
	for i := range items {
		entries[i] = mapRawMaterial(&items[i])
	}
	return rpc.Response(map[string]interface{}{
		"items": entries,
		"total": len(items),
	})
}

// Reconcile answers {consistent, divergences[]}.
func (h *RawMaterialHandler) Reconcile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := h.uc.Reconcile(ctx, venueID)
	if err != nil {
		h.logger.Error("reconcile failed", zap.String("venue_id", venueID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}

	divergences := make([]interface{}, len(items))
	for i, d := range items {
		divergences[i] = map[string]interface{}{
			"raw_material_id": d.RawMaterialID,
			"name":            d.Name,
			"current_stock":   d.CurrentStock.String(),
			"batch_total":     d.BatchTotal.String(),
		}
	}
	return rpc.Response(map[string]interface{}{
		"consistent":  len(items) == 0,
		"divergences": divergences,
	})
}

func mapBatch(b *model.StockBatch) map[string]interface{} {
	return map[string]interface{}{
		"id":                 b.ID,
		"raw_material_id":    b.RawMaterialID,
		"batch_number":       b.BatchNumber,
		"received_date":      rpc.Timestamp(b.ReceivedDate),
		"initial_quantity":   b.InitialQuantity.String(),
		"remaining_quantity": b.RemainingQuantity.String(),
		"cost_per_unit":      b.CostPerUnit.String(),
		"unit":               b.Unit,
	}
}

func mapRawMaterial(m *model.RawMaterial) map[string]interface{} {
	return map[string]interface{}{
		"id":            m.ID,
		"name":          m.Name,
		"unit":          m.Unit,
		"current_stock": m.CurrentStock.String(),
		"minimum_stock": m.MinimumStock.String(),
		"cost_per_unit": m.CostPerUnit.String(),
	}
}
