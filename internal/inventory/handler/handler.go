package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) GetProductInventory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}
	productID := rpc.String(req, "product_id")
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	inv, err := h.uc.GetProductInventory(ctx, venueID, productID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	return rpc.Response(map[string]interface{}{
		"inventory": mapInventory(inv),
	})
}

func (h *InventoryHandler) ListLowStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	items, count, err := h.uc.ListLowStock(ctx, venueID, rpc.Int(req, "page"), rpc.Int(req, "page_size"))
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	entries := make([]interface{}, len(items))
	for i := range items {
		entries[i] = mapInventory(&items[i])
	}

	return rpc.Response(map[string]interface{}{
		"items": entries,
		"total": count,
	})
}

func (h *InventoryHandler) ListInventoryMovements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	filters := &dto.MovementFilters{
		VenueID:      venueID,
		ProductID:    rpc.String(req, "product_id"),
		MovementType: rpc.String(req, "movement_type"),
		Page:         rpc.Int(req, "page"),
		PageSize:     rpc.Int(req, "page_size"),
	}

	mvs, count, err := h.uc.ListMovements(ctx, filters)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	movements := make([]interface{}, len(mvs))
	for i := range mvs {
		movements[i] = mapMovement(&mvs[i])
	}

	return rpc.Response(map[string]interface{}{
		"movements": movements,
		"total":     count,
	})
}

func mapInventory(m *model.Inventory) map[string]interface{} {
	return map[string]interface{}{
		"id":             m.ID,
		"venue_id":       m.VenueID,
		"product_id":     m.ProductID,
		"current_stock":  m.CurrentStock.String(),
		"reserved_stock": m.ReservedStock.String(),
		"minimum_stock":  m.MinimumStock.String(),
		"maximum_stock":  m.MaximumStock.String(),
		"updated_at":     rpc.Timestamp(m.UpdatedAt),
	}
}

func mapMovement(m *model.InventoryMovement) map[string]interface{} {
	return map[string]interface{}{
		"id":             m.ID,
		"product_id":     m.ProductID,
		"type":           string(m.Type),
		"quantity":       m.Quantity.String(),
		"previous_stock": m.PreviousStock.String(),
		"new_stock":      m.NewStock.String(),
		"reason":         m.Reason,
		"reference":      rpc.Deref(m.Reference),
		"created_by":     rpc.Deref(m.CreatedBy),
		"created_at":     rpc.Timestamp(m.CreatedAt),
	}
}
