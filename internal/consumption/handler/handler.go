package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type ConsumptionHandler struct {
	uc     consumption.UseCase
	logger logger.ZapLogger
}

func NewConsumptionHandler(uc consumption.UseCase, log logger.ZapLogger) *ConsumptionHandler {
	return &ConsumptionHandler{
		uc:     uc,
		logger: log,
	}
}

// Deduct expects {product_id, quantity, order_reference, skip_optional[]}. The venue and
// actor come from request metadata.
func (h *ConsumptionHandler) Deduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	productID := rpc.String(req, "product_id")
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	quantity, err := rpc.Decimal(req, "quantity")
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}

	res, err := h.uc.Deduct(ctx, &dto.DeductInput{
		VenueID:        venueID,
		ProductID:      productID,
		Quantity:       quantity,
		OrderReference: rpc.String(req, "order_reference"),
		ActorID:        auth.GetUserID(ctx),
		SkipOptional:   rpc.StringList(req, "skip_optional"),
	})
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return rpc.Response(mapDeductionResult(res))
}

// ValidateRecipeIngredients expects {raw_material_ids[]} and answers {valid, missing_ids[]}.
func (h *ConsumptionHandler) ValidateRecipeIngredients(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.uc.ValidateRecipeIngredients(ctx, venueID, rpc.StringList(req, "raw_material_ids"))
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return rpc.Response(map[string]interface{}{
		"valid":       res.Valid,
		"missing_ids": rpc.Strings(res.MissingIDs),
	})
}

func mapDeductionResult(res *dto.DeductionResult) map[string]interface{} {
	ingredients := make([]interface{}, 0, len(res.Ingredients))
	for _, ing := range res.Ingredients {
		allocations := make([]interface{}, 0, len(ing.Allocations))
		for _, a := range ing.Allocations {
			allocations = append(allocations, map[string]interface{}{
				"batch_id":      a.BatchID,
				"batch_number":  a.BatchNumber,
				"quantity":      a.Quantity.String(),
				"cost_per_unit": a.CostPerUnit.String(),
				"cost":          a.Cost.String(),
			})
		}
		ingredients = append(ingredients, map[string]interface{}{
			"raw_material_id": ing.RawMaterialID,
			"unit":            ing.Unit,
			"quantity":        ing.Quantity.String(),
			"is_optional":     ing.IsOptional,
			"total_cost":      ing.TotalCost.String(),
			"remaining_stock": ing.RemainingStock.String(),
			"allocations":     allocations,
		})
	}

	out := map[string]interface{}{
		"method":         string(res.Method),
		"items_affected": res.ItemsAffected,
		"ingredients":    ingredients,
		"total_cost":     res.TotalCost.String(),
		"message":        res.Message,
	}
	if res.RemainingStock != nil {
		out["remaining_stock"] = res.RemainingStock.String()
	}
	return out
}
