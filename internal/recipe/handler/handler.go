package handler

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type RecipeHandler struct {
	uc     recipe.UseCase
	logger logger.ZapLogger
}

func NewRecipeHandler(uc recipe.UseCase, log logger.ZapLogger) *RecipeHandler {
	return &RecipeHandler{
		uc:     uc,
		logger: log,
	}
}

// CreateRecipe expects {product_id, portion_yield, lines[{raw_material_id, quantity, unit,
// is_optional}]}.
func (h *RecipeHandler) CreateRecipe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, productID, err := target(ctx, req)
	if err != nil {
		return nil, err
	}
	yield, err := rpc.Decimal(req, "portion_yield")
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}
	lines, err := parseLines(rpc.StructList(req, "lines"))
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}

	rec, err := h.uc.CreateRecipe(ctx, &dto.CreateRecipeInput{
		VenueID:      venueID,
		ProductID:    productID,
		PortionYield: yield,
		Lines:        lines,
	})
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return rpc.Response(map[string]interface{}{"recipe": mapRecipe(rec)})
}

// ReplaceRecipeLines keeps the current portion yield when portion_yield is omitted.
func (h *RecipeHandler) ReplaceRecipeLines(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, productID, err := target(ctx, req)
	if err != nil {
		return nil, err
	}
	yield, err := rpc.OptionalDecimal(req, "portion_yield")
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}
	lines, err := parseLines(rpc.StructList(req, "lines"))
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}

	rec, err := h.uc.ReplaceRecipeLines(ctx, &dto.ReplaceRecipeLinesInput{
		VenueID:      venueID,
		ProductID:    productID,
		PortionYield: yield,
		Lines:        lines,
	})
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return rpc.Response(map[string]interface{}{"recipe": mapRecipe(rec)})
}

// AddRecipeLine expects {product_id, line{...}}.
func (h *RecipeHandler) AddRecipeLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venueID, productID, err := target(ctx, req)
	if err != nil {
		return nil, err
	}
	line := rpc.Struct(req, "line")
	if line == nil {
		return nil, status.Error(codes.InvalidArgument, "line is required")
	}
	lines, err := parseLines([]*structpb.Struct{line})
	if err != nil {
		return nil, rpc.InvalidArgument(err)
	}

	rec, err := h.uc.AddRecipeLine(ctx, &dto.AddRecipeLineInput{
		VenueID:   venueID,
		ProductID: productID,
		Line:      lines[0],
	})
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return rpc.Response(map[string]interface{}{"recipe": mapRecipe(rec)})
}

func target(ctx context.Context, req *structpb.Struct) (string, string, error) {
	venueID, err := auth.RequireVenueID(ctx)
	if err != nil {
		return "", "", err
	}
	productID := rpc.String(req, "product_id")
	if productID == "" {
		return "", "", status.Error(codes.InvalidArgument, "product_id is required")
	}
	return venueID, productID, nil
}

func parseLines(items []*structpb.Struct) ([]dto.RecipeLineInput, error) {
	lines := make([]dto.RecipeLineInput, 0, len(items))
	for i, item := range items {
		quantity, err := rpc.Decimal(item, "quantity")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, dto.RecipeLineInput{
			RawMaterialID: rpc.String(item, "raw_material_id"),
			Quantity:      quantity,
			Unit:          rpc.String(item, "unit"),
			IsOptional:    rpc.Bool(item, "is_optional"),
		})
	}
	return lines, nil
}

func mapRecipe(rec *model.Recipe) map[string]interface{} {
	lines := make([]interface{}, len(rec.Lines))
	for i, l := range rec.Lines {
		lines[i] = map[string]interface{}{
			"id":              l.ID,
			"raw_material_id": l.RawMaterialID,
			"quantity":        l.Quantity.String(),
			"unit":            l.Unit,
			"is_optional":     l.IsOptional,
			"position":        l.Position,
		}
	}
	return map[string]interface{}{
		"id":            rec.ID,
		"product_id":    rec.ProductID,
		"portion_yield": rec.PortionYield.String(),
		"total_cost":    rec.TotalCost.String(),
		"lines":         lines,
	}
}
