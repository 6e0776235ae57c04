package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe/recipetest"
	"github.com/fekuna/omnipos-inventory-service/internal/recipe/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres/pgtest"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const venue = "venue-1"

func num(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*grpc.ClientConn, *recipetest.MemRepository) {
	t.Helper()
	repo := recipetest.NewMemRepository()
	repo.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "flour"}, VenueID: venue, Unit: "kg", CostPerUnit: num("2"), Active: true})
	repo.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "cheese"}, VenueID: venue, Unit: "kg", CostPerUnit: num("10"), Active: true})
	repo.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "retired"}, VenueID: venue, Unit: "kg", CostPerUnit: num("3"), Active: false})
	deleted := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.AddRawMaterial(model.RawMaterial{BaseModel: model.BaseModel{ID: "gone"}, VenueID: venue, Unit: "kg", Active: true, DeletedAt: &deleted})
	uc := usecase.NewRecipeUseCase(repo, pgtest.NewTransactor(repo), logger.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterRecipeServiceServer(srv, NewRecipeHandler(uc, logger.NewNop()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, repo
}

func call(conn *grpc.ClientConn, method string, fields map[string]interface{}) (map[string]interface{}, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-venue-id", venue)
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+serviceName+"/"+method, req, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func line(id, quantity string, optional bool) map[string]interface{} {
	return map[string]interface{}{"raw_material_id": id, "quantity": quantity, "unit": "kg", "is_optional": optional}
}

func TestCreateRecipe(t *testing.T) {
	conn, repo := setup(t)

	out, err := call(conn, "CreateRecipe", map[string]interface{}{
		"product_id":    "pizza",
		"portion_yield": "1",
		"lines":         []interface{}{line("flour", "0.5", false), line("cheese", "0.1", true)},
	})

	require.NoError(t, err)
	rec := out["recipe"].(map[string]interface{})
	assert.True(t, num(rec["total_cost"].(string)).Equal(num("2")))
	lines := rec["lines"].([]interface{})
	require.Len(t, lines, 2)
	assert.Equal(t, true, lines[1].(map[string]interface{})["is_optional"])

	stored := repo.Recipe("pizza")
	require.NotNil(t, stored)
	assert.Len(t, stored.Lines, 2)
}

func TestCreateRecipe_RejectsInactiveIngredients(t *testing.T) {
	conn, repo := setup(t)

	_, err := call(conn, "CreateRecipe", map[string]interface{}{
		"product_id":    "pizza",
		"portion_yield": "1",
		"lines":         []interface{}{line("flour", "0.5", false), line("retired", "1", false), line("gone", "1", false)},
	})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	msg := status.Convert(err).Message()
	assert.Contains(t, msg, "inactive or deleted")
	assert.Contains(t, msg, "retired")
	assert.Contains(t, msg, "gone")
	assert.Nil(t, repo.Recipe("pizza"))
}

func TestReplaceAndAddLines(t *testing.T) {
	conn, repo := setup(t)
	_, err := call(conn, "CreateRecipe", map[string]interface{}{
		"product_id":    "pizza",
		"portion_yield": "2",
		"lines":         []interface{}{line("flour", "0.5", false)},
	})
	require.NoError(t, err)

	out, err := call(conn, "ReplaceRecipeLines", map[string]interface{}{
		"product_id": "pizza",
		"lines":      []interface{}{line("flour", "1", false)},
	})
	require.NoError(t, err)
	rec := out["recipe"].(map[string]interface{})
	assert.True(t, num(rec["portion_yield"].(string)).Equal(num("2")), "yield kept when omitted")
	assert.True(t, num(rec["total_cost"].(string)).Equal(num("2")))

	out, err = call(conn, "AddRecipeLine", map[string]interface{}{
		"product_id": "pizza",
		"line":       line("cheese", "0.2", true),
	})
	require.NoError(t, err)
	rec = out["recipe"].(map[string]interface{})
	assert.True(t, num(rec["total_cost"].(string)).Equal(num("4")))
	assert.Len(t, repo.Recipe("pizza").Lines, 2)

	_, err = call(conn, "AddRecipeLine", map[string]interface{}{
		"product_id": "pizza",
		"line":       line("gone", "1", false),
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Len(t, repo.Recipe("pizza").Lines, 2)
}

func TestRequestDecoding(t *testing.T) {
	conn, _ := setup(t)

	tests := []struct {
		name   string
		method string
		fields map[string]interface{}
		want   codes.Code
	}{
		{"missing product", "CreateRecipe", map[string]interface{}{"portion_yield": "1"}, codes.InvalidArgument},
		{"bad quantity", "CreateRecipe", map[string]interface{}{"product_id": "p", "portion_yield": "1", "lines": []interface{}{line("flour", "lots", false)}}, codes.InvalidArgument},
		{"missing line", "AddRecipeLine", map[string]interface{}{"product_id": "p"}, codes.InvalidArgument},
		{"no recipe", "ReplaceRecipeLines", map[string]interface{}{"product_id": "p", "lines": []interface{}{line("flour", "1", false)}}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(conn, tt.method, tt.fields)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}
