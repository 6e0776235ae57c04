package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/inventorytest"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
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

func setup(t *testing.T) (*grpc.ClientConn, inventory.UseCase) {
	t.Helper()
	repo := inventorytest.NewMemRepository()
	repo.AddInventory(model.Inventory{
		ID: "inv-1", VenueID: venue, ProductID: "cola",
		CurrentStock: decimal.NewFromInt(3), MinimumStock: decimal.NewFromInt(5),
		UpdatedAt: time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC),
	})
	repo.AddInventory(model.Inventory{
		ID: "inv-2", VenueID: venue, ProductID: "water",
		CurrentStock: decimal.NewFromInt(40), MinimumStock: decimal.NewFromInt(5),
	})
	uc := usecase.NewInventoryUseCase(repo, pgtest.NewTransactor(repo), logger.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterInventoryServiceServer(srv, NewInventoryHandler(uc, logger.NewNop()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, uc
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

func TestGetProductInventory(t *testing.T) {
	conn, _ := setup(t)

	out, err := call(conn, "GetProductInventory", map[string]interface{}{"product_id": "cola"})

	require.NoError(t, err)
	inv := out["inventory"].(map[string]interface{})
	assert.Equal(t, "inv-1", inv["id"])
	assert.Equal(t, "3", inv["current_stock"])
	assert.Equal(t, "2026-07-01T08:00:00Z", inv["updated_at"])

	_, err = call(conn, "GetProductInventory", map[string]interface{}{"product_id": "juice"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = call(conn, "GetProductInventory", map[string]interface{}{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListLowStock(t *testing.T) {
	conn, _ := setup(t)

	out, err := call(conn, "ListLowStock", map[string]interface{}{"page": 1, "page_size": 20})

	require.NoError(t, err)
	assert.Equal(t, float64(1), out["total"])
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "cola", items[0].(map[string]interface{})["product_id"])
}

func TestListInventoryMovements(t *testing.T) {
	conn, uc := setup(t)
	_, err := uc.DeductStock(context.Background(), &dto.DeductStockInput{
		VenueID: venue, ProductID: "cola", Quantity: decimal.NewFromInt(2), Reference: "order-1", ActorID: "cashier-7",
	})
	require.NoError(t, err)

	out, err := call(conn, "ListInventoryMovements", map[string]interface{}{"product_id": "cola"})

	require.NoError(t, err)
	assert.Equal(t, float64(1), out["total"])
	mv := out["movements"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "SALE", mv["type"])
	assert.Equal(t, "-2", mv["quantity"])
	assert.Equal(t, "1", mv["new_stock"])
	assert.Equal(t, "order-1", mv["reference"])
	assert.Equal(t, "cashier-7", mv["created_by"])
}

func TestRequiresVenue(t *testing.T) {
	h := NewInventoryHandler(nil, logger.NewNop())
	req, _ := structpb.NewStruct(map[string]interface{}{"product_id": "cola"})

	_, err := h.GetProductInventory(context.Background(), req)

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
