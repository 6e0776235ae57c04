package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "omnipos.inventory.v1.InventoryService"

// InventoryServiceServer is the read side of the per-product counters, polled by the
// low-stock alerting job.
type InventoryServiceServer interface {
	GetProductInventory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLowStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListInventoryMovements(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "GetProductInventory", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(InventoryServiceServer).GetProductInventory(ctx, req)
		}),
		rpc.Unary(serviceName, "ListLowStock", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(InventoryServiceServer).ListLowStock(ctx, req)
		}),
		rpc.Unary(serviceName, "ListInventoryMovements", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(InventoryServiceServer).ListInventoryMovements(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/inventory.proto",
}
