package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "omnipos.inventory.v1.RawMaterialService"

// RawMaterialServiceServer covers replenishment and the raw material read side.
type RawMaterialServiceServer interface {
	ReceiveBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLowStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reconcile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterRawMaterialServiceServer(s grpc.ServiceRegistrar, srv RawMaterialServiceServer) {
	s.RegisterService(&RawMaterialServiceDesc, srv)
}

var RawMaterialServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RawMaterialServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "ReceiveBatch", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(RawMaterialServiceServer).ReceiveBatch(ctx, req)
		}),
		rpc.Unary(serviceName, "ListLowStock", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(RawMaterialServiceServer).ListLowStock(ctx, req)
		}),
		rpc.Unary(serviceName, "Reconcile", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(RawMaterialServiceServer).Reconcile(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/raw_material.proto",
}
