package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "omnipos.inventory.v1.ConsumptionService"

// ConsumptionServiceServer is the server API of omnipos.inventory.v1.ConsumptionService.
type ConsumptionServiceServer interface {
	Deduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateRecipeIngredients(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterConsumptionServiceServer(s grpc.ServiceRegistrar, srv ConsumptionServiceServer) {
	s.RegisterService(&ConsumptionServiceDesc, srv)
}

var ConsumptionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ConsumptionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "Deduct", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ConsumptionServiceServer).Deduct(ctx, req)
		}),
		rpc.Unary(serviceName, "ValidateRecipeIngredients", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ConsumptionServiceServer).ValidateRecipeIngredients(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/consumption.proto",
}
