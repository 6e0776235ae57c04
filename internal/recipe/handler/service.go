package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "omnipos.inventory.v1.RecipeService"

// RecipeServiceServer manages recipes. Every mutation validates its ingredients first.
type RecipeServiceServer interface {
	CreateRecipe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReplaceRecipeLines(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddRecipeLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterRecipeServiceServer(s grpc.ServiceRegistrar, srv RecipeServiceServer) {
	s.RegisterService(&RecipeServiceDesc, srv)
}

var RecipeServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RecipeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "CreateRecipe", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(RecipeServiceServer).CreateRecipe(ctx, req)
		}),
		rpc.Unary(serviceName, "ReplaceRecipeLines", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(RecipeServiceServer).ReplaceRecipeLines(ctx, req)
		}),
		rpc.Unary(serviceName, "AddRecipeLine", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.(RecipeServiceServer).AddRecipeLine(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/recipe.proto",
}
