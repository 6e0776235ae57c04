package auth

import (
	"context"

	"google.golang.org/grpc"
)

// ContextInterceptor copies the gateway's tenant and actor headers into the request
// context so handlers and usecases read them the same way.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if venueID := fromMetadata(ctx, "x-venue-id"); venueID != "" {
			ctx = WithVenueID(ctx, venueID)
		}
		if userID := fromMetadata(ctx, "x-user-id"); userID != "" {
			ctx = WithUserID(ctx, userID)
		}
		return handler(ctx, req)
	}
}
