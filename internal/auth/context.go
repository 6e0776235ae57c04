package auth

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	venueIDKey contextKey = "venue_id"
	userIDKey  contextKey = "user_id"
)

func WithVenueID(ctx context.Context, venueID string) context.Context {
	return context.WithValue(ctx, venueIDKey, venueID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetVenueID reads the tenant from the context first, then from the x-venue-id metadata
// set by the gateway.
func GetVenueID(ctx context.Context) string {
	if val, ok := ctx.Value(venueIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, "x-venue-id")
}

// RequireVenueID is GetVenueID for handlers: a request without a tenant is Unauthenticated.
func RequireVenueID(ctx context.Context) (string, error) {
	venueID := GetVenueID(ctx)
	if venueID == "" {
		return "", status.Error(codes.Unauthenticated, "missing venue")
	}
	return venueID, nil
}

func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, "x-user-id")
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(key); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
