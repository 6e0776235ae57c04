package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNotFound, "NOT_FOUND"},
		{KindInsufficientStock, "INSUFFICIENT_STOCK"},
		{KindLockConflict, "LOCK_CONFLICT"},
		{KindValidation, "VALIDATION_ERROR"},
		{Kind(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestNewInsufficientStock_ReportsRequestedAndAvailable(t *testing.T) {
	err := NewInsufficientStock("raw material rm-1", decimal.NewFromInt(10), decimal.NewFromInt(3))

	assert.Equal(t, KindInsufficientStock, err.Kind)
	assert.True(t, err.Requested.Equal(decimal.NewFromInt(10)))
	assert.True(t, err.Available.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "insufficient stock for raw material rm-1: requested 10, available 3", err.Error())
	assert.False(t, err.Retryable())
}

func TestNewValidation_ListsIDs(t *testing.T) {
	err := NewValidation("recipe references inactive or deleted ingredients", "rm-2", "rm-9")

	assert.Equal(t, []string{"rm-2", "rm-9"}, err.IDs)
	assert.Contains(t, err.Error(), "rm-2, rm-9")
}

func TestKindOf_FindsWrappedError(t *testing.T) {
	cause := errors.New("55P03")
	wrapped := fmt.Errorf("deduct ingredient: %w", NewLockConflict("raw material rm-1", cause))

	assert.Equal(t, KindLockConflict, KindOf(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestToGRPC(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"not found", NewNotFound("product %s not found", "p-1"), codes.NotFound},
		{"insufficient", NewInsufficientStock("x", decimal.NewFromInt(2), decimal.Zero), codes.FailedPrecondition},
		{"lock conflict", NewLockConflict("x", nil), codes.Aborted},
		{"validation", NewValidation("bad"), codes.InvalidArgument},
		{"plain", errors.New("db down"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(ToGRPC(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.want, st.Code())
		})
	}
	assert.NoError(t, ToGRPC(nil))
}

func TestFromTx(t *testing.T) {
	serialization := fmt.Errorf("%w: 40001", postgres.ErrSerialization)
	lockErr := &pgconn.PgError{Code: "55P03"}
	timeout := &pgconn.PgError{Code: "57014"}
	alreadyMapped := NewLockConflict("raw material rm-1", lockErr)
	plain := errors.New("connection reset")

	assert.Equal(t, KindLockConflict, KindOf(FromTx(serialization, "raw material rm-1")))
	assert.Equal(t, KindLockConflict, KindOf(FromTx(lockErr, "raw material rm-1")))
	assert.Equal(t, KindLockConflict, KindOf(FromTx(timeout, "raw material rm-1")))
	assert.Same(t, alreadyMapped, FromTx(alreadyMapped, "other"))
	assert.Same(t, plain, FromTx(plain, "x"))
	assert.NoError(t, FromTx(nil, "x"))
}
