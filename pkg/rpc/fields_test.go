package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDecimal(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"text":   "0.1234",
		"number": 2.5,
		"bad":    "x",
		"flag":   true,
		"null":   nil,
	})
	require.NoError(t, err)

	d, err := Decimal(s, "text")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("0.1234")))

	d, err = Decimal(s, "number")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("2.5")))

	_, err = Decimal(s, "bad")
	assert.ErrorContains(t, err, "bad is not a decimal")
	_, err = Decimal(s, "flag")
	assert.ErrorContains(t, err, "must be a string or a number")
	_, err = Decimal(s, "missing")
	assert.ErrorContains(t, err, "missing is required")

	opt, err := OptionalDecimal(s, "null")
	assert.NoError(t, err)
	assert.Nil(t, opt)
}

func TestTime(t *testing.T) {
	s, _ := structpb.NewStruct(map[string]interface{}{"at": "2026-05-10T07:00:00Z", "bad": "soon"})

	at, err := Time(s, "at")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 10, 7, 0, 0, 0, time.UTC), at)

	zero, err := Time(s, "absent")
	assert.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = Time(s, "bad")
	assert.Error(t, err)
}

func TestListsAndScalars(t *testing.T) {
	s, _ := structpb.NewStruct(map[string]interface{}{
		"ids":   []interface{}{"a", "", "b", 3.0},
		"lines": []interface{}{map[string]interface{}{"q": "1"}, "skip"},
		"page":  2.0,
		"line":  map[string]interface{}{"q": "2"},
	})

	assert.Equal(t, []string{"a", "b"}, StringList(s, "ids"))
	assert.Len(t, StructList(s, "lines"), 1)
	assert.Equal(t, 2, Int(s, "page"))
	assert.Equal(t, "2", String(Struct(s, "line"), "q"))
	assert.Nil(t, Struct(s, "absent"))
	assert.Empty(t, StringList(s, "absent"))
}

func TestUnary_RunsInterceptor(t *testing.T) {
	var seen string
	desc := Unary("svc.v1.Thing", "Echo", func(srv interface{}, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return req, nil
	})
	in, _ := structpb.NewStruct(map[string]interface{}{"k": "v"})
	dec := func(v interface{}) error {
		proto.Merge(v.(*structpb.Struct), in)
		return nil
	}
	interceptor := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		seen = info.FullMethod
		return handler(ctx, req)
	}

	out, err := desc.Handler(nil, context.Background(), dec, interceptor)

	require.NoError(t, err)
	assert.Equal(t, "/svc.v1.Thing/Echo", seen)
	assert.Equal(t, "v", String(out.(*structpb.Struct), "k"))
	assert.Equal(t, "Echo", desc.MethodName)
}

func TestInvalidArgument(t *testing.T) {
	_, err := Decimal(&structpb.Struct{}, "quantity")
	assert.Equal(t, codes.InvalidArgument, status.Code(InvalidArgument(err)))
}
