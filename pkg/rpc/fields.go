package rpc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func String(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func Bool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func Int(s *structpb.Struct, key string) int {
	return int(s.GetFields()[key].GetNumberValue())
}

func Struct(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

// StructList returns the object elements of a list field; other elements are skipped.
func StructList(s *structpb.Struct, key string) []*structpb.Struct {
	values := s.GetFields()[key].GetListValue().GetValues()
	out := make([]*structpb.Struct, 0, len(values))
	for _, v := range values {
		if obj := v.GetStructValue(); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

func StringList(s *structpb.Struct, key string) []string {
	values := s.GetFields()[key].GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str := v.GetStringValue(); str != "" {
			out = append(out, str)
		}
	}
	return out
}

// Decimal reads a required decimal given as a string or a JSON number. Strings keep
// their full precision.
func Decimal(s *structpb.Struct, key string) (decimal.Decimal, error) {
	d, err := OptionalDecimal(s, key)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, fmt.Errorf("%s is required", key)
	}
	return *d, nil
}

// OptionalDecimal is Decimal returning nil when the field is absent or null.
func OptionalDecimal(s *structpb.Struct, key string) (*decimal.Decimal, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return nil, fmt.Errorf("%s is not a decimal: %w", key, err)
		}
		return &d, nil
	case *structpb.Value_NumberValue:
		d := decimal.NewFromFloat(kind.NumberValue)
		return &d, nil
	default:
		return nil, fmt.Errorf("%s must be a string or a number", key)
	}
}

// Time reads an RFC 3339 timestamp; an absent field is the zero time.
func Time(s *structpb.Struct, key string) (time.Time, error) {
	raw := String(s, key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s is not an RFC 3339 timestamp: %w", key, err)
	}
	return t, nil
}

// InvalidArgument wraps a request decoding error.
func InvalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

// Response converts a handler's plain map into the wire message.
func Response(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func Strings(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Deref returns "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
