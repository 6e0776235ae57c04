package apperror

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPC converts an error into a gRPC status error. Anything that is not an *Error is
// reported as Internal.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindNotFound:
			return status.Error(codes.NotFound, appErr.Message)
		case KindInsufficientStock:
			return status.Error(codes.FailedPrecondition, appErr.Message)
		case KindLockConflict:
			return status.Error(codes.Aborted, appErr.Message)
		case KindValidation:
			return status.Error(codes.InvalidArgument, appErr.Message)
		}
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}
