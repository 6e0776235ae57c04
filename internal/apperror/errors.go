package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/shopspring/decimal"
)

// Kind is the category of a failed stock operation.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInsufficientStock
	KindLockConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindLockConflict:
		return "LOCK_CONFLICT"
	case KindValidation:
		return "VALIDATION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error is returned by usecases for every business condition the caller may act on.
type Error struct {
	Kind    Kind
	Message string
	// IDs lists the offending entity ids (validation failures).
	IDs []string
	// Requested and Available are set for insufficient stock.
	Requested decimal.Decimal
	Available decimal.Decimal
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable is true only for lock conflicts: retrying later may succeed without any
// change to the data.
func (e *Error) Retryable() bool {
	return e.Kind == KindLockConflict
}

func NewNotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewInsufficientStock(subject string, requested, available decimal.Decimal) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for %s: requested %s, available %s", subject, requested.String(), available.String()),
		Requested: requested,
		Available: available,
	}
}

func NewLockConflict(subject string, err error) *Error {
	return &Error{
		Kind:    KindLockConflict,
		Message: fmt.Sprintf("%s is locked by a concurrent transaction, retry later", subject),
		Err:     err,
	}
}

func NewValidation(message string, ids ...string) *Error {
	if len(ids) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(ids, ", "))
	}
	return &Error{Kind: KindValidation, Message: message, IDs: ids}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func IsRetryable(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Retryable()
}

// FromTx turns storage-level transaction conflicts into a LockConflict on subject.
// Other errors are returned untouched.
func FromTx(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, postgres.ErrSerialization) || postgres.IsSerializationFailure(err) ||
		postgres.IsLockNotAvailable(err) || postgres.IsStatementTimeout(err) {
		if KindOf(err) == KindLockConflict {
			return err
		}
		return NewLockConflict(subject, err)
	}
	return err
}
