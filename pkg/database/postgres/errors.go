package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// ErrSerialization marks a transaction that lost a serializable conflict and may be retried.
var ErrSerialization = errors.New("postgres: serialization conflict")

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsLockNotAvailable reports whether a NOWAIT lock request hit a row held by another tx.
func IsLockNotAvailable(err error) bool {
	return pgCode(err) == codeLockNotAvailable
}

func IsSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// IsStatementTimeout reports whether statement_timeout cancelled the query.
func IsStatementTimeout(err error) bool {
	return pgCode(err) == codeQueryCanceled
}
