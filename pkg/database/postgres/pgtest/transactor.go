// Package pgtest provides an in-memory stand-in for postgres.Transactor.
package pgtest

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// Snapshotter is a store able to roll itself back to the moment Snapshot was called.
type Snapshotter interface {
	Snapshot() (restore func())
}

type txKey struct{}

// Transactor runs one transaction at a time. A transaction started while another one is
// open fails at once with lock_not_available, the way FOR UPDATE NOWAIT does. On error
// every registered store is restored.
type Transactor struct {
	mu     sync.Mutex
	stores []Snapshotter

	countMu   sync.Mutex
	Committed int
	Rolled    int
}

func NewTransactor(stores ...Snapshotter) *Transactor {
	return &Transactor{stores: stores}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	if !t.mu.TryLock() {
		return &pgconn.PgError{Code: "55P03", Message: "could not obtain lock on row"}
	}
	defer t.mu.Unlock()

	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		t.count(&t.Rolled)
		return err
	}
	t.count(&t.Committed)
	return nil
}

func (t *Transactor) count(n *int) {
	t.countMu.Lock()
	*n++
	t.countMu.Unlock()
}
