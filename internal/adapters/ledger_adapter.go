package adapters

import (
	"context"

	"assistente/internal/core"
	"assistente/internal/ledger"
)

// LedgerAdapter serves reads and stats from the store and routes writes
// through a separate writer, normally services.EntryService so that every
// insert also emits an event. The assistant and the HTTP layer only ever see
// a ledger.Store.
type LedgerAdapter struct {
	store  ledger.Store
	writer ledger.Writer
}

// NewLedgerAdapter falls back to store for writes when writer is nil.
func NewLedgerAdapter(store ledger.Store, writer ledger.Writer) *LedgerAdapter {
	if writer == nil {
		writer = store
	}
	return &LedgerAdapter{store: store, writer: writer}
}

// Insert implements ledger.Writer
func (a *LedgerAdapter) Insert(ctx context.Context, e core.Entry) (int64, error) {
	return a.writer.Insert(ctx, e)
}

// SumAndCount implements ledger.Reader
func (a *LedgerAdapter) SumAndCount(ctx context.Context, userID string, kind core.Kind, w core.Window) (core.KindTotals, error) {
	return a.store.SumAndCount(ctx, userID, kind, w)
}

// TopCategories implements ledger.Reader
func (a *LedgerAdapter) TopCategories(ctx context.Context, userID string, w core.Window, limit int) ([]core.CategoryTotal, error) {
	return a.store.TopCategories(ctx, userID, w, limit)
}

// Recent implements ledger.Reader
func (a *LedgerAdapter) Recent(ctx context.Context, userID string, w core.Window, limit int) ([]core.Entry, error) {
	return a.store.Recent(ctx, userID, w, limit)
}

// ReadSnapshot implements ledger.Snapshotter when the underlying store does.
// Otherwise fn reads straight from the store.
func (a *LedgerAdapter) ReadSnapshot(ctx context.Context, fn func(ledger.Reader) error) error {
	if snap, ok := a.store.(ledger.Snapshotter); ok {
		return snap.ReadSnapshot(ctx, fn)
	}
	return fn(a.store)
}

// Stats implements ledger.Stats
func (a *LedgerAdapter) Stats(ctx context.Context) (core.LedgerStats, error) {
	return a.store.Stats(ctx)
}

// Ping implements ledger.Stats
func (a *LedgerAdapter) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

var (
	_ ledger.Store       = (*LedgerAdapter)(nil)
	_ ledger.Snapshotter = (*LedgerAdapter)(nil)
)
