// Package ledger defines the persistence ports used by the assistant and the
// report aggregator. Implementations live in internal/storage (SQLite) and
// internal/ledger/memory.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistente/internal/core"
)

// ErrPersistence marks every failure that comes from the store. Callers use
// errors.Is to tell it apart from validation problems.
var ErrPersistence = errors.New("ledger persistence failure")

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("entry not found")

type (
	Writer interface {
		// Insert stores e atomically and returns its id.
		Insert(ctx context.Context, e core.Entry) (int64, error)
	}

	Reader interface {
		// SumAndCount totals the entries of one kind inside the window.
		SumAndCount(ctx context.Context, userID string, kind core.Kind, w core.Window) (core.KindTotals, error)
		// TopCategories ranks expense categories by sum, largest first.
		TopCategories(ctx context.Context, userID string, w core.Window, limit int) ([]core.CategoryTotal, error)
		// Recent lists entries newest first by RecordedAt.
		Recent(ctx context.Context, userID string, w core.Window, limit int) ([]core.Entry, error)
	}

	// Snapshotter is implemented by stores that can serve several reads
	// from one consistent view of the ledger. Writes committed while fn runs
	// are not visible to the Reader it receives.
	Snapshotter interface {
		ReadSnapshot(ctx context.Context, fn func(Reader) error) error
	}

	Stats interface {
		Stats(ctx context.Context) (core.LedgerStats, error)
		Ping(ctx context.Context) error
	}

	// Mirror is used by the spreadsheet mirror worker.
	Mirror interface {
		Get(ctx context.Context, id int64) (core.Entry, error)
		// Mirrored reports whether id already has a spreadsheet row.
		Mirrored(ctx context.Context, id int64) (bool, error)
		PendingMirror(ctx context.Context, limit int) ([]core.Entry, error)
		MarkMirrored(ctx context.Context, id int64, at time.Time) error
	}

	Store interface {
		Writer
		Reader
		Stats
	}
)

// Persistence wraps err so that it matches ErrPersistence while keeping the
// original error in the chain. A nil err stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}
