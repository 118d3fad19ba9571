// Package worker copies ledger entries to the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"assistente/internal/amqp"
	"assistente/internal/core"
	"assistente/internal/ledger"
	"assistente/internal/sheets"
)

const DefaultBatchSize = 10

// MirrorWorker appends entries to the sheet and marks them mirrored in the
// ledger. An entry is appended at most once per successful mark.
type MirrorWorker struct {
	ledger    ledger.Mirror
	sheet     sheets.EntryAppender
	batchSize int
	now       func() time.Time
}

func NewMirrorWorker(l ledger.Mirror, sheet sheets.EntryAppender, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MirrorWorker{
		ledger:    l,
		sheet:     sheet,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// HandleEntryRecorded mirrors the entry named by msg. Redelivered messages for
// entries already mirrored are acknowledged without touching the sheet, and
// messages for entries that no longer exist are dropped.
func (w *MirrorWorker) HandleEntryRecorded(ctx context.Context, msg *amqp.EntryRecordedMessage) error {
	slog.InfoContext(ctx, "Processing entry recorded message", "id", msg.ID, "user", msg.UserID)

	done, err := w.ledger.Mirrored(ctx, msg.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		slog.WarnContext(ctx, "Entry not found, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("check mirror state: %w", err)
	}
	if done {
		slog.DebugContext(ctx, "Entry already mirrored", "id", msg.ID)
		return nil
	}

	entry, err := w.ledger.Get(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get entry from ledger: %w", err)
	}
	return w.mirror(ctx, entry)
}

// ProcessPending mirrors one batch of entries still waiting for a row. It is
// the fallback for lost messages and worker downtime.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	_, _, err := w.processBatch(ctx, w.batchSize)
	return err
}

// StartupCheck drains a larger batch once when the worker starts.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	ok, failed, err := w.processBatch(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup mirror check: %w", err)
	}
	if ok+failed == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup mirror completed", "mirrored", ok, "errors", failed)
	return nil
}

func (w *MirrorWorker) processBatch(ctx context.Context, limit int) (ok, failed int, err error) {
	pending, err := w.ledger.PendingMirror(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))
	for _, e := range pending {
		if ctx.Err() != nil {
			return ok, failed, ctx.Err()
		}
		if err := w.mirror(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror entry", "id", e.ID, "error", err)
			failed++
			continue
		}
		ok++
	}
	return ok, failed, nil
}

func (w *MirrorWorker) mirror(ctx context.Context, e core.Entry) error {
	ref, err := w.sheet.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.ledger.MarkMirrored(ctx, e.ID, w.now()); err != nil {
		// The row exists; a later sweep would append it again, so surface it.
		return fmt.Errorf("mark entry %d mirrored (row %s): %w", e.ID, ref, err)
	}

	slog.InfoContext(ctx, "Entry mirrored",
		"id", e.ID,
		"sheets_ref", ref,
		"kind", e.Kind.String(),
		"amount_cents", e.Amount.Cents())
	return nil
}
