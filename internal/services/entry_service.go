// Package services orchestrates ledger writes, entry events and background
// sweeps.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"assistente/internal/core"
	"assistente/internal/ledger"
)

// Publisher announces recorded entries. *amqp.Client implements it.
type Publisher interface {
	PublishEntryRecorded(ctx context.Context, id int64, userID string) error
	Close() error
}

// EntryService saves entries to the ledger and publishes an event for each
// new one. It implements ledger.Writer.
type EntryService struct {
	writer    ledger.Writer
	publisher Publisher
}

// NewEntryService accepts a nil publisher; events are then skipped.
func NewEntryService(writer ledger.Writer, publisher Publisher) *EntryService {
	return &EntryService{
		writer:    writer,
		publisher: publisher,
	}
}

// Insert stores the entry first and then publishes. A publishing failure is
// logged and never fails the insert: the mirror sweep picks the entry up.
func (s *EntryService) Insert(ctx context.Context, e core.Entry) (int64, error) {
	id, err := s.writer.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping entry event", "id", id)
		return id, nil
	}
	if err := s.publisher.PublishEntryRecorded(ctx, id, e.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry event", "id", id, "error", err)
	}
	return id, nil
}

// Close closes the publisher.
func (s *EntryService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}

var _ ledger.Writer = (*EntryService)(nil)
