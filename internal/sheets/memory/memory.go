package memory

import (
	"context"
	"fmt"
	"sync"

	"assistente/internal/core"
	ports "assistente/internal/sheets"
)

// Sheet keeps appended rows in memory. The worker uses it when no
// spreadsheet is configured, so the mirror pipeline still runs end to end.
type Sheet struct {
	mu   sync.Mutex
	rows []core.Entry
}

var _ ports.EntryAppender = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Sheet) Append(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, e)
	// row 1 is the header on a real sheet
	return fmt.Sprintf("mem!A%d", len(s.rows)+1), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sheet) Rows() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.rows...)
}
