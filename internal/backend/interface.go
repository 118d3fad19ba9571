package backend

import (
	"context"

	"assistente/internal/ledger"
)

// CleanupFunc releases what the backend opened.
type CleanupFunc func() error

// BackendResult contains the ledger and optional cleanup function.
type BackendResult struct {
	// Store is what the assistant and the HTTP layer use.
	Store ledger.Store
	// Mirror is the raw store seen by the spreadsheet worker.
	Mirror ledger.Mirror
	// Publishing reports whether inserts emit AMQP events.
	Publishing bool
	Cleanup    CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional publisher (sqlite only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
