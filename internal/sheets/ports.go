package sheets

import (
	"context"

	"assistente/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryAppender writes one ledger entry as a spreadsheet row.
	EntryAppender interface {
		Append(ctx context.Context, e core.Entry) (rowRef string, err error)
	}
)
