package sheets

import (
	"context"

	"spesebot/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordWriter appends a finalized expense to durable storage.
	// Each call is a single attempt; implementations do not retry.
	RecordWriter interface {
		Append(ctx context.Context, r core.ExpenseRecord) (rowRef string, err error)
	}
)
