package backend

import (
	"context"

	"spesebot/internal/sheets"
)

// CleanupFunc releases connections held by a sink.
type CleanupFunc func() error

// BackendResult is the sink the bot writes finalized records to. Cleanup is nil
// when the sink holds no resources.
type BackendResult struct {
	Writer  sheets.RecordWriter
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config carries the subset of the application config a sink needs.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType names a record sink; the values match DATA_BACKEND.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	for _, t := range BackendTypes() {
		if bt == t {
			return true
		}
	}
	return false
}

// BackendTypes lists the supported sinks, the default first.
func BackendTypes() []BackendType {
	return []BackendType{SheetsBackend, SQLiteBackend, MemoryBackend}
}
