package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spesebot/internal/core"
	applog "spesebot/internal/log"

	_ "modernc.org/sqlite"
)

// ErrRecordNotFound is returned when no row has the requested id.
var ErrRecordNotFound = errors.New("expense record not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// StoredRecord is an expense record together with its outbox state.
type StoredRecord struct {
	ID         int64
	Record     core.ExpenseRecord
	SyncStatus string
}

// PendingSyncRecord represents the minimal data needed to re-drive a sync.
type PendingSyncRecord struct {
	ID         int64
	RecordedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps writes serialized and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements sheets.RecordWriter. The row reference is the record id.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	// amount_cents stays NULL for amounts AmountCents cannot represent
	var cents sql.NullInt64
	if v, err := core.AmountCents(rec.Amount); err == nil {
		cents = sql.NullInt64{Int64: v, Valid: true}
	}

	id, err := r.queries.CreateExpenseRecord(ctx, CreateExpenseRecordParams{
		RecordedAt:  rec.Timestamp.Format(time.RFC3339Nano),
		Amount:      rec.Amount,
		AmountCents: cents,
		Category:    rec.Category.String(),
		Note:        rec.Note,
	})
	if err != nil {
		return "", fmt.Errorf("create expense record: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).InfoContext(ctx, "Expense record saved to SQLite",
		applog.FieldRecordID, id,
		applog.FieldAmount, rec.Amount,
		applog.FieldCategory, rec.Category.String())

	return strconv.FormatInt(id, 10), nil
}

// GetRecord retrieves a single record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (StoredRecord, error) {
	row, err := r.queries.GetExpenseRecord(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRecord{}, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return StoredRecord{}, fmt.Errorf("get expense record: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("parse recorded_at of record %d: %w", id, err)
	}
	cat, err := core.ParseCategory(row.Category)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("record %d: %w", id, err)
	}

	return StoredRecord{
		ID: row.ID,
		Record: core.ExpenseRecord{
			Timestamp: ts,
			Amount:    row.Amount,
			Category:  cat,
			Note:      row.Note,
		},
		SyncStatus: row.SyncStatus,
	}, nil
}

// GetPendingSync returns up to limit records that still need to reach the sheet, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := r.queries.GetPendingSyncRecords(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}

	out := make([]PendingSyncRecord, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at of record %d: %w", row.ID, err)
		}
		out = append(out, PendingSyncRecord{ID: row.ID, RecordedAt: ts})
	}
	return out, nil
}

// ClaimForSync moves a pending or errored record to syncing. It reports false
// when the record is unknown, already synced or claimed by another sync.
func (r *SQLiteRepository) ClaimForSync(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.ClaimExpenseRecordForSync(ctx, id)
	if err != nil {
		return false, fmt.Errorf("claim record for sync: %w", err)
	}
	return n == 1, nil
}

// MarkSynced marks a record as successfully synced.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	n, err := r.queries.MarkExpenseRecordSynced(ctx, id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).InfoContext(ctx, "Expense record marked as synced",
		applog.FieldRecordID, id)
	return nil
}

// MarkSyncError marks a record as failed. Synced records are left untouched.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.queries.MarkExpenseRecordSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).WarnContext(ctx, "Expense record marked with sync error",
		applog.FieldRecordID, id)
	return nil
}

// RetryFailed moves errored records, and records left syncing by an
// interrupted worker, back to pending. It returns how many moved.
// Call it only while no sync is in flight.
func (r *SQLiteRepository) RetryFailed(ctx context.Context) (int64, error) {
	n, err := r.queries.ResetUnfinishedSyncs(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset sync errors: %w", err)
	}
	return n, nil
}
