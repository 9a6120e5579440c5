package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Sync states of a stored record.
const (
	SyncPending = "pending"
	SyncSyncing = "syncing"
	SyncSynced  = "synced"
	SyncError   = "error"
)

type ExpenseRecordRow struct {
	ID          int64
	RecordedAt  string
	Amount      string
	AmountCents sql.NullInt64
	Category    string
	Note        string
	SyncStatus  string
	CreatedAt   string
	SyncedAt    sql.NullString
}

type CreateExpenseRecordParams struct {
	RecordedAt  string
	Amount      string
	AmountCents sql.NullInt64
	Category    string
	Note        string
}

const createExpenseRecord = `
INSERT INTO expense_records (recorded_at, amount, amount_cents, category, note)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateExpenseRecord(ctx context.Context, arg CreateExpenseRecordParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createExpenseRecord,
		arg.RecordedAt,
		arg.Amount,
		arg.AmountCents,
		arg.Category,
		arg.Note,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getExpenseRecord = `
SELECT id, recorded_at, amount, amount_cents, category, note, sync_status, created_at, synced_at
FROM expense_records
WHERE id = ?
`

func (q *Queries) GetExpenseRecord(ctx context.Context, id int64) (ExpenseRecordRow, error) {
	row := q.db.QueryRowContext(ctx, getExpenseRecord, id)
	var i ExpenseRecordRow
	err := row.Scan(
		&i.ID,
		&i.RecordedAt,
		&i.Amount,
		&i.AmountCents,
		&i.Category,
		&i.Note,
		&i.SyncStatus,
		&i.CreatedAt,
		&i.SyncedAt,
	)
	return i, err
}

const getPendingSyncRecords = `
SELECT id, recorded_at
FROM expense_records
WHERE sync_status = 'pending'
ORDER BY id
LIMIT ?
`

type GetPendingSyncRecordsRow struct {
	ID         int64
	RecordedAt string
}

func (q *Queries) GetPendingSyncRecords(ctx context.Context, limit int64) ([]GetPendingSyncRecordsRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncRecords, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPendingSyncRecordsRow
	for rows.Next() {
		var i GetPendingSyncRecordsRow
		if err := rows.Scan(&i.ID, &i.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const claimExpenseRecordForSync = `
UPDATE expense_records
SET sync_status = 'syncing'
WHERE id = ? AND sync_status IN ('pending', 'error')
`

func (q *Queries) ClaimExpenseRecordForSync(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, claimExpenseRecordForSync, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markExpenseRecordSynced = `
UPDATE expense_records
SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) MarkExpenseRecordSynced(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markExpenseRecordSynced, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markExpenseRecordSyncError = `
UPDATE expense_records
SET sync_status = 'error'
WHERE id = ? AND sync_status <> 'synced'
`

func (q *Queries) MarkExpenseRecordSyncError(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markExpenseRecordSyncError, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const resetUnfinishedSyncs = `
UPDATE expense_records
SET sync_status = 'pending'
WHERE sync_status IN ('error', 'syncing')
`

func (q *Queries) ResetUnfinishedSyncs(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, resetUnfinishedSyncs)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
