package worker

import (
	"context"
	"errors"
	"fmt"

	"spesebot/internal/amqp"
	applog "spesebot/internal/log"
	"spesebot/internal/sheets"
	"spesebot/internal/storage"
)

// RecordRepository is the part of the SQLite outbox the worker needs.
type RecordRepository interface {
	GetRecord(ctx context.Context, id int64) (storage.StoredRecord, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSyncRecord, error)
	ClaimForSync(ctx context.Context, id int64) (bool, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
	RetryFailed(ctx context.Context) (int64, error)
}

// SyncWorker copies expense records from SQLite to Google Sheets
type SyncWorker struct {
	storage   RecordRepository
	sheets    sheets.RecordWriter
	batchSize int
}

func NewSyncWorker(storage RecordRepository, sheets sheets.RecordWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

func (w *SyncWorker) logger(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentWorker)
}

// HandleSyncMessage processes a single record sync message from AMQP.
// Redelivered messages for rows that are already synced are acknowledged without a second append,
// and so are messages for rows another sync has claimed.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	logger := w.logger(ctx).With(applog.FieldRecordID, msg.ID)
	logger.InfoContext(ctx, "Processing sync message", "published_at", msg.Timestamp)

	stored, err := w.storage.GetRecord(ctx, msg.ID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		logger.WarnContext(ctx, "Sync message for unknown record, dropping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	if stored.SyncStatus == storage.SyncSynced {
		logger.DebugContext(ctx, "Record already synced, skipping")
		return nil
	}

	claimed, err := w.storage.ClaimForSync(ctx, msg.ID)
	if err != nil {
		return err
	}
	if !claimed {
		logger.DebugContext(ctx, "Record claimed by another sync, skipping")
		return nil
	}

	return w.syncRecord(ctx, stored)
}

// ProcessPending syncs one batch of records that haven't reached the sheet yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	_, _, err := w.syncPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck re-queues failed rows and rows a previous run left claimed,
// then syncs a larger batch of pending ones. It recovers from missed AMQP
// messages or worker downtime, so call it before consuming.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	logger := w.logger(ctx)

	moved, err := w.storage.RetryFailed(ctx)
	if err != nil {
		return fmt.Errorf("retry failed records: %w", err)
	}
	if moved > 0 {
		logger.InfoContext(ctx, "Re-queued records with sync errors", "count", moved)
	}

	synced, failed, err := w.syncPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}

	logger.InfoContext(ctx, "Startup sync completed",
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	logger := w.logger(ctx)
	logger.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}

		claimed, err := w.storage.ClaimForSync(ctx, p.ID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to claim record", applog.FieldRecordID, p.ID, applog.FieldError, err)
			failed++
			continue
		}
		if !claimed {
			continue
		}

		stored, err := w.storage.GetRecord(ctx, p.ID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to get record", applog.FieldRecordID, p.ID, applog.FieldError, err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldRecordID, p.ID, applog.FieldError, err)
			}
			failed++
			continue
		}

		if err := w.syncRecord(ctx, stored); err != nil {
			logger.ErrorContext(ctx, "Failed to sync record", applog.FieldRecordID, p.ID, applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	return synced, failed, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, stored storage.StoredRecord) error {
	logger := w.logger(ctx)

	ref, err := w.sheets.Append(ctx, stored.Record)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, stored.ID); markErr != nil {
			logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldRecordID, stored.ID, applog.FieldError, markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The row is in the sheet at this point; a failed status update only means a possible duplicate later.
	if err := w.storage.MarkSynced(ctx, stored.ID); err != nil {
		logger.ErrorContext(ctx, "Failed to mark as synced", applog.FieldRecordID, stored.ID, applog.FieldError, err)
	}

	logger.InfoContext(ctx, "Synced record",
		append([]any{applog.FieldRecordID, stored.ID, applog.FieldRowRef, ref},
			applog.NewFields().WithRecord(stored.Record).ToSlice()...)...)

	return nil
}
