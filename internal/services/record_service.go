package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"spesebot/internal/core"
	applog "spesebot/internal/log"
)

// RecordStore persists records locally and hands back their id as row reference.
type RecordStore interface {
	Append(ctx context.Context, rec core.ExpenseRecord) (string, error)
	Close() error
}

// SyncPublisher announces a stored record to the sync worker.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, id int64) error
	Close() error
}

// RecordService saves expense records to SQLite and queues them for the sheet.
// It implements sheets.RecordWriter.
type RecordService struct {
	store     RecordStore
	publisher SyncPublisher
}

// NewRecordService wires the local store with an optional publisher (nil disables AMQP).
func NewRecordService(store RecordStore, publisher SyncPublisher) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
	}
}

// Append saves the record locally and publishes a sync message.
// Once the local save succeeds the record counts as written; publish problems are only logged
// and the worker's pending scan picks the row up later.
func (s *RecordService) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	ref, err := s.store.Append(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	logger := applog.FromContext(ctx).WithComponent(applog.ComponentStorage)

	if s.publisher == nil {
		logger.DebugContext(ctx, "AMQP not configured, skipping sync message", applog.FieldRowRef, ref)
		return ref, nil
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse record id", applog.FieldRowRef, ref, applog.FieldError, err)
		return ref, nil
	}

	if err := s.publisher.PublishRecordSync(ctx, id); err != nil {
		logger.LogError(ctx, "Failed to publish sync message", err, applog.OpSync,
			applog.NewFields().WithRecord(rec))
	}

	return ref, nil
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}

	return nil
}
