package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spesebot/internal/core"
)

type fakeStore struct {
	ref      string
	err      error
	closeErr error
	appended []core.ExpenseRecord
	closed   bool
}

func (f *fakeStore) Append(_ context.Context, rec core.ExpenseRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, rec)
	return f.ref, nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return f.closeErr
}

type fakePublisher struct {
	err       error
	closeErr  error
	published []int64
}

func (f *fakePublisher) PublishRecordSync(_ context.Context, id int64) error {
	f.published = append(f.published, id)
	return f.err
}

func (f *fakePublisher) Close() error { return f.closeErr }

func sampleRecord() core.ExpenseRecord {
	return core.NewExpenseRecord(core.PendingEntry{Amount: "250", Note: "Coffee"}, core.Food, time.Now())
}

func TestRecordService_AppendPublishes(t *testing.T) {
	store := &fakeStore{ref: "17"}
	pub := &fakePublisher{}
	svc := NewRecordService(store, pub)

	ref, err := svc.Append(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "17", ref)
	assert.Len(t, store.appended, 1)
	assert.Equal(t, []int64{17}, pub.published)
}

func TestRecordService_PublishFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{ref: "3"}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewRecordService(store, pub)

	ref, err := svc.Append(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "3", ref)
}

func TestRecordService_WithoutPublisher(t *testing.T) {
	store := &fakeStore{ref: "1"}
	svc := NewRecordService(store, nil)

	ref, err := svc.Append(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "1", ref)
}

func TestRecordService_StoreFailure(t *testing.T) {
	storeErr := errors.New("disk full")
	pub := &fakePublisher{}
	svc := NewRecordService(&fakeStore{err: storeErr}, pub)

	_, err := svc.Append(context.Background(), sampleRecord())
	require.ErrorIs(t, err, storeErr)
	assert.Empty(t, pub.published)
}

func TestRecordService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		require.NoError(t, (&RecordService{}).Close())
	})

	t.Run("joins errors", func(t *testing.T) {
		storeErr := errors.New("store")
		pubErr := errors.New("amqp")
		store := &fakeStore{closeErr: storeErr}
		svc := NewRecordService(store, &fakePublisher{closeErr: pubErr})

		err := svc.Close()
		assert.True(t, store.closed)
		assert.ErrorIs(t, err, storeErr)
		assert.ErrorIs(t, err, pubErr)
	})
}
