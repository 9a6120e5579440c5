package worker

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spesebot/internal/amqp"
	"spesebot/internal/core"
	"spesebot/internal/sheets/memory"
	"spesebot/internal/storage"
)

func setup(t *testing.T) (*storage.SQLiteRepository, *memory.Store, *SyncWorker) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	sink := memory.New()
	return repo, sink, NewSyncWorker(repo, sink, 2)
}

func store(t *testing.T, repo *storage.SQLiteRepository, amount, note string) int64 {
	t.Helper()
	rec := core.NewExpenseRecord(core.PendingEntry{Amount: amount, Note: note}, core.Food, time.Now())
	ref, err := repo.Append(context.Background(), rec)
	require.NoError(t, err)
	id, err := strconv.ParseInt(ref, 10, 64)
	require.NoError(t, err)
	return id
}

func TestHandleSyncMessage(t *testing.T) {
	repo, sink, w := setup(t)
	ctx := context.Background()
	id := store(t, repo, "250", "Coffee")

	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id)))

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "250", records[0].Amount)
	assert.Equal(t, "Coffee", records[0].Note)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storage.SyncSynced, got.SyncStatus)

	// redelivery does not append twice
	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id)))
	assert.Len(t, sink.Records(), 1)
}

func TestHandleSyncMessage_UnknownRecordDropped(t *testing.T) {
	_, sink, w := setup(t)

	require.NoError(t, w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage(404)))
	assert.Empty(t, sink.Records())
}

func TestHandleSyncMessage_SheetFailure(t *testing.T) {
	repo, sink, w := setup(t)
	ctx := context.Background()
	id := store(t, repo, "90", "Taxi")

	sheetErr := errors.New("quota exceeded")
	sink.FailWith(sheetErr)

	err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id))
	require.ErrorIs(t, err, sheetErr)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storage.SyncError, got.SyncStatus)
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	repo, sink, w := setup(t)
	ctx := context.Background()
	for _, note := range []string{"A", "B", "C"} {
		store(t, repo, "10", note)
	}

	require.NoError(t, w.ProcessPending(ctx))
	assert.Len(t, sink.Records(), 2)

	require.NoError(t, w.ProcessPending(ctx))
	assert.Len(t, sink.Records(), 3)

	pending, err := repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStartupSyncCheckRetriesFailed(t *testing.T) {
	repo, sink, w := setup(t)
	ctx := context.Background()
	failedID := store(t, repo, "500", "Rent share")
	store(t, repo, "40", "Tea")

	sink.FailWith(errors.New("sheet offline"))
	require.Error(t, w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(failedID)))
	sink.FailWith(nil)

	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Len(t, sink.Records(), 2)

	got, err := repo.GetRecord(ctx, failedID)
	require.NoError(t, err)
	assert.Equal(t, storage.SyncSynced, got.SyncStatus)
}

// gatedSheet holds every append until release is closed.
type gatedSheet struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSheet) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Store.Append(ctx, rec)
}

func TestConcurrentSyncPathsAppendOnce(t *testing.T) {
	tests := []struct {
		name   string
		first  func(context.Context, *SyncWorker, int64) error
		second func(context.Context, *SyncWorker, int64) error
	}{
		{
			name:   "message in flight, processor tick",
			first:  func(ctx context.Context, w *SyncWorker, id int64) error { return w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id)) },
			second: func(ctx context.Context, w *SyncWorker, _ int64) error { return w.ProcessPending(ctx) },
		},
		{
			name:   "processor in flight, message arrives",
			first:  func(ctx context.Context, w *SyncWorker, _ int64) error { return w.ProcessPending(ctx) },
			second: func(ctx context.Context, w *SyncWorker, id int64) error { return w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, sink, _ := setup(t)
			ctx := context.Background()
			id := store(t, repo, "250", "Coffee")

			gate := &gatedSheet{Store: sink, entered: make(chan struct{}, 2), release: make(chan struct{})}
			w := NewSyncWorker(repo, gate, 10)

			firstErr := make(chan error, 1)
			go func() { firstErr <- tt.first(ctx, w, id) }()

			select {
			case <-gate.entered:
			case <-time.After(2 * time.Second):
				t.Fatal("first sync never reached the sheet")
			}

			secondErr := make(chan error, 1)
			go func() { secondErr <- tt.second(ctx, w, id) }()
			select {
			case err := <-secondErr:
				require.NoError(t, err)
			case <-time.After(2 * time.Second):
				close(gate.release)
				t.Fatal("second sync appended a claimed record")
			}

			got, err := repo.GetRecord(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, storage.SyncSyncing, got.SyncStatus)

			close(gate.release)
			require.NoError(t, <-firstErr)

			assert.Len(t, sink.Records(), 1)
			got, err = repo.GetRecord(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, storage.SyncSynced, got.SyncStatus)
		})
	}
}

func TestStartupSyncCheckRecoversInterruptedClaim(t *testing.T) {
	repo, sink, w := setup(t)
	ctx := context.Background()
	id := store(t, repo, "60", "Snack")

	claimed, err := repo.ClaimForSync(ctx, id)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Len(t, sink.Records(), 1)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storage.SyncSynced, got.SyncStatus)
}
