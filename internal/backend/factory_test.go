package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spesebot/internal/config"
	"spesebot/internal/core"
	"spesebot/internal/services"
	"spesebot/internal/sheets/memory"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range BackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("postgres").IsValid())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "csv"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:              "sheets",
		GoogleSpreadsheetID:      "sheet-id",
		GoogleSheetName:          "Expenses",
		GoogleServiceAccountFile: "/etc/sa.json",
	})
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)

	g := cfg.GoogleConfig()
	assert.Equal(t, "sheet-id", g.SpreadsheetID)
	assert.Equal(t, "Expenses", g.SheetName)
	assert.Equal(t, "/etc/sa.json", g.CredentialsFile)
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Writer)
	assert.Nil(t, res.Cleanup)
}

func TestCreateBackend_SQLiteWithoutAMQP(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "spesebot.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	assert.IsType(t, &services.RecordService{}, res.Writer)

	rec := core.NewExpenseRecord(core.PendingEntry{Amount: "250", Note: "Coffee"}, core.Food, time.Now())
	ref, err := res.Writer.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "1", ref)
}

func TestCreateBackend_SheetsRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:                SheetsBackend,
		GoogleSpreadsheetID: "sheet-id",
	})
	require.Error(t, err)
}

func TestCreateBackend_InvalidType(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "csv"})
	require.Error(t, err)
}
