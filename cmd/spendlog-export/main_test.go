package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/core"
	"spendlog/internal/exchange"
	"spendlog/internal/storage"
	"spendlog/internal/store"
)

func seedDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spendlog.db")
	db, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	st, err := store.Open(ctx, db)
	require.NoError(t, err)

	_, err = st.Add(ctx, core.Draft{Date: "2024-03-05", Category: "food", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = st.Add(ctx, core.Draft{Date: "2024-02-01", Category: "travel", Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	return path
}

func TestRunCSVAppliesFilters(t *testing.T) {
	dbPath := seedDatabase(t)
	outPath := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, run(dbPath, "csv", outPath, core.FilterSpec{Month: "2024-03"}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "food")
}

func TestRunJSONExportsFullSnapshot(t *testing.T) {
	dbPath := seedDatabase(t)
	outPath := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, run(dbPath, "json", outPath, core.FilterSpec{}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var snap exchange.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, exchange.SnapshotVersion, snap.Version)
	assert.Len(t, snap.Expenses, 2)
}

func TestRunJSONRejectsFilters(t *testing.T) {
	err := run("unused.db", "json", "", core.FilterSpec{Month: "2024-03"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv output only")
}

func TestRunRejectsUnknownFormatAndSort(t *testing.T) {
	require.Error(t, run("unused.db", "xml", "", core.FilterSpec{}))
	require.Error(t, run("unused.db", "csv", "", core.FilterSpec{Sort: "sideways"}))
}
