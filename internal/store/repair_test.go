package store

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/annotate"
	"github.com/agentic-research/treescan/internal/logging"
)

// createLegacyDB writes a first-generation table: no desktop columns, no meta,
// and a Sub-Hidden column that only reflects the entry's own name.
func createLegacyDB(t *testing.T, dir, name string, withPaths bool) string {
	t.Helper()
	dbPath := filepath.Join(dir, name)
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var cols []string
	for _, c := range api.Columns {
		switch c.Name {
		case "desktop", "sub_desktop", "sub_desktop_parent":
			continue
		}
		cols = append(cols, fmt.Sprintf("%s INTEGER", c.Name))
	}
	if withPaths {
		cols = append(cols, "path TEXT")
	}
	_, err = db.Exec(fmt.Sprintf("CREATE TABLE entries (%s)", strings.Join(cols, ", ")))
	require.NoError(t, err)

	rows := []struct {
		idx, parent int
		hidden      int
		path        string
	}{
		{0, -1, 0, "/"},
		{1, 0, 1, "/.cache/"},
		{2, 0, 0, "/Desktop/"},
		{3, 1, 0, "/.cache/file"},
		{4, 2, 0, "/Desktop/a.txt"},
	}
	for _, r := range rows {
		if withPaths {
			_, err = db.Exec("INSERT INTO entries (idx, parent, hidden, sub_hidden, path) VALUES (?, ?, ?, ?, ?)",
				r.idx, r.parent, r.hidden, r.hidden, r.path)
		} else {
			_, err = db.Exec("INSERT INTO entries (idx, parent, hidden, sub_hidden) VALUES (?, ?, ?, ?)",
				r.idx, r.parent, r.hidden, r.hidden)
		}
		require.NoError(t, err)
	}
	return dbPath
}

func rowsByIndex(t *testing.T, dbPath string) []map[string]any {
	t.Helper()
	r, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	return readAll(t, r)
}

func TestRepair_LegacyPublicTable(t *testing.T) {
	dbPath := createLegacyDB(t, t.TempDir(), "old_public.db", true)

	changed, err := Repair(dbPath, RepairOptions{})
	require.NoError(t, err)
	assert.True(t, changed)

	rows := rowsByIndex(t, dbPath)
	require.Len(t, rows, 5)
	assert.Equal(t, true, rows[3]["sub_hidden"], "/.cache/file inherits from its parent")
	assert.Equal(t, false, rows[3]["hidden"])
	assert.Equal(t, true, rows[2]["desktop"])
	assert.Equal(t, true, rows[4]["sub_desktop"])
	assert.Equal(t, true, rows[0]["sub_desktop_parent"])
	assert.Equal(t, false, rows[4]["sub_desktop_parent"])

	r, err := Open(dbPath)
	require.NoError(t, err)
	meta, err := r.Meta()
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, api.SchemaVersion, meta.SchemaVersion)
	assert.True(t, meta.Public)

	changed, err = Repair(dbPath, RepairOptions{})
	require.NoError(t, err)
	assert.False(t, changed, "current tables are skipped")
}

func TestRepair_LegacyPrivateTable(t *testing.T) {
	dbPath := createLegacyDB(t, t.TempDir(), "old.db", false)

	var buf bytes.Buffer
	logger := logging.New(&buf, logging.LevelWarn)
	changed, err := Repair(dbPath, RepairOptions{Logger: logger})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, buf.String(), "stores no paths")

	rows := rowsByIndex(t, dbPath)
	assert.Equal(t, true, rows[3]["sub_hidden"])
	for _, row := range rows {
		assert.Equal(t, false, row["desktop"], "desktop flags default to false without paths")
		assert.Equal(t, false, row["sub_desktop_parent"])
	}
}

func TestRepair_LiteralRule(t *testing.T) {
	dbPath := createLegacyDB(t, t.TempDir(), "old_public.db", true)

	_, err := Repair(dbPath, RepairOptions{DesktopRule: annotate.RuleLiteral})
	require.NoError(t, err)
	for _, row := range rowsByIndex(t, dbPath) {
		assert.Equal(t, true, row["sub_desktop_parent"], row["path"])
	}
}

func TestRepair_CurrentTableSkipped(t *testing.T) {
	dbPath := writeSample(t, true)
	before, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	changed, err := Repair(dbPath, RepairOptions{})
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRepair_NoEntriesTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE other (x INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Repair(dbPath, RepairOptions{})
	require.Error(t, err)
}

func TestRepairDir(t *testing.T) {
	dir := t.TempDir()
	createLegacyDB(t, dir, "a_public.db", true)
	createLegacyDB(t, dir, "b.db", false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("x"), 0o644))

	n, err := RepairDir(dir, RepairOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = RepairDir(dir, RepairOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.db"), []byte("not a database"), 0o644))
	_, err = RepairDir(dir, RepairOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.db")
}
