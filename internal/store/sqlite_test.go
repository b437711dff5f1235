package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/entry"
	"github.com/agentic-research/treescan/internal/table"
)

func sampleRows() []entry.Entry {
	return []entry.Entry{
		{Index: 0, Parent: -1, Path: "/", IsDirectory: true, LinkTarget: api.NotALink, SubDesktopParent: true},
		{Index: 1, Parent: 0, Path: "/Desktop/", IsDirectory: true, LinkTarget: api.NotALink, Desktop: true, SubDesktop: true, UserRead: true},
		{Index: 3, Parent: 1, Path: "/Desktop/notes.txt", IsRegularFile: true, Size: 42, LinkTarget: api.NotALink, SubDesktop: true, Inode: 77},
		{Index: 2, Parent: 0, Path: "/link", LinkTarget: api.UnresolvedLink, Hidden: true, SubHidden: true},
	}
}

func writeSample(t *testing.T, public bool) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "scan.db")
	w, err := NewSQLiteWriter(dbPath, public)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table.Build(sampleRows(), public)))
	require.NoError(t, w.WriteFailures(entry.Failures{
		Unreadable: []string{"/private/"},
		Underived:  []string{"/orphan"},
		Links:      []entry.LinkFailure{{Path: "/link", Target: "/missing"}},
	}))
	require.NoError(t, w.WriteMeta(Meta{
		Platform:      "linux",
		UserType:      "stem",
		Root:          "/",
		Public:        public,
		SchemaVersion: api.SchemaVersion,
		Entries:       4,
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, w.Close())
	return dbPath
}

func readAll(t *testing.T, r *Reader) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, r.Each(func(row map[string]any) error {
		rows = append(rows, row)
		return nil
	}))
	return rows
}

func TestSQLiteWriter_Public(t *testing.T) {
	r, err := Open(writeSample(t, true))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	cols, err := r.Columns()
	require.NoError(t, err)
	assert.Equal(t, api.ColumnsFor(true), cols)

	rows := readAll(t, r)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, int64(i), row["idx"], "rows come back in index order")
	}
	assert.Equal(t, "/Desktop/notes.txt", rows[3]["path"])
	assert.Equal(t, int64(42), rows[3]["size"])
	assert.Equal(t, int64(77), rows[3]["inode"])
	assert.Equal(t, true, rows[1]["desktop"])
	assert.Equal(t, true, rows[1]["user_read"])
	assert.Equal(t, false, rows[1]["hidden"])
	assert.Equal(t, api.UnresolvedLink, rows[2]["link_target"])
	assert.Equal(t, api.NoParent, rows[0]["parent"])
}

func TestSQLiteWriter_PrivateHasNoPath(t *testing.T) {
	r, err := Open(writeSample(t, false))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	cols, err := r.Columns()
	require.NoError(t, err)
	assert.Len(t, cols, len(api.Columns))
	for _, row := range readAll(t, r) {
		assert.NotContains(t, row, "path")
	}
}

func TestSQLiteWriter_VisibilityMismatch(t *testing.T) {
	w, err := NewSQLiteWriter(filepath.Join(t.TempDir(), "scan.db"), false)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	require.Error(t, w.WriteTable(table.Build(sampleRows(), true)))
}

func TestSQLiteWriter_Batches(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scan.db")
	w, err := NewSQLiteWriter(dbPath, false)
	require.NoError(t, err)
	w.batchSize = 2

	rows := []entry.Entry{{Index: 0, Parent: -1, Path: "/"}}
	for i := 1; i < 7; i++ {
		rows = append(rows, entry.Entry{Index: int64(i), Parent: 0})
	}
	require.NoError(t, w.WriteTable(table.Build(rows, false)))
	require.NoError(t, w.Close())

	r, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Len(t, readAll(t, r), 7)
}

func TestReader_MetaAndFailures(t *testing.T) {
	r, err := Open(writeSample(t, true))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	meta, err := r.Meta()
	require.NoError(t, err)
	assert.Equal(t, "linux", meta.Platform)
	assert.Equal(t, "stem", meta.UserType)
	assert.True(t, meta.Public)
	assert.Equal(t, api.SchemaVersion, meta.SchemaVersion)
	assert.Equal(t, 4, meta.Entries)
	assert.Equal(t, 2024, meta.CreatedAt.Year())

	f, err := r.Failures()
	require.NoError(t, err)
	assert.Equal(t, []string{"/private/"}, f.Unreadable)
	assert.Equal(t, []string{"/orphan"}, f.Underived)
	assert.Equal(t, []entry.LinkFailure{{Path: "/link", Target: "/missing"}}, f.Links)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
}

func TestSQLiteWriter_HighBitInode(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scan.db")
	w, err := NewSQLiteWriter(dbPath, false)
	require.NoError(t, err)
	rows := []entry.Entry{{Index: 0, Parent: -1, Inode: 1<<63 + 5, Device: 1 << 63}}
	require.NoError(t, w.WriteTable(table.Build(rows, false)))
	require.NoError(t, w.Close())

	r, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1<<63+5), uint64(got[0]["inode"].(int64)))
	assert.Equal(t, uint64(1<<63), uint64(got[0]["device"].(int64)))
}

func TestSQLiteWriter_AbortRemovesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scan.db")
	w, err := NewSQLiteWriter(dbPath, true)
	require.NoError(t, err)
	w.batchSize = 1
	require.NoError(t, w.WriteTable(table.Build(sampleRows(), true)))

	require.NoError(t, w.Abort())
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}
