package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/entry"
	"github.com/agentic-research/treescan/internal/table"
)

const (
	entriesTable     = "entries"
	failuresTable    = "failures"
	failedLinksTable = "failed_links"
	metaTable        = "meta"

	// Failure kinds stored in the failures table.
	KindUnreadable = "unreadable"
	KindUnderived  = "underived"
)

// SQLiteWriter persists a scan into a fresh SQLite database.
type SQLiteWriter struct {
	path      string
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	batchSize int
	count     int
	public    bool
}

// NewSQLiteWriter creates the database at dbPath and its schema. The path
// column is created only for public tables.
func NewSQLiteWriter(dbPath string, public bool) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL(public)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		path:      dbPath,
		db:        db,
		batchSize: 10000,
		public:    public,
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func schemaSQL(public bool) string {
	var cols []string
	for _, c := range api.ColumnsFor(public) {
		def := fmt.Sprintf("%s %s NOT NULL", c.Name, c.Kind)
		if c.Name == "idx" {
			def = "idx INTEGER PRIMARY KEY"
		}
		cols = append(cols, def)
	}
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		%s
	);
	CREATE TABLE IF NOT EXISTS %s (
		path TEXT NOT NULL,
		kind TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS %s (
		path TEXT NOT NULL,
		target TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`, entriesTable, strings.Join(cols, ",\n\t\t"), failuresTable, failedLinksTable, metaTable)
}

func insertSQL(public bool) string {
	cols := api.ColumnsFor(public)
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		entriesTable, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	w.stmt, err = w.tx.Prepare(insertSQL(w.public))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) commitTx() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
		w.stmt = nil
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WriteTable inserts every record of t, committing every batchSize rows.
func (w *SQLiteWriter) WriteTable(t *table.Table) error {
	if t.Public != w.public {
		return errors.New("table visibility does not match database schema")
	}
	for i := 0; i < t.Len(); i++ {
		if _, err := w.stmt.Exec(t.Values(i)...); err != nil {
			return fmt.Errorf("insert row %d: %w", t.Records[i].Index, err)
		}
		w.count++
		if w.count >= w.batchSize {
			if err := w.commitTx(); err != nil {
				return err
			}
			if err := w.beginTx(); err != nil {
				return err
			}
			w.count = 0
		}
	}
	return nil
}

// WriteFailures stores the failure side lists.
func (w *SQLiteWriter) WriteFailures(f entry.Failures) error {
	insert := fmt.Sprintf("INSERT INTO %s (path, kind) VALUES (?, ?)", failuresTable)
	for _, p := range f.Unreadable {
		if _, err := w.tx.Exec(insert, p, KindUnreadable); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	for _, p := range f.Underived {
		if _, err := w.tx.Exec(insert, p, KindUnderived); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	insertLink := fmt.Sprintf("INSERT INTO %s (path, target) VALUES (?, ?)", failedLinksTable)
	for _, l := range f.Links {
		if _, err := w.tx.Exec(insertLink, l.Path, l.Target); err != nil {
			return fmt.Errorf("insert failed link: %w", err)
		}
	}
	return nil
}

// WriteMeta stores the scan metadata.
func (w *SQLiteWriter) WriteMeta(m Meta) error {
	return writeMeta(w.tx, m.pairs())
}

// Close commits outstanding rows and closes the database.
func (w *SQLiteWriter) Close() error {
	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}

// Abort discards the database. Use it instead of Close after a failed write so
// no partial table is left behind.
func (w *SQLiteWriter) Abort() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
		w.stmt = nil
	}
	_ = w.tx.Rollback()
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", w.path, err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func writeMeta(db execer, pairs map[string]string) error {
	upsert := fmt.Sprintf("INSERT OR REPLACE INTO %s (key, value) VALUES (?, ?)", metaTable)
	for k, v := range pairs {
		if _, err := db.Exec(upsert, k, v); err != nil {
			return fmt.Errorf("write meta %s: %w", k, err)
		}
	}
	return nil
}
