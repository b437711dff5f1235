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
)

// Reader reads a stored table back.
type Reader struct {
	db *sql.DB
}

// Open opens an existing database for reading.
func Open(dbPath string) (*Reader, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	return &Reader{db: db}, nil
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Columns returns the entries columns present in the database, in schema order
// for known columns followed by any unknown ones.
func (r *Reader) Columns() ([]api.Column, error) {
	names, err := tableColumns(r.db, entriesTable)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var cols []api.Column
	for _, c := range api.ColumnsFor(true) {
		if present[c.Name] {
			cols = append(cols, c)
			delete(present, c.Name)
		}
	}
	for _, n := range names {
		if present[n] {
			cols = append(cols, api.Column{Label: n, Name: n, Kind: api.KindText})
		}
	}
	return cols, nil
}

// Each calls fn for every row in index order with values keyed by column
// name. Booleans come back as bool, integers as int64, text as string.
func (r *Reader) Each(fn func(row map[string]any) error) error {
	cols, err := r.Columns()
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return errors.New("entries table not found")
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	rows, err := r.db.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY idx", strings.Join(names, ", "), entriesTable))
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c.Name] = normalize(c.Kind, raw[i])
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}

// Meta returns the stored scan metadata.
func (r *Reader) Meta() (Meta, error) {
	pairs, err := readMeta(r.db)
	if err != nil {
		return Meta{}, err
	}
	return metaFromPairs(pairs), nil
}

// Failures returns the stored failure lists.
func (r *Reader) Failures() (entry.Failures, error) {
	var f entry.Failures
	if names, err := tableColumns(r.db, failuresTable); err != nil || len(names) == 0 {
		return f, err
	}
	rows, err := r.db.Query(fmt.Sprintf("SELECT path, kind FROM %s", failuresTable))
	if err != nil {
		return f, fmt.Errorf("query failures: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var path, kind string
		if err := rows.Scan(&path, &kind); err != nil {
			return f, fmt.Errorf("scan failure: %w", err)
		}
		switch kind {
		case KindUnreadable:
			f.Unreadable = append(f.Unreadable, path)
		case KindUnderived:
			f.Underived = append(f.Underived, path)
		}
	}
	if err := rows.Err(); err != nil {
		return f, fmt.Errorf("iterate failures: %w", err)
	}

	links, err := r.db.Query(fmt.Sprintf("SELECT path, target FROM %s", failedLinksTable))
	if err != nil {
		return f, fmt.Errorf("query failed links: %w", err)
	}
	defer func() { _ = links.Close() }()
	for links.Next() {
		var l entry.LinkFailure
		if err := links.Scan(&l.Path, &l.Target); err != nil {
			return f, fmt.Errorf("scan failed link: %w", err)
		}
		f.Links = append(f.Links, l)
	}
	if err := links.Err(); err != nil {
		return f, fmt.Errorf("iterate failed links: %w", err)
	}
	return f, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func tableColumns(db queryer, tableName string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var (
			cid     int
			name    string
			kind    string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &kind, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}
	return names, nil
}

func readMeta(db queryer) (map[string]string, error) {
	pairs := map[string]string{}
	names, err := tableColumns(db, metaTable)
	if err != nil || len(names) == 0 {
		// Tables from the first scraper have no metadata.
		return pairs, err
	}
	rows, err := db.Query(fmt.Sprintf("SELECT key, value FROM %s", metaTable))
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		pairs[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meta: %w", err)
	}
	return pairs, nil
}

func normalize(kind string, v any) any {
	switch kind {
	case api.KindBool:
		switch b := v.(type) {
		case bool:
			return b
		case int64:
			return b != 0
		case nil:
			return false
		}
	case api.KindInteger:
		switch n := v.(type) {
		case int64:
			return n
		case bool:
			if n {
				return int64(1)
			}
			return int64(0)
		case nil:
			return int64(0)
		}
	case api.KindText:
		switch s := v.(type) {
		case []byte:
			return string(s)
		case nil:
			return ""
		}
	}
	return v
}
