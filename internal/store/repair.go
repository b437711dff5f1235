package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/annotate"
	"github.com/agentic-research/treescan/internal/entry"
	"github.com/agentic-research/treescan/internal/logging"
)

// RepairOptions configures Repair.
type RepairOptions struct {
	DesktopRule annotate.DesktopRule
	Logger      *logging.Logger
}

// Repair upgrades a table written by an older version in place: missing flag
// columns are added, Sub-Hidden is recomputed, and the desktop flags are
// recomputed when the table stores paths. It reports whether the table
// changed. Tables already at the current schema version are left alone.
func Repair(dbPath string, opts RepairOptions) (bool, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return false, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	names, err := tableColumns(db, entriesTable)
	if err != nil {
		return false, err
	}
	if len(names) == 0 {
		return false, fmt.Errorf("%s has no %s table", dbPath, entriesTable)
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	pairs, err := readMeta(db)
	if err != nil {
		return false, err
	}
	version, _ := strconv.Atoi(pairs["schema_version"])
	if version >= api.SchemaVersion && hasAll(present, api.DerivedColumns) {
		opts.Logger.Debugf("%s is current", dbPath)
		return false, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 1. Add missing columns
	for _, name := range api.DerivedColumns {
		if present[name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s NOT NULL DEFAULT 0", entriesTable, name, api.KindBool)
		if _, err := tx.Exec(stmt); err != nil {
			return false, fmt.Errorf("add column %s: %w", name, err)
		}
		opts.Logger.Debugf("%s: added column %s", dbPath, name)
	}

	// 2. Recompute
	withPaths := present[api.PathColumn.Name]
	rows, err := loadHierarchy(tx, withPaths)
	if err != nil {
		return false, err
	}
	if !withPaths {
		opts.Logger.Warnf("%s stores no paths; desktop flags left unchanged", dbPath)
	}
	err = annotate.Annotate(rows, annotate.Options{DesktopRule: opts.DesktopRule, SkipDesktop: !withPaths})
	if err != nil {
		return false, fmt.Errorf("annotate %s: %w", dbPath, err)
	}

	// 3. Store
	if err := updateFlags(tx, rows, withPaths); err != nil {
		return false, err
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)", metaTable)
	if _, err := tx.Exec(create); err != nil {
		return false, fmt.Errorf("create meta: %w", err)
	}
	meta := map[string]string{
		"schema_version": strconv.Itoa(api.SchemaVersion),
		"entries":        strconv.Itoa(len(rows)),
	}
	if _, ok := pairs["public"]; !ok {
		meta["public"] = strconv.FormatBool(withPaths)
	}
	if err := writeMeta(tx, meta); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// RepairDir repairs every database directly inside dir and returns the number
// of tables changed. A table that fails is logged and skipped.
func RepairDir(dir string, opts RepairOptions) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ExtDatabase))
	if err != nil {
		return 0, fmt.Errorf("list databases: %w", err)
	}
	sort.Strings(matches)

	var repaired int
	var failed []string
	for _, m := range matches {
		changed, err := Repair(m, opts)
		if err != nil {
			opts.Logger.Warn(err)
			failed = append(failed, filepath.Base(m))
			continue
		}
		if changed {
			opts.Logger.Infof("repaired %s", m)
			repaired++
		}
	}
	if len(failed) > 0 {
		return repaired, fmt.Errorf("unable to repair %s", strings.Join(failed, ", "))
	}
	return repaired, nil
}

func hasAll(present map[string]bool, names []string) bool {
	for _, n := range names {
		if !present[n] {
			return false
		}
	}
	return true
}

// loadHierarchy reads the columns the annotator needs. Derived flags are not
// loaded so they are recomputed from scratch.
func loadHierarchy(tx *sql.Tx, withPaths bool) ([]entry.Entry, error) {
	cols := "idx, parent, hidden"
	if withPaths {
		cols += ", path"
	}
	rows, err := tx.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY idx", cols, entriesTable))
	if err != nil {
		return nil, fmt.Errorf("query hierarchy: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entry.Entry
	for rows.Next() {
		var (
			e      entry.Entry
			hidden any
			path   sql.NullString
		)
		dest := []any{&e.Index, &e.Parent, &hidden}
		if withPaths {
			dest = append(dest, &path)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan hierarchy: %w", err)
		}
		e.Hidden, _ = normalize(api.KindBool, hidden).(bool)
		e.Path = path.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hierarchy: %w", err)
	}
	return out, nil
}

func updateFlags(tx *sql.Tx, rows []entry.Entry, withDesktop bool) error {
	update := fmt.Sprintf("UPDATE %s SET sub_hidden = ? WHERE idx = ?", entriesTable)
	if withDesktop {
		update = fmt.Sprintf("UPDATE %s SET sub_hidden = ?, desktop = ?, sub_desktop = ?, sub_desktop_parent = ? WHERE idx = ?", entriesTable)
	}
	stmt, err := tx.Prepare(update)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		args := []any{r.SubHidden, r.Index}
		if withDesktop {
			args = []any{r.SubHidden, r.Desktop, r.SubDesktop, r.SubDesktopParent, r.Index}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("update row %d: %w", r.Index, err)
		}
	}
	return nil
}
