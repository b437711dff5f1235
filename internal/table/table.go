// Package table assembles annotated entries into the output table.
package table

import (
	"sort"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/entry"
)

// Table is the finished dataset of a scan: one record per surviving entry, in
// index order.
type Table struct {
	// Public tables carry the literal path column.
	Public  bool
	Records []entry.Entry
}

// Build copies rows into a table ordered by index. Paths are kept on the
// records either way; Values drops them unless the table is public.
func Build(rows []entry.Entry, public bool) *Table {
	records := make([]entry.Entry, len(rows))
	copy(records, rows)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Index < records[j].Index })
	return &Table{Public: public, Records: records}
}

// Columns returns the table's column schema.
func (t *Table) Columns() []api.Column {
	return api.ColumnsFor(t.Public)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Values returns record i in column order.
func (t *Table) Values(i int) []any {
	return Values(t.Records[i], t.Public)
}

// Values flattens an entry in api.Columns order, appending the path when public.
// Inode and Device are stored as the int64 with the same bits; SQLite integers
// are signed and some filesystems hand out inodes above 1<<63.
func Values(e entry.Entry, public bool) []any {
	v := []any{
		e.Index, e.Parent, int64(e.Inode),
		int64(e.Device), e.UID, e.GID, e.Size, e.Hidden, e.SubHidden,
		e.AccessTime, e.ModifyTime, e.ChangeTime,
		e.Sticky, e.UserRead, e.UserWrite, e.UserExecute,
		e.GroupRead, e.GroupWrite, e.GroupExecute,
		e.OtherRead, e.OtherWrite, e.OtherExecute,
		e.IsDirectory, e.IsRegularFile, e.LinkTarget,
		e.Desktop, e.SubDesktop, e.SubDesktopParent,
	}
	if public {
		v = append(v, e.Path)
	}
	return v
}

// TotalSize sums the Size column.
func (t *Table) TotalSize() uint64 {
	var total uint64
	for _, r := range t.Records {
		if r.Size > 0 {
			total += uint64(r.Size)
		}
	}
	return total
}
