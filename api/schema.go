package api

// SchemaVersion is the version of the entries table layout.
// Version 1 tables predate the Desktop columns and the recomputed Sub-Hidden.
const SchemaVersion = 2

// Sentinel values for the Is Link To column.
const (
	NotALink       int64 = -1
	UnresolvedLink int64 = -2
	NoParent       int64 = -1
)

// Column describes one column of the output table.
type Column struct {
	// Label is the human-readable column name used in CSV headers.
	Label string `json:"label"`
	// Name is the SQL column name.
	Name string `json:"name"`
	// Kind is the SQL storage type.
	Kind string `json:"kind"`
}

const (
	KindInteger = "INTEGER"
	KindBool    = "BOOLEAN"
	KindText    = "TEXT"
)

// Columns is the fixed, order-stable schema of the entries table.
// Index is the key; the remaining 27 columns follow it.
var Columns = []Column{
	{Label: "Index", Name: "idx", Kind: KindInteger},
	{Label: "Parent", Name: "parent", Kind: KindInteger},
	{Label: "Inode", Name: "inode", Kind: KindInteger},
	{Label: "Device", Name: "device", Kind: KindInteger},
	{Label: "User ID", Name: "uid", Kind: KindInteger},
	{Label: "Group ID", Name: "gid", Kind: KindInteger},
	{Label: "Size", Name: "size", Kind: KindInteger},
	{Label: "Hidden", Name: "hidden", Kind: KindBool},
	{Label: "Sub-Hidden", Name: "sub_hidden", Kind: KindBool},
	{Label: "Access Time", Name: "access_time", Kind: KindInteger},
	{Label: "Modify Time", Name: "modify_time", Kind: KindInteger},
	{Label: "Metachange Time", Name: "metachange_time", Kind: KindInteger},
	{Label: "Sticky", Name: "sticky", Kind: KindBool},
	{Label: "User Read", Name: "user_read", Kind: KindBool},
	{Label: "User Write", Name: "user_write", Kind: KindBool},
	{Label: "User Execute", Name: "user_execute", Kind: KindBool},
	{Label: "Group Read", Name: "group_read", Kind: KindBool},
	{Label: "Group Write", Name: "group_write", Kind: KindBool},
	{Label: "Group Execute", Name: "group_execute", Kind: KindBool},
	{Label: "Other Read", Name: "other_read", Kind: KindBool},
	{Label: "Other Write", Name: "other_write", Kind: KindBool},
	{Label: "Other Execute", Name: "other_execute", Kind: KindBool},
	{Label: "Is Directory", Name: "is_directory", Kind: KindBool},
	{Label: "Is Regular File", Name: "is_regular_file", Kind: KindBool},
	{Label: "Is Link To", Name: "link_target", Kind: KindInteger},
	{Label: "Desktop", Name: "desktop", Kind: KindBool},
	{Label: "Sub-Desktop", Name: "sub_desktop", Kind: KindBool},
	{Label: "Sub-Desktop-Parent", Name: "sub_desktop_parent", Kind: KindBool},
}

// PathColumn is appended to Columns in public mode.
var PathColumn = Column{Label: "Path", Name: "path", Kind: KindText}

// DerivedColumns are the columns recomputed by the annotator. Tables written
// before SchemaVersion 2 may lack some of them.
var DerivedColumns = []string{"sub_hidden", "desktop", "sub_desktop", "sub_desktop_parent"}

// ColumnsFor returns the schema for a table, including the path column when public.
func ColumnsFor(public bool) []Column {
	cols := make([]Column, 0, len(Columns)+1)
	cols = append(cols, Columns...)
	if public {
		cols = append(cols, PathColumn)
	}
	return cols
}

// ColumnByName looks up a column by its SQL name.
func ColumnByName(name string) (Column, bool) {
	if name == PathColumn.Name {
		return PathColumn, true
	}
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
