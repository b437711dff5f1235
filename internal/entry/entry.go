// Package entry defines the per-entry data model shared by the collector, the
// annotator, the table builder and the store.
package entry

import (
	"strings"

	"github.com/agentic-research/treescan/api"
)

// DesktopName is the folder name tracked by the desktop flags.
const DesktopName = "Desktop"

// Snapshot is the raw lstat data captured for one entry.
type Snapshot struct {
	Mode       Mode
	Inode      uint64
	Device     uint64
	UID        uint32
	GID        uint32
	Size       int64
	AccessTime int64 // nanoseconds since the epoch
	ModifyTime int64
	ChangeTime int64
	// Attributes is the platform attribute word (FILE_ATTRIBUTE_* on Windows,
	// 0 elsewhere).
	Attributes uint32
}

// IsSymbolicLink reports whether the snapshot describes a symbolic link.
func (s Snapshot) IsSymbolicLink() bool {
	return s.Mode&ModeTypeMask == ModeTypeSymbolicLink
}

// IsDirectory reports whether the snapshot describes a directory.
func (s Snapshot) IsDirectory() bool {
	return s.Mode&ModeTypeMask == ModeTypeDirectory
}

// Entry is one row of the output table.
type Entry struct {
	Index  int64
	Parent int64
	Inode  uint64
	Device uint64
	UID    uint32
	GID    uint32
	Size   int64

	Hidden    bool
	SubHidden bool

	AccessTime int64
	ModifyTime int64
	ChangeTime int64

	Sticky        bool
	UserRead      bool
	UserWrite     bool
	UserExecute   bool
	GroupRead     bool
	GroupWrite    bool
	GroupExecute  bool
	OtherRead     bool
	OtherWrite    bool
	OtherExecute  bool
	IsDirectory   bool
	IsRegularFile bool

	LinkTarget int64

	Desktop          bool
	SubDesktop       bool
	SubDesktopParent bool

	// Path is the slash-separated literal path; directories end in "/".
	Path string
}

// New builds an entry from a snapshot. Hierarchy flags are left false for the
// annotator and LinkTarget is NotALink.
func New(index, parent int64, path string, s Snapshot) Entry {
	e := Entry{
		Index:      index,
		Parent:     parent,
		Path:       path,
		Inode:      s.Inode,
		Device:     s.Device,
		UID:        s.UID,
		GID:        s.GID,
		Size:       s.Size,
		AccessTime: s.AccessTime,
		ModifyTime: s.ModifyTime,
		ChangeTime: s.ChangeTime,
		LinkTarget: api.NotALink,
	}
	e.ApplyMode(s.Mode)
	return e
}

// ApplyMode sets the permission and type booleans from a raw mode.
func (e *Entry) ApplyMode(m Mode) {
	e.Sticky = m&ModeSticky != 0
	e.UserRead = m&ModePermissionUserRead != 0
	e.UserWrite = m&ModePermissionUserWrite != 0
	e.UserExecute = m&ModePermissionUserExecute != 0
	e.GroupRead = m&ModePermissionGroupRead != 0
	e.GroupWrite = m&ModePermissionGroupWrite != 0
	e.GroupExecute = m&ModePermissionGroupExecute != 0
	e.OtherRead = m&ModePermissionOthersRead != 0
	e.OtherWrite = m&ModePermissionOthersWrite != 0
	e.OtherExecute = m&ModePermissionOthersExecute != 0
	e.IsDirectory = m&ModeTypeMask == ModeTypeDirectory
	e.IsRegularFile = m&ModeTypeMask == ModeTypeFile
}

// Segments splits a slash path into its non-empty components.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Name returns the final component of a slash path, ignoring a trailing
// separator. The root has an empty name.
func Name(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// ParentPath returns the containing directory of a slash path, with a trailing
// separator. It returns "" for a root.
func ParentPath(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 || trimmed == "" {
		return ""
	}
	return trimmed[:i+1]
}
