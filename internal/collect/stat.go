package collect

import (
	"os"

	"github.com/agentic-research/treescan/internal/entry"
)

// snapshotFromFileInfo builds a snapshot from the portable os.FileInfo fields.
// It is the fallback for filesystems whose Sys() value isn't the platform stat
// structure (in-memory filesystems, for example); ownership and identity
// fields stay zero and all three timestamps are the modification time.
func snapshotFromFileInfo(info os.FileInfo) entry.Snapshot {
	mtime := info.ModTime().UnixNano()
	return entry.Snapshot{
		Mode:       entry.ModeFromFileMode(info.Mode()),
		Size:       info.Size(),
		AccessTime: mtime,
		ModifyTime: mtime,
		ChangeTime: mtime,
	}
}
