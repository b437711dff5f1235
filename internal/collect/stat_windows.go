package collect

import (
	"os"
	"syscall"

	"github.com/agentic-research/treescan/internal/entry"
)

// snapshot extracts what Windows exposes through Win32FileAttributeData. There
// is no inode, device or ownership; the change time is the creation time.
func snapshot(info os.FileInfo) entry.Snapshot {
	s := snapshotFromFileInfo(info)
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return s
	}
	s.Attributes = data.FileAttributes
	s.AccessTime = data.LastAccessTime.Nanoseconds()
	s.ModifyTime = data.LastWriteTime.Nanoseconds()
	s.ChangeTime = data.CreationTime.Nanoseconds()
	return s
}
