package collect

import (
	"os"
	"syscall"

	"github.com/agentic-research/treescan/internal/entry"
)

// snapshot extracts raw stat data from the Stat_t behind info. Darwin names
// its timespec fields differently from Linux.
func snapshot(info os.FileInfo) entry.Snapshot {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return snapshotFromFileInfo(info)
	}
	return entry.Snapshot{
		Mode:       entry.Mode(stat.Mode),
		Inode:      stat.Ino,
		Device:     uint64(stat.Dev),
		UID:        stat.Uid,
		GID:        stat.Gid,
		Size:       stat.Size,
		AccessTime: stat.Atimespec.Nano(),
		ModifyTime: stat.Mtimespec.Nano(),
		ChangeTime: stat.Ctimespec.Nano(),
	}
}
