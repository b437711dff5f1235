//go:build !linux && !darwin && !windows

package collect

import (
	"os"

	"github.com/agentic-research/treescan/internal/entry"
)

// snapshot falls back to the portable fields on platforms without a known
// Stat_t layout.
func snapshot(info os.FileInfo) entry.Snapshot {
	return snapshotFromFileInfo(info)
}
