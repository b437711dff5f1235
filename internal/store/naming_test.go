package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextName(t *testing.T) {
	dir := t.TempDir()
	next := func(public bool) string {
		t.Helper()
		name, err := NextName(dir, "linux", "stem", public)
		require.NoError(t, err)
		return name
	}

	first := next(false)
	assert.Equal(t, filepath.Join(dir, "linux_stem_filesystem0"), first)

	require.NoError(t, os.WriteFile(first+ExtDatabase, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "linux_stem_filesystem1"), next(false))

	// Public and private tables are numbered independently.
	assert.Equal(t, filepath.Join(dir, "linux_stem_filesystem0_public"), next(true))

	// A stray CSV does not claim a name.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "linux_stem_filesystem1.csv"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "linux_stem_filesystem1"), next(false))
}

func TestNextName_UncheckableDir(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0o644))

	_, err := NextName(notADir, "linux", "stem", false)
	require.Error(t, err)
}
