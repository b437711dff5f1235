package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treescan.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing optional file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"), false)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing required file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"), true)
		require.Error(t, err)
	})

	t.Run("file overrides only what it sets", func(t *testing.T) {
		path := writeConfig(t, `
user_type      = "acme"
public         = true
output_dir     = "/data"
progress_every = 100
desktop_rule   = "literal"
`)
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, "acme", cfg.UserType)
		assert.True(t, cfg.Public)
		assert.False(t, cfg.CSV)
		assert.Equal(t, "/data", cfg.OutputDir)
		assert.Equal(t, 100, cfg.ProgressEvery)
		assert.Equal(t, "literal", cfg.DesktopRule)
		assert.Equal(t, PlatformRoot(), cfg.Root)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("invalid values", func(t *testing.T) {
		for _, body := range []string{
			`user_type = "wizard"`,
			`log_level = "loud"`,
			`desktop_rule = "sideways"`,
			`public = "maybe"`,
			`unknown_key = 1`,
		} {
			_, err := Load(writeConfig(t, body), true)
			assert.Error(t, err, body)
		}
	})
}

func TestNormalizeUserType(t *testing.T) {
	cases := map[string]string{
		"0":      "multi",
		"1":      "stem",
		"2":      "arts",
		"3":      "other",
		"acme":   "stem",
		"STEM":   "stem",
		" arts ": "arts",
		"other":  "other",
	}
	for in, want := range cases {
		got, err := NormalizeUserType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "4", "science"} {
		_, err := NormalizeUserType(bad)
		assert.Error(t, err, bad)
	}
}

func TestPlatform(t *testing.T) {
	if runtime.GOOS == "windows" {
		assert.Equal(t, "win32", Platform())
		assert.Equal(t, "C:/", PlatformRoot())
		return
	}
	assert.Equal(t, runtime.GOOS, Platform())
	assert.Equal(t, "/", PlatformRoot())
}
