// Package config holds scan settings: built-in defaults, an optional HCL file,
// and the user-type vocabulary.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/treescan/internal/annotate"
	"github.com/agentic-research/treescan/internal/collect"
	"github.com/agentic-research/treescan/internal/logging"
)

const (
	configDirName  = "treescan"
	configFileName = "treescan.hcl"
)

// Config is the resolved scan configuration.
type Config struct {
	Root          string
	UserType      string
	Public        bool
	CSV           bool
	OutputDir     string
	LogLevel      string
	ProgressEvery int
	DesktopRule   string
}

// fileConfig mirrors Config for decoding; nil fields were not set in the file.
type fileConfig struct {
	Root          *string `hcl:"root,optional"`
	UserType      *string `hcl:"user_type,optional"`
	Public        *bool   `hcl:"public,optional"`
	CSV           *bool   `hcl:"csv,optional"`
	OutputDir     *string `hcl:"output_dir,optional"`
	LogLevel      *string `hcl:"log_level,optional"`
	ProgressEvery *int    `hcl:"progress_every,optional"`
	DesktopRule   *string `hcl:"desktop_rule,optional"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:          PlatformRoot(),
		OutputDir:     ".",
		LogLevel:      logging.LevelInfo.String(),
		ProgressEvery: collect.DefaultProgressEvery,
		DesktopRule:   string(annotate.RuleAncestors),
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to locate config directory: %w", err)
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads path over the defaults. A missing file is not an error unless
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("unable to read config %s: %w", path, err)
	}

	var stored fileConfig
	if err := hclsimple.DecodeFile(path, nil, &stored); err != nil {
		return cfg, fmt.Errorf("unable to parse config %s: %w", path, err)
	}
	cfg = merge(cfg, stored)
	return cfg, cfg.Validate()
}

func merge(base Config, stored fileConfig) Config {
	merged := base
	if stored.Root != nil {
		merged.Root = *stored.Root
	}
	if stored.UserType != nil {
		merged.UserType = *stored.UserType
	}
	if stored.Public != nil {
		merged.Public = *stored.Public
	}
	if stored.CSV != nil {
		merged.CSV = *stored.CSV
	}
	if stored.OutputDir != nil {
		merged.OutputDir = *stored.OutputDir
	}
	if stored.LogLevel != nil {
		merged.LogLevel = *stored.LogLevel
	}
	if stored.ProgressEvery != nil {
		merged.ProgressEvery = *stored.ProgressEvery
	}
	if stored.DesktopRule != nil {
		merged.DesktopRule = *stored.DesktopRule
	}
	return merged
}

// Validate checks the enumerated settings. An empty user type is allowed; the
// caller prompts for it.
func (c Config) Validate() error {
	if c.UserType != "" {
		if _, err := NormalizeUserType(c.UserType); err != nil {
			return err
		}
	}
	if _, ok := logging.NameToLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if _, err := annotate.ParseDesktopRule(c.DesktopRule); err != nil {
		return err
	}
	return nil
}

// userTypes maps every accepted spelling to its canonical name.
var userTypes = map[string]string{
	"0":     "multi",
	"1":     "stem",
	"2":     "arts",
	"3":     "other",
	"multi": "multi",
	"stem":  "stem",
	"acme":  "stem",
	"arts":  "arts",
	"other": "other",
}

// UserTypePrompt lists the numbered user types.
const UserTypePrompt = `Please input the user type:
    0: Multiple Users
    1: STEM Major/Professional
    2: Arts Major/Professional
    3: Personal Computer or Other
`

// NormalizeUserType returns the canonical user type for a name or number.
func NormalizeUserType(s string) (string, error) {
	if t, ok := userTypes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("invalid user type %q: want multi, stem, arts, other or 0-3", s)
}

// PlatformRoot is the conventional scan root.
func PlatformRoot() string {
	if runtime.GOOS == "windows" {
		return "C:/"
	}
	return "/"
}

// Platform names the running platform for output files. Windows keeps the
// "win32" name that earlier datasets were filed under.
func Platform() string {
	if runtime.GOOS == "windows" {
		return "win32"
	}
	return runtime.GOOS
}
