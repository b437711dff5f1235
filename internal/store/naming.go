package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Extensions of the files written for one scan.
const (
	ExtDatabase = ".db"
	ExtCSV      = ".csv"
)

// NextName returns the first unused base path of the form
// <dir>/<platform>_<userType>_filesystem<N>[_public]. A base is used when a
// database with that name exists. Any error other than not-exist is returned.
func NextName(dir, platform, userType string, public bool) (string, error) {
	suffix := ""
	if public {
		suffix = "_public"
	}
	for i := 0; ; i++ {
		base := filepath.Join(dir, fmt.Sprintf("%s_%s_filesystem%d%s", platform, userType, i, suffix))
		_, err := os.Lstat(base + ExtDatabase)
		switch {
		case os.IsNotExist(err):
			return base, nil
		case err != nil:
			return "", fmt.Errorf("check output name %s: %w", base, err)
		}
	}
}
