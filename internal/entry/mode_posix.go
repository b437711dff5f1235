//go:build !windows

package entry

import "golang.org/x/sys/unix"

const (
	// ModeTypeMask isolates type information.
	ModeTypeMask = Mode(unix.S_IFMT)
	// ModeTypeDirectory represents a directory.
	ModeTypeDirectory = Mode(unix.S_IFDIR)
	// ModeTypeFile represents a regular file.
	ModeTypeFile = Mode(unix.S_IFREG)
	// ModeTypeSymbolicLink represents a symbolic link.
	ModeTypeSymbolicLink = Mode(unix.S_IFLNK)
	// ModeSticky is the sticky bit.
	ModeSticky = Mode(unix.S_ISVTX)
)
