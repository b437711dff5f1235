package entry

import "os"

// Mode is a raw POSIX-style file mode: type bits, sticky bit and permission
// bits as found in st_mode.
type Mode uint32

const (
	// ModePermissionsMask isolates the portable permission bits.
	ModePermissionsMask = Mode(0777)

	ModePermissionUserRead      = Mode(0400)
	ModePermissionUserWrite     = Mode(0200)
	ModePermissionUserExecute   = Mode(0100)
	ModePermissionGroupRead     = Mode(0040)
	ModePermissionGroupWrite    = Mode(0020)
	ModePermissionGroupExecute  = Mode(0010)
	ModePermissionOthersRead    = Mode(0004)
	ModePermissionOthersWrite   = Mode(0002)
	ModePermissionOthersExecute = Mode(0001)
)

// ModeFromFileMode converts an os.FileMode into raw mode bits. It is used when
// a filesystem doesn't expose the platform stat structure.
func ModeFromFileMode(m os.FileMode) Mode {
	raw := Mode(m.Perm())
	if m&os.ModeSticky != 0 {
		raw |= ModeSticky
	}
	switch {
	case m&os.ModeSymlink != 0:
		raw |= ModeTypeSymbolicLink
	case m.IsDir():
		raw |= ModeTypeDirectory
	case m.IsRegular():
		raw |= ModeTypeFile
	}
	return raw
}
