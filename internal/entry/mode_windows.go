package entry

// Windows has no st_mode; these mirror the POSIX values so that modes built by
// ModeFromFileMode decode the same way everywhere.
const (
	ModeTypeMask         = Mode(0170000)
	ModeTypeDirectory    = Mode(0040000)
	ModeTypeFile         = Mode(0100000)
	ModeTypeSymbolicLink = Mode(0120000)
	ModeSticky           = Mode(0001000)
)
