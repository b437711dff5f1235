package entry

// LinkFailure records a symbolic link whose target could not be resolved to an
// indexed path.
type LinkFailure struct {
	Path string
	// Target is the resolved target text, or "" if the link could not be read.
	Target string
}

// Failures accumulates the non-fatal per-entry errors of a scan.
type Failures struct {
	// Unreadable holds paths whose lstat failed.
	Unreadable []string
	// Underived holds paths that were stat'ed but whose row could not be built.
	Underived []string
	// Links holds unresolved symbolic links.
	Links []LinkFailure
}

// Count returns the total number of recorded failures.
func (f Failures) Count() int {
	return len(f.Unreadable) + len(f.Underived) + len(f.Links)
}
