//go:build !windows

package collect

// DefaultHidden returns the platform's hidden-file rule.
func DefaultHidden() HiddenFunc {
	return DotPrefixHidden
}
