package collect

import "golang.org/x/sys/windows"

// DefaultHidden returns the platform's hidden-file rule.
func DefaultHidden() HiddenFunc {
	return AttributeHidden(windows.FILE_ATTRIBUTE_HIDDEN)
}
