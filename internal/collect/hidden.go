package collect

import "strings"

// HiddenFunc decides whether an entry is hidden from its own name and its
// platform attribute word.
type HiddenFunc func(name string, attributes uint32) bool

// DotPrefixHidden is the POSIX convention: dot-prefixed names are hidden.
func DotPrefixHidden(name string, _ uint32) bool {
	return strings.HasPrefix(name, ".")
}

// AttributeHidden returns a predicate that checks for mask in the attribute
// word, as Windows does with FILE_ATTRIBUTE_HIDDEN.
func AttributeHidden(mask uint32) HiddenFunc {
	return func(_ string, attributes uint32) bool {
		return attributes&mask != 0
	}
}
