// Package pathindex maps file-system paths to dense integer identifiers.
package pathindex

import "strings"

// Separator is the separator used in indexed paths. Directory paths carry it as
// a trailing suffix.
const Separator = "/"

// Index is a bidirectional path <-> index mapping built incrementally during a
// walk. Indices are assigned sequentially from 0 in first-registration order.
type Index struct {
	ids   map[string]int64 // path -> index
	paths []string         // index -> path
}

// New returns an empty index.
func New() *Index {
	return &Index{ids: make(map[string]int64)}
}

// Register returns the index for path, assigning the next one if the path has
// not been seen before.
func (x *Index) Register(path string) int64 {
	if id, ok := x.ids[path]; ok {
		return id
	}
	id := int64(len(x.paths))
	x.ids[path] = id
	x.paths = append(x.paths, path)
	return id
}

// Get returns the index registered for exactly path.
func (x *Index) Get(path string) (int64, bool) {
	id, ok := x.ids[path]
	return id, ok
}

// Lookup resolves path allowing for the directory convention: "a/b" finds a
// directory registered as "a/b/", and "a/b/" finds an entry registered as
// "a/b". The directory form wins when both exist.
func (x *Index) Lookup(path string) (int64, bool) {
	if strings.HasSuffix(path, Separator) {
		if id, ok := x.ids[path]; ok {
			return id, true
		}
		trimmed := strings.TrimSuffix(path, Separator)
		if trimmed == "" {
			return -1, false
		}
		id, ok := x.ids[trimmed]
		return id, ok
	}
	if id, ok := x.ids[path+Separator]; ok {
		return id, true
	}
	id, ok := x.ids[path]
	return id, ok
}

// Path returns the path registered for id.
func (x *Index) Path(id int64) (string, bool) {
	if id < 0 || id >= int64(len(x.paths)) {
		return "", false
	}
	return x.paths[id], true
}

// Len returns the number of registered paths.
func (x *Index) Len() int {
	return len(x.paths)
}
