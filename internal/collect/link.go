package collect

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/entry"
	"github.com/agentic-research/treescan/internal/pathindex"
)

// ResolveLink resolves the symbolic link at linkPath to an index. Relative link
// text is taken relative to the link's parent directory; both forms are
// normalized before lookup. It returns api.UnresolvedLink and a failure record
// if the link can't be read or its target isn't indexed. The result depends
// only on the link text and the index, so repeated calls agree.
func ResolveLink(fsys FS, index *pathindex.Index, linkPath string) (int64, *entry.LinkFailure) {
	raw, err := fsys.Readlink(fsPath(linkPath))
	if err != nil {
		return api.UnresolvedLink, &entry.LinkFailure{Path: linkPath}
	}

	resolved := normalizeTarget(entry.ParentPath(linkPath), raw)
	if id, ok := index.Lookup(resolved); ok {
		return id, nil
	}
	return api.UnresolvedLink, &entry.LinkFailure{Path: linkPath, Target: resolved}
}

// normalizeTarget turns raw link text into a clean absolute slash path.
func normalizeTarget(parentDir, raw string) string {
	target := filepath.ToSlash(raw)
	volume := filepath.VolumeName(raw)

	switch {
	case volume != "":
		// Drive-qualified: keep the volume out of path.Clean's way.
		return volume + path.Clean("/"+strings.TrimPrefix(target, filepath.ToSlash(volume)))
	case strings.HasPrefix(target, "/"):
		// Rooted without a volume takes the link's own volume on Windows.
		return linkVolume(parentDir) + path.Clean(target)
	default:
		lv := linkVolume(parentDir)
		return lv + path.Clean("/"+strings.TrimPrefix(parentDir, lv)+target)
	}
}

// linkVolume returns the "C:" style prefix of a slash path, or "".
func linkVolume(p string) string {
	if i := strings.Index(p, ":/"); i > 0 && !strings.Contains(p[:i], "/") {
		return p[:i+1]
	}
	return ""
}
