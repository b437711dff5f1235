// Package collect walks a file-system tree once and produces the raw entry rows
// of a scan: one row per successfully stat'ed entry, indexed in first-seen
// order, with parent pointers and resolved symbolic-link targets.
package collect

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/entry"
	"github.com/agentic-research/treescan/internal/logging"
	"github.com/agentic-research/treescan/internal/pathindex"
)

// DefaultProgressEvery is the number of entries between progress lines.
const DefaultProgressEvery = 50000

// Options configures a Collector.
type Options struct {
	// Hidden decides the Hidden column. Defaults to DefaultHidden().
	Hidden HiddenFunc
	// ProgressEvery is the progress interval in entries. Zero means
	// DefaultProgressEvery; negative disables progress output.
	ProgressEvery int
	// Logger receives progress and per-entry failures. May be nil.
	Logger *logging.Logger
}

// Result is the output of a scan.
type Result struct {
	Index    *pathindex.Index
	Entries  []entry.Entry
	Failures entry.Failures
}

// Collector performs a single scan.
type Collector struct {
	fs     FS
	hidden HiddenFunc
	every  int
	log    *logging.Logger

	index    *pathindex.Index
	raw      []rawEntry
	failures entry.Failures
}

// rawEntry is a stat'ed path awaiting derivation.
type rawEntry struct {
	path string
	snap entry.Snapshot
}

// New creates a collector reading from fsys.
func New(fsys FS, opts Options) *Collector {
	c := &Collector{
		fs:     fsys,
		hidden: opts.Hidden,
		every:  opts.ProgressEvery,
		log:    opts.Logger,
	}
	if c.hidden == nil {
		c.hidden = DefaultHidden()
	}
	if c.every == 0 {
		c.every = DefaultProgressEvery
	}
	return c
}

// Collect walks the tree under root. Only a failure to stat the root itself is
// returned as an error; every other failure is recorded in Result.Failures.
func (c *Collector) Collect(root string) (*Result, error) {
	c.index = pathindex.New()
	c.raw = nil
	c.failures = entry.Failures{}

	// 1. Seed with the root
	rootPath := DirPath(filepath.ToSlash(filepath.Clean(root)))
	info, err := c.fs.Lstat(fsPath(rootPath))
	if err != nil {
		return nil, fmt.Errorf("unable to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	c.index.Register(rootPath)
	c.raw = append(c.raw, rawEntry{path: rootPath, snap: snapshot(info)})

	// 2. Walk
	c.walk(rootPath)

	// 3. Derive rows
	entries := make([]entry.Entry, 0, len(c.raw))
	for _, r := range c.raw {
		e, err := c.derive(r)
		if err != nil {
			c.log.Debugf("unable to derive %s: %v", r.path, err)
			c.failures.Underived = append(c.failures.Underived, r.path)
			continue
		}
		entries = append(entries, e)
		if c.every > 0 && len(entries)%c.every == 0 {
			c.log.Infof("derived %s rows", humanize.Comma(int64(len(entries))))
		}
	}

	return &Result{
		Index:    c.index,
		Entries:  entries,
		Failures: c.failures,
	}, nil
}

// walk registers the children of dir, directories first, then descends into
// each child directory. A directory's children are all registered before any
// grandchild, and always after the directory itself.
func (c *Collector) walk(dir string) {
	names, err := c.fs.ReadDirNames(fsPath(dir))
	if err != nil {
		// The directory itself has a row; only its contents are missing.
		c.log.Debugf("unable to list %s: %v", dir, err)
		return
	}

	// 1. Lstat every child on its own
	var dirs, files []rawEntry
	for _, name := range names {
		p := dir + name
		snap, ok := c.lstat(p)
		if !ok {
			continue
		}
		if snap.IsDirectory() {
			dirs = append(dirs, rawEntry{path: DirPath(p), snap: snap})
		} else {
			files = append(files, rawEntry{path: p, snap: snap})
		}
	}

	// 2. Register, directories first
	for _, r := range dirs {
		c.register(r)
	}
	for _, r := range files {
		c.register(r)
	}

	for _, r := range dirs {
		c.walk(r.path)
	}
}

// lstat captures a snapshot of p without following links. Failures are
// recorded and the entry is skipped.
func (c *Collector) lstat(p string) (entry.Snapshot, bool) {
	info, err := c.fs.Lstat(fsPath(p))
	if err != nil {
		c.log.Debugf("unable to stat %s: %v", p, err)
		c.failures.Unreadable = append(c.failures.Unreadable, p)
		return entry.Snapshot{}, false
	}
	return snapshot(info), true
}

// register indexes a stat'ed entry once.
func (c *Collector) register(r rawEntry) {
	if _, seen := c.index.Get(r.path); seen {
		return
	}
	c.index.Register(r.path)
	c.raw = append(c.raw, r)
	if c.every > 0 && c.index.Len()%c.every == 0 {
		c.log.Infof("indexed %s entries", humanize.Comma(int64(c.index.Len())))
	}
}

// derive builds the row for a stat'ed path.
func (c *Collector) derive(r rawEntry) (entry.Entry, error) {
	id, ok := c.index.Get(r.path)
	if !ok {
		return entry.Entry{}, errors.New("path not indexed")
	}

	parent := api.NoParent
	if id != 0 {
		parentPath := entry.ParentPath(r.path)
		pid, ok := c.index.Get(parentPath)
		if !ok {
			return entry.Entry{}, fmt.Errorf("parent %q not indexed", parentPath)
		}
		if pid >= id {
			return entry.Entry{}, fmt.Errorf("parent index %d not before %d", pid, id)
		}
		parent = pid
	}

	e := entry.New(id, parent, r.path, r.snap)
	e.Hidden = c.hidden(entry.Name(r.path), r.snap.Attributes)
	if r.snap.IsSymbolicLink() {
		target, failure := ResolveLink(c.fs, c.index, r.path)
		if failure != nil {
			c.log.Debugf("unresolved link %s -> %q", failure.Path, failure.Target)
			c.failures.Links = append(c.failures.Links, *failure)
		}
		e.LinkTarget = target
	}
	return e, nil
}

// DirPath returns p with exactly one trailing separator.
func DirPath(p string) string {
	if strings.HasSuffix(p, pathindex.Separator) {
		return p
	}
	return p + pathindex.Separator
}

// fsPath converts an indexed slash path into a path for the filesystem.
func fsPath(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ":/") {
		p = strings.TrimSuffix(p, "/")
	}
	return filepath.FromSlash(p)
}
