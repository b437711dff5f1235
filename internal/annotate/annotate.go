// Package annotate derives the hierarchical flags of a scan: Sub-Hidden,
// Desktop, Sub-Desktop and Sub-Desktop-Parent. Every pass relies on rows being
// in parent-before-child order, which Annotate establishes and checks first.
package annotate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/treescan/internal/entry"
)

// ErrOrder is returned when rows can't be put in parent-before-child order.
var ErrOrder = errors.New("rows are not in parent-before-child order")

// DesktopRule selects how Sub-Desktop-Parent propagates.
type DesktopRule string

const (
	// RuleAncestors marks exactly the proper ancestors of Desktop folders.
	RuleAncestors DesktopRule = "ancestors"
	// RuleLiteral marks the parent of each Desktop folder and then every
	// descendant of a marked directory, as the first scraper did.
	RuleLiteral DesktopRule = "literal"
)

// ParseDesktopRule validates a rule name. The empty string selects RuleAncestors.
func ParseDesktopRule(name string) (DesktopRule, error) {
	switch DesktopRule(name) {
	case "", RuleAncestors:
		return RuleAncestors, nil
	case RuleLiteral:
		return RuleLiteral, nil
	default:
		return "", fmt.Errorf("unknown desktop rule %q", name)
	}
}

// Options configures Annotate.
type Options struct {
	// DesktopRule defaults to RuleAncestors.
	DesktopRule DesktopRule
	// SkipDesktop leaves the desktop flags untouched (used when rows carry no
	// paths).
	SkipDesktop bool
}

// Annotate orders rows by index and runs both passes in place.
func Annotate(rows []entry.Entry, opts Options) error {
	if err := SubHidden(rows); err != nil {
		return err
	}
	if opts.SkipDesktop {
		return nil
	}
	return Desktop(rows, opts.DesktopRule)
}

// SubHidden sets SubHidden = Hidden || SubHidden(parent) in one index-order scan.
func SubHidden(rows []entry.Entry) error {
	if err := order(rows); err != nil {
		return err
	}

	subHidden := roaring.New()
	for i := range rows {
		r := &rows[i]
		if r.Hidden || r.SubHidden || (r.Parent >= 0 && subHidden.Contains(uint32(r.Parent))) {
			r.SubHidden = true
			subHidden.Add(uint32(r.Index))
		}
	}
	return nil
}

// Desktop sets the three desktop flags in place.
func Desktop(rows []entry.Entry, rule DesktopRule) error {
	if err := order(rows); err != nil {
		return err
	}

	// 1. Mark Desktop folders, their contents, and their parents
	parents := roaring.New()
	for i := range rows {
		r := &rows[i]
		if r.SubDesktopParent {
			parents.Add(uint32(r.Index))
		}
		segments := entry.Segments(r.Path)
		if len(segments) == 0 {
			continue
		}
		if segments[len(segments)-1] == entry.DesktopName {
			r.Desktop = true
			r.SubDesktop = true
			if r.Parent >= 0 {
				parents.Add(uint32(r.Parent))
			}
			continue
		}
		for _, s := range segments {
			if s == entry.DesktopName {
				r.SubDesktop = true
				break
			}
		}
	}

	// 2. Propagate
	switch rule {
	case "", RuleAncestors:
		for i := len(rows) - 1; i >= 0; i-- {
			r := rows[i]
			if r.Parent >= 0 && parents.Contains(uint32(r.Index)) {
				parents.Add(uint32(r.Parent))
			}
		}
	case RuleLiteral:
		for _, r := range rows {
			if r.Parent >= 0 && parents.Contains(uint32(r.Parent)) {
				parents.Add(uint32(r.Index))
			}
		}
	default:
		return fmt.Errorf("unknown desktop rule %q", rule)
	}

	for i := range rows {
		if parents.Contains(uint32(rows[i].Index)) {
			rows[i].SubDesktopParent = true
		}
	}
	return nil
}

// order sorts rows by index and checks that every parent precedes its child.
// Rows dropped during collection leave gaps; a missing parent reads as all
// flags false.
func order(rows []entry.Entry) error {
	if !sort.SliceIsSorted(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index }) {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })
	}
	for i, r := range rows {
		if r.Index < 0 || r.Index > int64(^uint32(0)) {
			return fmt.Errorf("index %d out of range: %w", r.Index, ErrOrder)
		}
		if i > 0 && rows[i-1].Index == r.Index {
			return fmt.Errorf("duplicate index %d: %w", r.Index, ErrOrder)
		}
		if r.Parent < 0 {
			if i != 0 {
				return fmt.Errorf("row %d has no parent but is not the root: %w", r.Index, ErrOrder)
			}
			continue
		}
		if r.Parent >= r.Index {
			return fmt.Errorf("row %d has parent %d: %w", r.Index, r.Parent, ErrOrder)
		}
	}
	return nil
}
