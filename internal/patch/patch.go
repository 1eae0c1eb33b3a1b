// Package patch compiles fix operations into byte-range text patches and
// applies a file's patches in a single pass.
package patch

import (
	"fmt"
	"sort"
)

// TextPatch replaces the half-open byte range [Start, End) with Replacement.
// Start == End is an insertion.
type TextPatch struct {
	Start       int
	End         int
	Replacement string
}

// Len returns the number of bytes the patch removes
func (p TextPatch) Len() int {
	return p.End - p.Start
}

func (p TextPatch) String() string {
	return fmt.Sprintf("[%d,%d) -> %q", p.Start, p.End, p.Replacement)
}

// SortDescending orders patches by descending Start, the order Apply expects.
// For equal starts the wider patch comes first, so an insertion at a
// deleted range's start lands in front of the deletion.
func SortDescending(patches []TextPatch) {
	sort.SliceStable(patches, func(i, j int) bool {
		if patches[i].Start != patches[j].Start {
			return patches[i].Start > patches[j].Start
		}
		return patches[i].End > patches[j].End
	})
}

// Conflicts reports whether two patches touch overlapping bytes.
// Two insertions at the same offset conflict; an insertion at the boundary
// of a replaced range does not.
func Conflicts(a, b TextPatch) bool {
	if a.Len() == 0 && b.Len() == 0 {
		return a.Start == b.Start
	}
	if a.Len() == 0 {
		return a.Start > b.Start && a.Start < b.End
	}
	if b.Len() == 0 {
		return b.Start > a.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// Overlaps reports whether any two patches of a descending sorted set
// conflict.
func Overlaps(patches []TextPatch) bool {
	for i := 1; i < len(patches); i++ {
		if Conflicts(patches[i-1], patches[i]) {
			return true
		}
	}
	return false
}
