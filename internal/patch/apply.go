package patch

import "strings"

// Apply returns text with patches applied. Patches must be sorted by
// descending Start and must not overlap; overlapping input is undefined.
func Apply(text string, patches []TextPatch) string {
	switch len(patches) {
	case 0:
		return text
	case 1:
		return applyOne(text, patches[0])
	default:
		return applySegments(text, patches)
	}
}

func applyOne(text string, p TextPatch) string {
	return text[:p.Start] + p.Replacement + text[p.End:]
}

// applySegments walks the patches right to left once, collecting the
// untouched suffix after each patch followed by its replacement, then joins
// the segments in reverse. Each byte is copied once.
func applySegments(text string, patches []TextPatch) string {
	segments := make([]string, 0, 2*len(patches)+1)
	size := 0
	pos := len(text)
	for _, p := range patches {
		segments = append(segments, text[p.End:pos], p.Replacement)
		size += pos - p.End + len(p.Replacement)
		pos = p.Start
	}
	segments = append(segments, text[:pos])
	size += pos

	var b strings.Builder
	b.Grow(size)
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteString(segments[i])
	}
	return b.String()
}
