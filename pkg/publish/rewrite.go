package publish

import (
	"sort"
	"strings"
)

// replacement swaps src[start:end] for text.
type replacement struct {
	start, end int
	text       string
}

// applyReplacements rewrites src in a single pass. Offsets always refer to
// the original text; a replacement overlapping an earlier one is dropped.
func applyReplacements(src string, reps []replacement) string {
	if len(reps) == 0 {
		return src
	}
	sorted := append([]replacement(nil), reps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var b strings.Builder
	b.Grow(len(src))
	cursor := 0
	for _, r := range sorted {
		if r.start < cursor {
			continue
		}
		b.WriteString(src[cursor:r.start])
		b.WriteString(r.text)
		cursor = r.end
	}
	b.WriteString(src[cursor:])
	return b.String()
}
