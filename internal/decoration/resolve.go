package decoration

import "sort"

// Resolve turns candidates into a Set for a document of length docLen.
//
// Candidates are stably sorted by (From, To), so among exact duplicates the
// one produced first wins. A single scan then drops every candidate that is
// out of bounds, inverted, overlaps an already accepted one, or repeats the
// previous zero-width candidate. The input slice is not modified.
func Resolve(cands []Candidate, docLen int) *Set {
	if len(cands) == 0 {
		return Empty
	}
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	out := make([]Candidate, 0, len(sorted))
	lastTo := 0
	for _, c := range sorted {
		if c.From < 0 || c.To > docLen || c.From > c.To || c.From < lastTo {
			continue
		}
		if c.From == c.To && len(out) > 0 {
			prev := out[len(out)-1]
			if prev.From == c.From && prev.To == c.To {
				continue
			}
		}
		out = append(out, c)
		lastTo = c.To
	}
	return &Set{items: out}
}
