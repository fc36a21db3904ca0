package pattern

import "github.com/kqcore/korender/internal/tstamp"

// TotalLength sums the lengths of the Patterns a TrackList references, in
// order, by looking each entry up by PatternIndex. Entries whose
// PatternIndex has no matching Pattern contribute nothing, mirroring the
// teacher's chain/phrase tick-summation walk that skips empty (-1) slots
// rather than failing the whole sum.
func (tl *TrackList) TotalLength(patterns map[int]*Pattern) tstamp.Tstamp {
	total := tstamp.Zero
	for _, e := range tl.Entries {
		p, ok := patterns[e.PatternIndex]
		if !ok {
			continue
		}
		total = tstamp.Add(total, p.Length)
	}
	return total
}

// TriggerCount reports how many triggers column col of pat holds, summed
// across all of tl's instances of that pattern. Useful for a quick density
// estimate of an order list without re-walking every Cgiter.
func (tl *TrackList) TriggerCount(patterns map[int]*Pattern, col int) int {
	total := 0
	for _, e := range tl.Entries {
		p, ok := patterns[e.PatternIndex]
		if !ok || col < 0 || col >= ChannelsMax {
			continue
		}
		total += p.Columns[col].Len()
	}
	return total
}
