// Package pattern implements Pattern/Column/Trigger storage and the Cgiter
// (column/group iterator) cooperative iterator that the Player drives one
// sub-chunk at a time (spec §3 "Pattern / Column / Trigger"; §9
// "Coroutine-like Cgiter").
package pattern

import (
	"sort"

	"github.com/kqcore/korender/internal/tstamp"
)

// ChannelsMax bounds the number of columns a Pattern may hold
// (CHANNELS_MAX in the glossary).
const ChannelsMax = 64

// Trigger is one (kind, pos, literal arg) row entry. Arg is the short
// textual/JSON-like form, parsed lazily at fire time via Streader.
type Trigger struct {
	Kind string
	Pos  tstamp.Tstamp
	Arg  []byte
}

// Column is an ordered-by-Tstamp, insertion-ordered-within-a-timestamp
// sequence of Triggers.
type Column struct {
	triggers []Trigger // kept sorted by Pos, stable on ties
}

// Add inserts t preserving Pos order and insertion order among equal Pos
// values.
func (c *Column) Add(t Trigger) {
	i := sort.Search(len(c.triggers), func(i int) bool {
		return tstamp.Cmp(c.triggers[i].Pos, t.Pos) > 0
	})
	c.triggers = append(c.triggers, Trigger{})
	copy(c.triggers[i+1:], c.triggers[i:])
	c.triggers[i] = t
}

// Len reports how many triggers the column holds.
func (c *Column) Len() int { return len(c.triggers) }

// Pattern owns up to ChannelsMax Columns and a length.
type Pattern struct {
	Columns [ChannelsMax]Column
	Length  tstamp.Tstamp
}

// New creates an empty Pattern of the given length.
func New(length tstamp.Tstamp) *Pattern {
	return &Pattern{Length: length}
}

// Cgiter walks one channel's trigger stream over musical time, driven by
// the Player one sub-chunk at a time via Peek/Move/GetTriggerRow.
type Cgiter struct {
	pat      *Pattern
	col      int
	pos      tstamp.Tstamp
	idx      int // index into pat.Columns[col].triggers of the next undelivered trigger
	atEnd    bool
}

// NewCgiter creates an iterator over column col of pat, starting at time 0.
func NewCgiter(pat *Pattern, col int) *Cgiter {
	return &Cgiter{pat: pat, col: col}
}

// Position returns the iterator's current musical-time position.
func (it *Cgiter) Position() tstamp.Tstamp { return it.pos }

// Column returns the pattern column index this iterator walks, so a caller
// that keeps one Channel per column can resolve which Channel a fired
// Trigger targets (spec §4.9 "Cgiter"; §3 "Channel").
func (it *Cgiter) Column() int { return it.col }

// AtEnd reports whether the iterator has reached the pattern's length.
func (it *Cgiter) AtEnd() bool { return tstamp.Cmp(it.pos, it.pat.Length) >= 0 }

// GetTriggerRow reports whether one or more triggers sit exactly at the
// iterator's current position, without consuming them (spec §4.9 step 1).
func (it *Cgiter) GetTriggerRow() bool {
	col := &it.pat.Columns[it.col]
	return it.idx < len(col.triggers) && tstamp.Cmp(col.triggers[it.idx].Pos, it.pos) == 0
}

// TriggersAtRow returns every trigger at the current row, in insertion
// order, without advancing the iterator.
func (it *Cgiter) TriggersAtRow() []Trigger {
	col := &it.pat.Columns[it.col]
	var row []Trigger
	for i := it.idx; i < len(col.triggers) && tstamp.Cmp(col.triggers[i].Pos, it.pos) == 0; i++ {
		row = append(row, col.triggers[i])
	}
	return row
}

// Peek returns the largest distance <= maxDist the iterator can move
// without passing the next undelivered trigger or the pattern end (spec
// §4.9 step 1, "dist = min(dist, cgiter[c].peek(dist))").
func (it *Cgiter) Peek(maxDist tstamp.Tstamp) tstamp.Tstamp {
	limit := tstamp.Sub(it.pat.Length, it.pos)
	if tstamp.Less(limit, maxDist) {
		maxDist = limit
	}
	col := &it.pat.Columns[it.col]
	// Skip past the current row (already-delivered triggers at pos) to find
	// the next future trigger.
	i := it.idx
	for i < len(col.triggers) && tstamp.Cmp(col.triggers[i].Pos, it.pos) == 0 {
		i++
	}
	if i < len(col.triggers) {
		distToNext := tstamp.Sub(col.triggers[i].Pos, it.pos)
		if tstamp.Less(distToNext, maxDist) {
			maxDist = distToNext
		}
	}
	return maxDist
}

// Move advances the iterator by dist, consuming any triggers at the old
// row and updating the undelivered-trigger index, per spec §4.9 step 2
// ("for c: cgiter[c].move(dist)").
func (it *Cgiter) Move(dist tstamp.Tstamp) {
	col := &it.pat.Columns[it.col]
	for it.idx < len(col.triggers) && tstamp.Cmp(col.triggers[it.idx].Pos, it.pos) == 0 {
		it.idx++
	}
	it.pos = tstamp.Add(it.pos, dist)
	if tstamp.Cmp(it.pos, it.pat.Length) >= 0 {
		it.atEnd = true
	}
}

// Reset rewinds the iterator to time 0, as on a stop trigger (spec §4.9
// "Cancellation").
func (it *Cgiter) Reset() {
	it.pos = tstamp.Zero
	it.idx = 0
	it.atEnd = false
}

// TrackEntry is one (pattern, instance) slot in an order list (spec
// glossary "Order-list").
type TrackEntry struct {
	PatternIndex int
	Instance     int
}

// TrackList is the top-level song structure: an ordered sequence of
// pattern-instance references per track.
type TrackList struct {
	Entries []TrackEntry
}
