// Package channel implements per-column playback state: carry flags,
// force/pitch slides and LFOs, the arpeggio tone table, and the active
// foreground voice-group a channel drives (spec §3 "Channel"; §4.8
// "Channel controls").
package channel

import (
	"math"

	"github.com/kqcore/korender/internal/envelope"
	"github.com/kqcore/korender/internal/kmath"
	"github.com/kqcore/korender/internal/krandom"
	"github.com/kqcore/korender/internal/scale"
)

// ArpNotesMax bounds the arpeggio tone table (ARP_NOTES_MAX in the
// glossary). NaN terminates the active prefix early.
const ArpNotesMax = 32

// Channel is one column's playback controls.
type Channel struct {
	Num int

	ActiveExpression string
	ActiveStreamName string
	ActiveEventName  string

	GroupID uint64 // current foreground voice-group; 0 = none

	CarryForce     bool
	CarryPitch     bool
	CarryExpr      bool

	PitchSlide envelope.Slider
	PitchLFO   envelope.LFO
	ForceSlide envelope.Slider
	ForceLFO   envelope.LFO

	ArpOn      bool
	ArpTones   [ArpNotesMax]float64 // cents; math.NaN() marks end-of-list
	ArpIndex   int
	ArpSpeedHz float64
	arpPhase   float64

	ParamRand  *krandom.Source
	SignalRand *krandom.Source

	Streams map[string]*envelope.Slider // named stream-variable Linear-controls

	TestOutputOverride bool
}

// New creates a Channel with an empty arpeggio table.
func New(num int) *Channel {
	c := &Channel{Num: num, Streams: map[string]*envelope.Slider{}}
	c.ResetArpeggio()
	return c
}

// ResetArpeggio clears the tone table to all-NaN (spec §4.8
// "reset_arpeggio").
func (c *Channel) ResetArpeggio() {
	for i := range c.ArpTones {
		c.ArpTones[i] = math.NaN()
	}
	c.ArpIndex = 0
	c.arpPhase = 0
}

// SetArpeggioNote sets the cents value at index i, growing the active
// prefix (spec §4.8 "set_arpeggio_note").
func (c *Channel) SetArpeggioNote(i int, cents float64) {
	if i < 0 || i >= ArpNotesMax {
		return
	}
	c.ArpTones[i] = cents
}

// QuantizeArpeggioToScale snaps every active arpeggio tone to the nearest
// degree of the named scale, rooted at rootSemitone. A no-op on an unknown
// scale name (scale.QuantizeCents passes those values through unchanged).
func (c *Channel) QuantizeArpeggioToScale(scaleName string, rootSemitone int) {
	for i := 0; i < c.activeLen(); i++ {
		c.ArpTones[i] = scale.QuantizeCents(c.ArpTones[i], scaleName, rootSemitone)
	}
}

// activeLen returns the count of leading non-NaN entries.
func (c *Channel) activeLen() int {
	for i, v := range c.ArpTones {
		if math.IsNaN(v) {
			return i
		}
	}
	return ArpNotesMax
}

// Advance steps the arpeggio phase by nframes at the channel's audio rate
// and returns the multiplicative pitch ratio (relative to the reference
// tone, index 0) the currently selected tone contributes (spec §4.8).
func (c *Channel) Advance(nframes int, audioRate float64) float64 {
	n := c.activeLen()
	if !c.ArpOn || n == 0 || audioRate <= 0 {
		return 1
	}
	c.arpPhase += float64(nframes) * c.ArpSpeedHz / audioRate
	for c.arpPhase >= 1 {
		c.arpPhase -= 1
		c.ArpIndex = (c.ArpIndex + 1) % n
	}
	refHz := kmath.CentsToHz(c.ArpTones[0])
	toneHz := kmath.CentsToHz(c.ArpTones[c.ArpIndex])
	if refHz <= 0 {
		return 1
	}
	return toneHz / refHz
}

// ArpToneName renders the currently selected arpeggio tone as a display
// note name (e.g. "a-4"), for diagnostics/telemetry. Returns "---" when the
// arpeggiator is off or the table is empty.
func (c *Channel) ArpToneName() string {
	if !c.ArpOn || c.activeLen() == 0 {
		return "---"
	}
	return kmath.CentsToNoteName(c.ArpTones[c.ArpIndex])
}

// CarryPitchTarget reports the pitch Slider's current value (its position
// along any slide in progress, not the slide's end target) and whether
// carry_pitch is on; note_on uses that value as the new voice group's pitch
// (spec §4.8 "carry_pitch_{on,off}").
func (c *Channel) CarryPitchTarget() (target float64, carrying bool) {
	if !c.CarryPitch {
		return 0, false
	}
	return c.PitchSlide.Value(), true
}

// CarryForceTarget is the force analogue of CarryPitchTarget.
func (c *Channel) CarryForceTarget() (target float64, carrying bool) {
	if !c.CarryForce {
		return 0, false
	}
	return c.ForceSlide.Value(), true
}

// Stream looks up (creating if absent) the named stream-variable Linear
// control, for set_stream_value and friends (spec §4.8).
func (c *Channel) Stream(name string) *envelope.Slider {
	s, ok := c.Streams[name]
	if !ok {
		s = &envelope.Slider{}
		c.Streams[name] = s
	}
	return s
}
