// Package master implements the Master state: global transport position,
// tempo/volume controls, tuning-table selection, playback mode, and the
// fade-out-on-stop ramp (spec §3 "Master state"; §4.9 "Fade-out on stop").
package master

import (
	"github.com/kqcore/korender/internal/envelope"
	"github.com/kqcore/korender/internal/tstamp"
)

// Mode selects how the Player advances through the track list.
type Mode int

const (
	ModeSong Mode = iota
	ModePattern
	ModeLive
)

// FadeFrames is the length of the linear fade that FadeGain ramps over
// (spec §4.9 "Fade-out on stop").
const FadeFrames = 128

// State is the Player's singleton transport/mix state.
type State struct {
	Position tstamp.Tstamp
	Track    int
	System   int // order-list system index, when Mode == ModeSong

	Tempo  envelope.Slider // beats per minute
	Volume envelope.Slider // dB final-mix trim; the Player does not apply it to the output

	TuningTable int
	Mode        Mode

	Paused  bool
	Stopped bool

	fading     bool
	fadePos    int
	frameRemainder float64 // sub-frame carry across Player sub-chunks (spec §4.9 step 2)
}

// New creates a State at tempo 120 BPM, 0 dB volume.
func New() *State {
	s := &State{}
	s.Tempo.Start(120, 120, 0)
	s.Volume.Start(0, 0, 0)
	return s
}

// FrameRemainder returns the sub-frame carry left over from the last
// tstamp_to_frames conversion (spec §4.9 step 2).
func (s *State) FrameRemainder() float64 { return s.frameRemainder }

// SetFrameRemainder stores the carry for the next sub-chunk.
func (s *State) SetFrameRemainder(carry float64) { s.frameRemainder = carry }

// RequestStop marks the fade-out as started; FadeGain then ramps the gain
// down over FadeFrames frames and sets Stopped once it reaches zero (spec
// §4.9 "Fade-out on stop"). The Player does not call FadeGain: it sets
// Stopped itself right after RequestStop, so rendered output is not faded.
func (s *State) RequestStop() {
	if !s.fading {
		s.fading = true
		s.fadePos = 0
	}
}

// FadeGain returns the linear gain for the next nframes of the fade and
// advances the fade position; once fully faded it also sets Stopped.
func (s *State) FadeGain(nframes int) []float64 {
	gains := make([]float64, nframes)
	if !s.fading {
		for i := range gains {
			gains[i] = 1
		}
		return gains
	}
	for i := 0; i < nframes; i++ {
		if s.fadePos >= FadeFrames {
			gains[i] = 0
			continue
		}
		gains[i] = 1 - float64(s.fadePos)/float64(FadeFrames)
		s.fadePos++
	}
	if s.fadePos >= FadeFrames {
		s.Stopped = true
	}
	return gains
}

// IsFading reports whether a stop-triggered fade is in progress.
func (s *State) IsFading() bool { return s.fading }
