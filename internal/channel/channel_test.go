package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetArpeggioClearsToNaN(t *testing.T) {
	c := New(0)
	c.SetArpeggioNote(0, 0)
	c.SetArpeggioNote(1, 700)
	assert.Equal(t, 2, c.activeLen())
	c.ResetArpeggio()
	assert.Equal(t, 0, c.activeLen())
}

func TestAdvanceCyclesThroughTones(t *testing.T) {
	c := New(0)
	c.SetArpeggioNote(0, 0)
	c.SetArpeggioNote(1, 1200) // +1 octave
	c.ArpOn = true
	c.ArpSpeedHz = 10 // full tone-step every audioRate/10 frames
	ratio := c.Advance(4800, 48000)
	assert.InDelta(t, 2.0, ratio, 1e-9) // moved to tone 1, one octave up
}

func TestAdvanceNoopWhenOff(t *testing.T) {
	c := New(0)
	c.SetArpeggioNote(0, 0)
	c.ArpOn = false
	assert.Equal(t, 1.0, c.Advance(1000, 48000))
}

func TestCarryFlagsGateTargetReporting(t *testing.T) {
	c := New(0)
	c.PitchSlide.Start(0, 500, 100)
	_, carrying := c.CarryPitchTarget()
	assert.False(t, carrying)
	c.CarryPitch = true
	target, carrying := c.CarryPitchTarget()
	assert.True(t, carrying)
	assert.Equal(t, 0.0, target) // Value() before any Step() is still origin
}

func TestArpToneNameTracksSelectedTone(t *testing.T) {
	c := New(0)
	assert.Equal(t, "---", c.ArpToneName())

	c.SetArpeggioNote(0, 0)
	c.SetArpeggioNote(1, 1200)
	c.ArpOn = true
	assert.Equal(t, "a-4", c.ArpToneName())

	c.ArpIndex = 1
	assert.Equal(t, "a-5", c.ArpToneName())
}

func TestStreamLooksUpOrCreates(t *testing.T) {
	c := New(0)
	s1 := c.Stream("wobble")
	s2 := c.Stream("wobble")
	assert.Same(t, s1, s2)
}
