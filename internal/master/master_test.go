package master

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTempoAndVolume(t *testing.T) {
	s := New()
	assert.Equal(t, 120.0, s.Tempo.Value())
	assert.Equal(t, 0.0, s.Volume.Value())
}

func TestFadeGainRampsToZeroThenStops(t *testing.T) {
	s := New()
	s.RequestStop()
	gains := s.FadeGain(FadeFrames)
	assert.Equal(t, 1.0, gains[0])
	assert.InDelta(t, 0.0, gains[FadeFrames-1], 1.0/float64(FadeFrames))
	assert.True(t, s.Stopped)
}

func TestFadeGainIsIdentityWithoutStop(t *testing.T) {
	s := New()
	gains := s.FadeGain(4)
	for _, g := range gains {
		assert.Equal(t, 1.0, g)
	}
}

func TestFrameRemainderRoundtrip(t *testing.T) {
	s := New()
	s.SetFrameRemainder(0.37)
	assert.Equal(t, 0.37, s.FrameRemainder())
}
