package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildADSRShapesAndLoopsAtSustain(t *testing.T) {
	e := BuildADSR(0, 127, 254, 0)
	assert.True(t, e.IsValid())
	assert.True(t, e.HasLoop())
	assert.Equal(t, 2, e.LoopStart)
	assert.Equal(t, 2, e.LoopEnd)

	assert.Equal(t, 0.0, e.Nodes[0].Y)
	assert.Equal(t, 1.0, e.Nodes[1].Y)
	assert.InDelta(t, 1.0, e.Nodes[2].Y, 1e-9) // sustainHex 254 -> full level
	assert.Equal(t, 0.0, e.Nodes[3].Y)
}

func TestBuildADSRClampsOutOfRangeHex(t *testing.T) {
	e := BuildADSR(-5, 1000, -1, 9999)
	assert.True(t, e.IsValid())
}

func TestBuildADSRHoldsAtSustainUntilRelease(t *testing.T) {
	e := BuildADSR(0, 0, 254, 0) // instant attack, no decay, full sustain
	ts := &TimeState{Env: e, AudioRate: 1000, MinValue: -200, MaxValue: 200}
	ts.Reset()

	buf := make([]float64, 5000)
	ts.Render(buf, 0, 5000, 0, nil)
	assert.InDelta(t, 1.0, buf[4999], 1e-6) // still held at sustain, never released
}
