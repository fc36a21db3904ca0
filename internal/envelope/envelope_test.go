package envelope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGetValueAtNodeExact(t *testing.T) {
	e := New([]Node{{0, 0}, {1, 1}, {2, 0}})
	assert.Equal(t, 0.0, e.GetValue(0))
	assert.Equal(t, 1.0, e.GetValue(1))
	assert.Equal(t, 0.0, e.GetValue(2))
}

func TestGetValueInterpolates(t *testing.T) {
	e := New([]Node{{0, 0}, {2, 2}})
	assert.InDelta(t, 1.0, e.GetValue(1), 1e-9)
}

func TestIsValidRejectsNonIncreasingX(t *testing.T) {
	e := New([]Node{{0, 0}, {0, 1}})
	assert.False(t, e.IsValid())
}

func TestIsValidRejectsBadLoop(t *testing.T) {
	e := New([]Node{{0, 0}, {1, 1}, {2, 0}})
	e.LoopStart, e.LoopEnd = 2, 1
	assert.False(t, e.IsValid())
}

func TestSliderLinearEndpoints(t *testing.T) {
	var s Slider
	s.Mode = SliderLinear
	s.Start(0, 10, 100)
	assert.Equal(t, 0.0, s.Value())
	var last float64
	for i := 0; i < 100; i++ {
		last = s.Step()
	}
	assert.InDelta(t, 10.0, last, 1e-9)
}

func TestSliderExponentialMidpointIsLogLinear(t *testing.T) {
	var s Slider
	s.Mode = SliderExponential
	s.Start(1, 100, 10)
	for i := 0; i < 5; i++ {
		s.Step()
	}
	got := math.Log(s.Value())
	want := (math.Log(1) + math.Log(100)) / 2
	assert.InDelta(t, want, got, 1e-6)
}

func TestSliderStepSkipAgree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.Int64Range(1, 2000).Draw(rt, "len")
		n := rapid.Int64Range(0, length).Draw(rt, "n")
		var a, b Slider
		a.Start(0, 1, length)
		b.Start(0, 1, length)
		for i := int64(0); i < n; i++ {
			a.Step()
		}
		b.Skip(n)
		if math.Abs(a.Value()-b.Value()) > 1e-9 {
			rt.Fatalf("Step x%d = %v, Skip(%d) = %v", n, a.Value(), n, b.Value())
		}
	})
}

func TestLFOIdentityWhenInactive(t *testing.T) {
	var l LFO
	l.Init(48000)
	assert.Equal(t, 0.0, l.Step())
	l.Mode = LFOExponential
	var l2 LFO
	l2.Mode = LFOExponential
	l2.Init(48000)
	assert.Equal(t, 1.0, l2.Step())
}

func TestTimeStateReachesEnd(t *testing.T) {
	e := New([]Node{{0, 0}, {1, 1}})
	ts := &TimeState{Env: e, AudioRate: 4, MinValue: -10, MaxValue: 10}
	ts.Reset()
	buf := make([]float64, 8)
	end := ts.Render(buf, 0, 8, 0, nil)
	assert.LessOrEqual(t, end, 8)
}
