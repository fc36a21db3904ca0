package processor

import (
	"math"

	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/wbuf"
)

// Slope differentiates its input signal and smooths the derivative with a
// one-pole filter whose time constant is Smoothing seconds (spec §4.7
// "Slope").
type Slope struct {
	base
	Smoothing float64 // seconds
	AudioRate float64

	prevIn  float64
	smoothed float64
}

func NewSlope(audioRate, smoothingSeconds float64) *Slope {
	return &Slope{base: base{typeTag: "slope"}, Smoothing: smoothingSeconds, AudioRate: audioRate}
}

var (
	_ device.Impl          = (*Slope)(nil)
	_ device.MixedRenderer = (*Slope)(nil)
)

func (s *Slope) MixedRender(recv, send map[int]*wbuf.Buffer, start, stop int) {
	in, ok := recv[PortAudioSend]
	out, okOut := send[PortAudioSend]
	if !ok || !okOut || !wbuf.IsValid(in) {
		return
	}
	coeff := 0.0
	if s.Smoothing > 0 && s.AudioRate > 0 {
		coeff = math.Exp(-1.0 / (s.Smoothing * s.AudioRate))
	}
	src := in.GetContents()
	dst := out.GetContentsMut()
	for i := start; i < stop; i++ {
		derivative := (src[i] - s.prevIn) * s.AudioRate
		s.prevIn = src[i]
		s.smoothed = coeff*s.smoothed + (1-coeff)*derivative
		dst[i] = s.smoothed
	}
	out.SetValid(true)
}
