package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/envelope"
	"github.com/kqcore/korender/internal/wbuf"
)

// Stream holds a Linear-controls object -- a current value, a slide
// target/length, and an optional LFO-style oscillation -- and outputs the
// sampled value at audio rate (spec §4.7 "Stream").
type Stream struct {
	base
	Value    envelope.Slider
	Osc      envelope.LFO
	AudioRate float64
}

func NewStream(audioRate float64) *Stream {
	s := &Stream{base: base{typeTag: "stream"}, AudioRate: audioRate}
	s.Osc.Init(audioRate)
	return s
}

var (
	_ device.Impl          = (*Stream)(nil)
	_ device.MixedRenderer = (*Stream)(nil)
)

// SetValue jumps the current value immediately, per the set_stream_value
// event (spec §4.8).
func (s *Stream) SetValue(x float64) {
	s.Value.Start(x, x, 0)
}

// SlideTarget begins a slide toward target over lengthFrames, per
// slide_stream_target.
func (s *Stream) SlideTarget(target float64, lengthFrames int64) {
	s.Value.ChangeTarget(target, lengthFrames)
}

// MixedRender samples the slider+LFO combination into send[PortAudioSend]
// for [start, stop).
func (s *Stream) MixedRender(recv, send map[int]*wbuf.Buffer, start, stop int) {
	out, ok := send[PortAudioSend]
	if !ok {
		return
	}
	c := out.GetContentsMut()
	for i := start; i < stop; i++ {
		c[i] = s.Value.Step() + s.Osc.Step()
	}
	out.SetValid(true)
}
