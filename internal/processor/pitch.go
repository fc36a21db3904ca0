package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/envelope"
	"github.com/kqcore/korender/internal/voice"
)

// PitchSource holds a target pitch plus a slider/vibrato pair and writes
// cents into its send port each render (spec §4.7 "Pitch source").
type PitchSource struct {
	base
}

func NewPitchSource() *PitchSource {
	return &PitchSource{base: base{typeTag: "pitch"}}
}

var (
	_ device.Impl       = (*PitchSource)(nil)
	_ device.VoiceCapable = (*PitchSource)(nil)
)

// PitchTail is the per-voice state a PitchSource installs.
type PitchTail struct {
	BasePitch float64 // cents, set at note-on
	Slide     envelope.Slider
	Vibrato   envelope.LFO
	ArpRatio  float64 // multiplicative cents offset applied by an active arpeggio
}

// BindVoice installs this processor's render/init functions onto v, as a
// channel's note_on reserves the voice (spec §4.5 "Reservation from a
// channel").
func (p *PitchSource) BindVoice(v *voice.Voice) {
	v.State.Init = func(v *voice.Voice) {
		v.State.Tail = &PitchTail{BasePitch: v.State.PitchCents, ArpRatio: 1}
	}
	v.State.Render = renderPitch
}

func renderPitch(v *voice.Voice, ctx *voice.RenderContext) int {
	tail, ok := v.State.Tail.(*PitchTail)
	if !ok {
		tail = &PitchTail{BasePitch: v.State.PitchCents, ArpRatio: 1}
		v.State.Tail = tail
	}
	out, hasOut := ctx.Send[PortAudioSend]
	if !hasOut {
		return ctx.BufStop
	}
	c := out.GetContentsMut()
	for i := ctx.BufStart; i < ctx.BufStop; i++ {
		vib := tail.Vibrato.Step()
		slide := tail.Slide.Step()
		c[i] = (tail.BasePitch + slide + vib) * tail.ArpRatio
	}
	out.SetValid(true)
	return ctx.BufStop
}
