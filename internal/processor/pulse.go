package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/voice"
)

// Pulse is a phase-accumulator square wave with a per-voice configurable
// pulse width (spec §4.7 "Pulse").
type Pulse struct {
	base
	Params *device.ParamStore
}

func NewPulse() *Pulse {
	return &Pulse{base: base{typeTag: "pulse"}, Params: device.NewParamStore()}
}

var (
	_ device.Impl         = (*Pulse)(nil)
	_ device.VoiceCapable = (*Pulse)(nil)
)

// PulseTail carries the oscillator phase accumulator.
type PulseTail struct {
	Phase float64 // 0..1
	Width float64
}

func (p *Pulse) BindVoice(v *voice.Voice) {
	width := p.Params.Float("p_f_pulse_width", 0.5)
	v.State.Init = func(v *voice.Voice) {
		v.State.Tail = &PulseTail{Width: width}
	}
	v.State.Render = p.render
}

func (p *Pulse) render(v *voice.Voice, ctx *voice.RenderContext) int {
	tail, ok := v.State.Tail.(*PulseTail)
	if !ok {
		return ctx.BufStop
	}
	out, hasOut := ctx.Send[PortAudioSend]
	if !hasOut || ctx.AudioRate <= 0 {
		return ctx.BufStop
	}
	freq := recvSlice(ctx, PortPitchRecv)
	freqBuf := make([]float64, ctx.BufStop)
	fillEffectiveFreq(freq, ctx.BufStart, ctx.BufStop, freqBuf)
	c := out.GetContentsMut()
	for i := ctx.BufStart; i < ctx.BufStop; i++ {
		if tail.Phase < tail.Width {
			c[i] = 1
		} else {
			c[i] = -1
		}
		tail.Phase += freqBuf[i] / ctx.AudioRate
		for tail.Phase >= 1 {
			tail.Phase -= 1
		}
	}
	out.SetValid(true)
	return ctx.BufStop
}
