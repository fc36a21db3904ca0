package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/voice"
)

// Noise renders coloured noise via a configurable-order DC-zeroing filter
// chain, seeded from the voice's signal Random (spec §4.7 "Noise").
type Noise struct {
	base
	Params *device.ParamStore
}

func NewNoise() *Noise {
	return &Noise{base: base{typeTag: "noise"}, Params: device.NewParamStore()}
}

var (
	_ device.Impl         = (*Noise)(nil)
	_ device.VoiceCapable = (*Noise)(nil)
)

// NoiseTail carries the running DC-zeroing filter state: order pairs of
// (previous input, previous output) samples.
type NoiseTail struct {
	PrevIn  []float64
	PrevOut []float64
}

func (p *Noise) BindVoice(v *voice.Voice) {
	order := int(p.Params.Int("p_i_order", 0))
	v.State.Init = func(v *voice.Voice) {
		v.State.Tail = &NoiseTail{PrevIn: make([]float64, order), PrevOut: make([]float64, order)}
	}
	v.State.Render = p.render
}

func (p *Noise) render(v *voice.Voice, ctx *voice.RenderContext) int {
	tail, ok := v.State.Tail.(*NoiseTail)
	if !ok {
		return ctx.BufStop
	}
	out, hasOut := ctx.Send[PortAudioSend]
	if !hasOut || v.SignalRand == nil {
		return ctx.BufStop
	}
	c := out.GetContentsMut()
	for i := ctx.BufStart; i < ctx.BufStop; i++ {
		sample := v.SignalRand.Float64()*2 - 1
		for o := 0; o < len(tail.PrevIn); o++ {
			// first-order DC-zeroing section: y = x - x_prev + 0.995*y_prev
			y := sample - tail.PrevIn[o] + 0.995*tail.PrevOut[o]
			tail.PrevIn[o] = sample
			tail.PrevOut[o] = y
			sample = y
		}
		c[i] = sample
	}
	out.SetValid(true)
	return ctx.BufStop
}
