package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/envelope"
	"github.com/kqcore/korender/internal/voice"
)

// Force holds a global force value, a variation amount, a force envelope
// (optionally looped), and a release-phase envelope, driving the dominant
// amplitude shape of a voice (spec §4.7 "Force").
type Force struct {
	base
	Params      *device.ParamStore
	Env         *envelope.Envelope // values in dB
	ReleaseEnv  *envelope.Envelope
	RampRelease bool
}

func NewForce() *Force {
	return &Force{base: base{typeTag: "force"}, Params: device.NewParamStore()}
}

// NewForceADSR builds a Force processor whose Env is a four-stage
// attack/decay/sustain/release shape, from hex-encoded column values
// (0-254) in the same encoding a phrase row's attack/decay/sustain/release
// cells use.
func NewForceADSR(attackHex, decayHex, sustainHex, releaseHex int) *Force {
	p := NewForce()
	p.Env = envelope.BuildADSR(attackHex, decayHex, sustainHex, releaseHex)
	return p
}

var (
	_ device.Impl         = (*Force)(nil)
	_ device.VoiceCapable = (*Force)(nil)
)

// ForceTail is the per-voice state a Force processor installs.
type ForceTail struct {
	Global    float64 // dB, fixed for the voice's lifetime
	Variation float64 // dB, randomised once at note-on
	EnvState  envelope.TimeState
	Releasing bool
}

func (p *Force) BindVoice(v *voice.Voice) {
	global := p.Params.Float("p_f_global_force", 0)
	variationAmt := p.Params.Float("p_f_force_variation", 0)
	env := p.Env
	v.State.Init = func(v *voice.Voice) {
		variation := 0.0
		if v.ParamRand != nil && variationAmt > 0 {
			variation = (v.ParamRand.Float64()*2 - 1) * variationAmt
		}
		tail := &ForceTail{Global: global, Variation: variation}
		if env != nil {
			tail.EnvState.Env = env
			tail.EnvState.MinValue = -200
			tail.EnvState.MaxValue = 200
			// AudioRate is filled in lazily on first render, where the real
			// rate is actually known (RenderContext carries it, Init does not).
		}
		v.State.Tail = tail
	}
	v.State.Render = p.render
}

func (p *Force) render(v *voice.Voice, ctx *voice.RenderContext) int {
	tail, ok := v.State.Tail.(*ForceTail)
	if !ok {
		return ctx.BufStop
	}
	out, hasOut := ctx.Send[PortAudioSend]
	if !hasOut {
		return ctx.BufStop
	}
	c := out.GetContentsMut()
	end := ctx.BufStop
	if p.Env == nil {
		for i := ctx.BufStart; i < ctx.BufStop; i++ {
			c[i] = tail.Global + tail.Variation
		}
	} else {
		if tail.EnvState.AudioRate == 0 {
			tail.EnvState.AudioRate = ctx.AudioRate
			tail.EnvState.Reset()
		}
		dbBuf := make([]float64, ctx.BufStop)
		end = tail.EnvState.Render(dbBuf, ctx.BufStart, ctx.BufStop, 0, nil)
		for i := ctx.BufStart; i < ctx.BufStop; i++ {
			c[i] = tail.Global + tail.Variation + dbBuf[i]
		}
	}
	out.SetValid(true)
	v.State.KeepAliveStop = end
	return end
}
