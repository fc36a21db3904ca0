// Package processor implements the representative Device-impl variants
// that generate or shape a voice's audio (spec §4.7), plus the shared
// voice-render preamble every processor follows (spec §4.6).
package processor

import (
	"math"

	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/kmath"
	"github.com/kqcore/korender/internal/voice"
	"github.com/kqcore/korender/internal/wbuf"
)

// RampAttackFrames is roughly 2ms of ramp-attack at a typical 48kHz rate;
// callers rescale by audio_rate/48000 when the render context's rate
// differs (spec §4.6 step 5).
const RampAttackFrames = 96

// Ports every voice-capable processor shares: pitch/force come in on fixed
// receive ports, audio goes out on fixed send ports.
const (
	PortPitchRecv = 0
	PortForceRecv = 1
	PortAudioSend = 0
)

// fillEffectiveFreq reads the pitch-input buffer (cents) over [start,stop)
// into out (Hz), falling back to 440Hz where the input is absent, per
// spec §4.6 step 2.
func fillEffectiveFreq(pitchIn []float64, start, stop int, out []float64) {
	for i := start; i < stop; i++ {
		cents := 0.0
		if pitchIn != nil {
			cents = pitchIn[i]
		} else {
			out[i] = 440.0
			continue
		}
		out[i] = kmath.CentsToHz(cents)
	}
}

// fillEffectiveScale reads the force-input buffer (dB) into out (linear
// scale), falling back to 1.0, per spec §4.6 step 3. Returns true if the
// force input is constant-equal to -inf across the whole window (voice
// must report silence and end).
func fillEffectiveScale(forceIn []float64, start, stop int, out []float64) bool {
	allSilent := forceIn != nil
	for i := start; i < stop; i++ {
		db := 0.0
		if forceIn != nil {
			db = forceIn[i]
		} else {
			out[i] = 1.0
			allSilent = false
			continue
		}
		if !math.IsInf(db, -1) {
			allSilent = false
		}
		out[i] = kmath.DBToScale(db)
	}
	return allSilent
}

// rampFramesFor rescales RampAttackFrames to the context's actual audio
// rate so the ~2ms click-suppression window stays constant in real time.
func rampFramesFor(audioRate float64) int {
	if audioRate <= 0 {
		return RampAttackFrames
	}
	return int(float64(RampAttackFrames) * audioRate / 48000.0)
}

// base is embedded by every processor to supply its TypeTag.
type base struct {
	typeTag string
}

func (b *base) TypeTag() string { return b.typeTag }

var _ device.Impl = (*base)(nil)

// silence writes zero to send[PortAudioSend] over [start,stop) and reports
// the voice as ended -- the canonical response to an -inf force input.
func silence(ctx *voice.RenderContext, start, stop int) int {
	if send, ok := ctx.Send[PortAudioSend]; ok {
		c := send.GetContentsMut()
		for i := start; i < stop; i++ {
			c[i] = 0
		}
		send.SetConstStart(start)
		send.SetFinal(true)
	}
	return start
}

func recvSlice(ctx *voice.RenderContext, port int) []float64 {
	b, ok := ctx.Recv[port]
	if !ok || !wbuf.IsValid(b) {
		return nil
	}
	return b.GetContents()
}
