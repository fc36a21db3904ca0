package processor

import (
	"math"
	"sort"

	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/voice"
)

// PADsynth selects a precomputed long waveform by nearest centre-pitch in a
// sample map, plays it back with linear interpolation and an optional
// stereo offset (half-length phase shift on the right channel), with a
// randomised start position (spec §4.7 "PADsynth"). The start is any whole
// frame of the waveform; it is not rounded to the waveform's pitch period.
type PADsynth struct {
	base
	SampleMap []NoteMapEntry
	StereoOff bool
}

func NewPADsynth() *PADsynth {
	return &PADsynth{base: base{typeTag: "padsynth"}}
}

var (
	_ device.Impl         = (*PADsynth)(nil)
	_ device.VoiceCapable = (*PADsynth)(nil)
)

func (p *PADsynth) nearest(cents float64) *SampleData {
	if len(p.SampleMap) == 0 {
		return nil
	}
	entries := append([]NoteMapEntry(nil), p.SampleMap...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Cents < entries[j].Cents })
	best := entries[0]
	bestDist := math.Abs(best.Cents - cents)
	for _, e := range entries[1:] {
		if d := math.Abs(e.Cents - cents); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best.Sample
}

// PADsynthTail carries the independent left/right read positions, offset
// by half the waveform length on the right channel.
type PADsynthTail struct {
	Data     *SampleData
	PosLeft  float64
	PosRight float64
}

func (p *PADsynth) BindVoice(v *voice.Voice) {
	v.State.Init = func(v *voice.Voice) {
		data := p.nearest(v.State.PitchCents)
		tail := &PADsynthTail{Data: data}
		if data != nil && len(data.Frames) > 0 {
			n := len(data.Frames[0])
			start := 0.0
			if v.ParamRand != nil && n > 0 {
				period := n
				if data.RefFreq > 0 {
					period = n // whole-waveform period fallback
				}
				start = float64(v.ParamRand.IntN(period))
			}
			tail.PosLeft = start
			if p.StereoOff {
				tail.PosRight = math.Mod(start+float64(n)/2, float64(n))
			} else {
				tail.PosRight = start
			}
		}
		v.State.Tail = tail
	}
	v.State.Render = p.render
}

func (p *PADsynth) render(v *voice.Voice, ctx *voice.RenderContext) int {
	tail, ok := v.State.Tail.(*PADsynthTail)
	if !ok || tail.Data == nil || len(tail.Data.Frames) == 0 {
		return silence(ctx, ctx.BufStart, ctx.BufStop)
	}
	left, hasLeft := ctx.Send[PortPanLeftSend]
	right, hasRight := ctx.Send[PortPanRightSend]
	if !hasLeft {
		return ctx.BufStop
	}
	freq := recvSlice(ctx, PortPitchRecv)
	freqBuf := make([]float64, ctx.BufStop)
	fillEffectiveFreq(freq, ctx.BufStart, ctx.BufStop, freqBuf)

	ch := tail.Data.Frames[0]
	n := len(ch)
	cl := left.GetContentsMut()
	var cr []float64
	if hasRight {
		cr = right.GetContentsMut()
	}
	for i := ctx.BufStart; i < ctx.BufStop; i++ {
		ratio := 1.0
		if tail.Data.RefFreq > 0 {
			ratio = freqBuf[i] / tail.Data.RefFreq
		}
		cl[i] = interpWrap(ch, tail.PosLeft, n)
		tail.PosLeft = math.Mod(tail.PosLeft+ratio, float64(n))
		if cr != nil {
			cr[i] = interpWrap(ch, tail.PosRight, n)
			tail.PosRight = math.Mod(tail.PosRight+ratio, float64(n))
		}
	}
	left.SetValid(true)
	if hasRight {
		right.SetValid(true)
	}
	return ctx.BufStop
}

func interpWrap(ch []float64, pos float64, n int) float64 {
	if n == 0 {
		return 0
	}
	lo := int(pos) % n
	frac := pos - math.Floor(pos)
	hi := (lo + 1) % n
	return ch[lo]*(1-frac) + ch[hi]*frac
}
