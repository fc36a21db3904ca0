package processor

import (
	"math"
	"sort"

	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/voice"
)

// SampleData is one decoded, mono or stereo sample (spec §4.7 "Sample").
// Decoding from WAV lives in internal/sampleio; this package only plays
// already-decoded frames back.
type SampleData struct {
	Frames    [][]float64 // Frames[channel][frame]
	RefFreq   float64
	LoopStart int // -1 disables looping
	LoopEnd   int
	Bidi      bool
}

// NoteMapEntry binds a centre pitch (cents) to a sample.
type NoteMapEntry struct {
	Cents  float64
	Sample *SampleData
}

// Sample selects a SampleData by nearest centre-pitch in a Note-map and
// plays it back at the ratio of the voice's effective frequency to the
// sample's reference frequency, with linear interpolation and optional
// looping (spec §4.7 "Sample").
type Sample struct {
	base
	NoteMap []NoteMapEntry
}

func NewSample() *Sample {
	return &Sample{base: base{typeTag: "sample"}}
}

var (
	_ device.Impl         = (*Sample)(nil)
	_ device.VoiceCapable = (*Sample)(nil)
)

func (p *Sample) nearest(cents float64) *SampleData {
	if len(p.NoteMap) == 0 {
		return nil
	}
	entries := append([]NoteMapEntry(nil), p.NoteMap...)
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

// SampleTail carries playback position for one voice.
type SampleTail struct {
	Data      *SampleData
	Pos       float64
	Direction float64
}

func (p *Sample) BindVoice(v *voice.Voice) {
	v.State.Init = func(v *voice.Voice) {
		v.State.Tail = &SampleTail{Data: p.nearest(v.State.PitchCents), Direction: 1}
	}
	v.State.Render = p.render
}

func (p *Sample) render(v *voice.Voice, ctx *voice.RenderContext) int {
	tail, ok := v.State.Tail.(*SampleTail)
	if !ok || tail.Data == nil || len(tail.Data.Frames) == 0 {
		return silence(ctx, ctx.BufStart, ctx.BufStop)
	}
	out, hasOut := ctx.Send[PortAudioSend]
	if !hasOut {
		return ctx.BufStop
	}
	freq := recvSlice(ctx, PortPitchRecv)
	freqBuf := make([]float64, ctx.BufStop)
	fillEffectiveFreq(freq, ctx.BufStart, ctx.BufStop, freqBuf)

	ch := tail.Data.Frames[0]
	n := len(ch)
	c := out.GetContentsMut()
	end := ctx.BufStop
	for i := ctx.BufStart; i < ctx.BufStop; i++ {
		if tail.Data.RefFreq <= 0 {
			c[i] = 0
			continue
		}
		ratio := freqBuf[i] / tail.Data.RefFreq
		lo := int(tail.Pos)
		frac := tail.Pos - float64(lo)
		if lo+1 >= n {
			c[i] = sampleAt(ch, lo)
		} else {
			c[i] = ch[lo]*(1-frac) + ch[lo+1]*frac
		}
		tail.Pos += ratio * tail.Direction
		if tail.Data.LoopStart >= 0 && tail.Data.LoopEnd > tail.Data.LoopStart {
			tail.Pos = loopPosition(tail, n)
		} else if tail.Pos >= float64(n) || tail.Pos < 0 {
			end = i + 1
			break
		}
	}
	out.SetValid(true)
	v.State.KeepAliveStop = end
	return end
}

func sampleAt(ch []float64, i int) float64 {
	if i < 0 || i >= len(ch) {
		return 0
	}
	return ch[i]
}

func loopPosition(tail *SampleTail, n int) float64 {
	start, end := float64(tail.Data.LoopStart), float64(tail.Data.LoopEnd)
	if tail.Pos >= end {
		if tail.Data.Bidi {
			tail.Direction = -1
			return end - (tail.Pos - end)
		}
		return start + (tail.Pos - end)
	}
	if tail.Pos < start {
		if tail.Data.Bidi {
			tail.Direction = 1
			return start + (start - tail.Pos)
		}
		return end - (start - tail.Pos)
	}
	return tail.Pos
}
