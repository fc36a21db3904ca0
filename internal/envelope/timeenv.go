package envelope

import "math"

// TimeState renders an Envelope over an arbitrary region of a work buffer,
// tracking position/segment state across calls so the inner loop only
// re-consults the envelope when crossing into a new segment (spec §4.3).
type TimeState struct {
	Env       *Envelope
	AudioRate float64
	MinValue  float64
	MaxValue  float64
	Release   bool // markers ignored, run to the end

	pos        float64 // position in envelope x-units (time)
	seg        int     // current segment index (node seg -> seg+1)
	value      float64
	updateStep float64 // per-frame delta within the current segment
	done       bool
}

// Reset starts the evaluator at the envelope's first node.
func (ts *TimeState) Reset() {
	ts.pos = 0
	ts.seg = 0
	ts.done = false
	if len(ts.Env.Nodes) > 0 {
		ts.value = ts.Env.Nodes[0].Y
	}
	ts.computeStep()
}

func (ts *TimeState) computeStep() {
	n := ts.Env.Nodes
	if ts.seg+1 >= len(n) {
		ts.updateStep = 0
		return
	}
	next := n[ts.seg+1]
	ts.updateStep = (next.Y - ts.value) / ts.AudioRate
}

// Render evaluates the envelope for frames [start, stop) of buf, honouring
// sustain (0 = full speed, 1 = frozen), an optional per-frame stretch buffer
// (interpreted as 2^stretch), and looping unless Release is set. It returns
// the frame index where the envelope reached its end, or stop if it has not
// ended within this call.
func (ts *TimeState) Render(buf []float64, start, stop int, sustain float64, stretch []float64) int {
	n := ts.Env.Nodes
	if len(n) == 0 {
		for i := start; i < stop; i++ {
			buf[i] = 0
		}
		return stop
	}
	speedScale := 1.0 - sustain
	endFrame := stop
	for i := start; i < stop; i++ {
		if ts.done {
			buf[i] = clampValue(ts.value, ts.MinValue, ts.MaxValue)
			if endFrame == stop {
				endFrame = i
			}
			continue
		}
		buf[i] = clampValue(ts.value, ts.MinValue, ts.MaxValue)

		step := ts.updateStep * speedScale
		if stretch != nil {
			step *= pow2(stretch[i])
		}
		ts.value += step
		ts.pos += speedScale

		if ts.seg+1 < len(n) && crossedSegment(ts.pos, ts.seg, n) {
			ts.advanceSegment(n)
		}
	}
	return endFrame
}

func crossedSegment(pos float64, seg int, n []Node) bool {
	return pos >= n[seg+1].X-n[seg].X
}

func (ts *TimeState) advanceSegment(n []Node) {
	ts.pos -= n[ts.seg+1].X - n[ts.seg].X
	ts.seg++
	ts.value = n[ts.seg].Y

	if !ts.Release && ts.Env.HasLoop() && ts.seg >= ts.Env.LoopEnd {
		ts.seg = ts.Env.LoopStart
		ts.value = n[ts.seg].Y
		ts.pos = 0
	}

	if ts.seg+1 >= len(n) {
		ts.done = true
		ts.updateStep = 0
		return
	}
	ts.computeStep()
}

func clampValue(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pow2(x float64) float64 {
	return math.Pow(2, x)
}
