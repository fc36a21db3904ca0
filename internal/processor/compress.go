package processor

import (
	"math"

	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/kmath"
	"github.com/kqcore/korender/internal/wbuf"
)

// Compress is a gain-computation + apply stage with a peak detector and
// attack/release smoothing; the spec retains a gain-signal send port for
// future expansion beyond this conforming minimal implementation (spec
// §4.7 "Compress").
type Compress struct {
	base
	ThresholdDB float64
	RatioToOne  float64
	AttackSec   float64
	ReleaseSec  float64
	AudioRate   float64

	envelopeDB float64
}

func NewCompress(audioRate float64) *Compress {
	return &Compress{
		base:        base{typeTag: "compress"},
		ThresholdDB: 0,
		RatioToOne:  1,
		AttackSec:   0.01,
		ReleaseSec:  0.1,
		AudioRate:   audioRate,
	}
}

var (
	_ device.Impl          = (*Compress)(nil)
	_ device.MixedRenderer = (*Compress)(nil)
)

const PortGainSend = 1

func (c *Compress) MixedRender(recv, send map[int]*wbuf.Buffer, start, stop int) {
	in, ok := recv[PortAudioSend]
	out, okOut := send[PortAudioSend]
	if !ok || !okOut || !wbuf.IsValid(in) {
		return
	}
	src := in.GetContents()
	dst := out.GetContentsMut()
	gainOut, hasGain := send[PortGainSend]
	var gc []float64
	if hasGain {
		gc = gainOut.GetContentsMut()
	}
	attackCoeff := expCoeff(c.AttackSec, c.AudioRate)
	releaseCoeff := expCoeff(c.ReleaseSec, c.AudioRate)
	for i := start; i < stop; i++ {
		peakDB := kmath.ScaleToDB(math.Abs(src[i]))
		if peakDB > c.envelopeDB {
			c.envelopeDB = attackCoeff*c.envelopeDB + (1-attackCoeff)*peakDB
		} else {
			c.envelopeDB = releaseCoeff*c.envelopeDB + (1-releaseCoeff)*peakDB
		}
		gainDB := 0.0
		if c.envelopeDB > c.ThresholdDB && c.RatioToOne > 1 {
			over := c.envelopeDB - c.ThresholdDB
			gainDB = -(over - over/c.RatioToOne)
		}
		gain := kmath.DBToScale(gainDB)
		dst[i] = src[i] * gain
		if gc != nil {
			gc[i] = gainDB
		}
	}
	out.SetValid(true)
	if hasGain {
		gainOut.SetValid(true)
	}
}

func expCoeff(seconds, audioRate float64) float64 {
	if seconds <= 0 || audioRate <= 0 {
		return 0
	}
	return math.Exp(-1.0 / (seconds * audioRate))
}
