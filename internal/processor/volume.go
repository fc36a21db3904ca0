package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/kmath"
	"github.com/kqcore/korender/internal/wbuf"
)

// Volume applies a constant dB scale to its input audio, stateless per
// voice (spec §4.7 "Volume / Panning").
type Volume struct {
	base
	Params *device.ParamStore
}

// NewVolume creates a Volume processor reading p_f_volume (default 0 dB).
func NewVolume() *Volume {
	return &Volume{base: base{typeTag: "volume"}, Params: device.NewParamStore()}
}

var (
	_ device.Impl          = (*Volume)(nil)
	_ device.MixedRenderer = (*Volume)(nil)
)

// MixedRender copies recv[PortAudioSend] into send[PortAudioSend] scaled by
// the configured volume.
func (p *Volume) MixedRender(recv, send map[int]*wbuf.Buffer, start, stop int) {
	in, ok := recv[PortAudioSend]
	out, okOut := send[PortAudioSend]
	if !okOut {
		return
	}
	scale := kmath.DBToScale(p.Params.Float("p_f_volume", 0))
	dst := out.GetContentsMut()
	if !ok || !wbuf.IsValid(in) {
		for i := start; i < stop; i++ {
			dst[i] = 0
		}
		out.SetConstStart(start)
		return
	}
	src := in.GetContents()
	for i := start; i < stop; i++ {
		dst[i] = src[i] * scale
	}
	out.SetConstStart(propagateScaled(in, start, stop))
	out.SetValid(true)
}

func propagateScaled(in *wbuf.Buffer, start, stop int) int {
	if cs := in.GetConstStart(); cs <= start {
		return start
	} else if cs < stop {
		return cs
	}
	return stop
}
