package processor

import (
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/kmath"
	"github.com/kqcore/korender/internal/wbuf"
)

// Panning reads a pan angle in [-1, 1] from its control port and applies
// the (1-pan, 1+pan) gain pair to produce stereo output from a mono input
// (spec §4.7).
type Panning struct {
	base
	Params *device.ParamStore
}

func NewPanning() *Panning {
	return &Panning{base: base{typeTag: "panning"}, Params: device.NewParamStore()}
}

var (
	_ device.Impl          = (*Panning)(nil)
	_ device.MixedRenderer = (*Panning)(nil)
)

const (
	PortPanAudioRecv = 0
	PortPanCtrlRecv  = 1
	PortPanLeftSend  = 0
	PortPanRightSend = 1
)

func (p *Panning) MixedRender(recv, send map[int]*wbuf.Buffer, start, stop int) {
	audioIn, ok := recv[PortPanAudioRecv]
	left, okL := send[PortPanLeftSend]
	right, okR := send[PortPanRightSend]
	if !ok || !okL || !okR || !wbuf.IsValid(audioIn) {
		return
	}
	pan := p.Params.Float("p_f_panning", 0)
	ctrl := recv[PortPanCtrlRecv]
	src := audioIn.GetContents()
	l := left.GetContentsMut()
	r := right.GetContentsMut()
	for i := start; i < stop; i++ {
		a := pan
		if wbuf.IsValid(ctrl) {
			a = ctrl.GetContents()[i]
		}
		a = kmath.Clamp(a, -1, 1)
		l[i] = src[i] * (1 - a)
		r[i] = src[i] * (1 + a)
	}
	left.SetValid(true)
	right.SetValid(true)
}
