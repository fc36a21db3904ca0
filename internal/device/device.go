// Package device implements the Device / Device-impl / Device-state /
// Device-thread-state layer shared by every processor and audio-unit (spec
// §3, "Device / Device-impl", "Device-state", "Device-thread-state"; §9
// "Cyclic type graph" design note).
//
// Per the §9 re-architecture note, Device-impl is modelled as a tagged
// variant rather than a C-style parent-pointer hierarchy: Impl is a thin
// capability interface, and concrete processor/audio-unit types live in
// their own packages to avoid an import cycle back into device.
package device

import (
	"fmt"

	"github.com/kqcore/korender/internal/voice"
	"github.com/kqcore/korender/internal/wbuf"
)

// PortsMax bounds the number of receive or send ports a single device may
// declare (DEVICE_PORTS_MAX in the glossary).
const PortsMax = 64

// PortSet is a bitmap of port existence, indexed 0..PortsMax-1.
type PortSet uint64

// Has reports whether port p exists in the set.
func (s PortSet) Has(p int) bool {
	if p < 0 || p >= PortsMax {
		return false
	}
	return s&(1<<uint(p)) != 0
}

// With returns s with port p added.
func (s PortSet) With(p int) PortSet {
	if p < 0 || p >= PortsMax {
		return s
	}
	return s | (1 << uint(p))
}

// Impl is the capability every Device-impl variant (processor or
// audio-unit) must provide.
type Impl interface {
	// TypeTag names the concrete kind, e.g. "volume" or "audio_unit".
	TypeTag() string
}

// MixedRenderer is satisfied by Device-impl variants with a mixed-signal
// render path (volume, panning, slope, compress, stream): they read their
// receive ports and write their send ports directly, with no voice pool
// involved (spec §4.4, mixed-signal traversal).
type MixedRenderer interface {
	MixedRender(recv, send map[int]*wbuf.Buffer, start, stop int)
}

// VoiceCapable is satisfied by Device-impl variants that can be bound into
// a voice-group: reserving a voice for this processor installs Render/Init
// onto the Voice's State (spec §4.5 "Reservation from a channel").
type VoiceCapable interface {
	BindVoice(v *voice.Voice)
}

// Device is one node's identity, port surface, and concrete implementation.
type Device struct {
	ID         uint32
	Exists     bool
	RecvPorts  PortSet
	SendPorts  PortSet
	Impl       Impl
	Params     *ParamStore
	NewState   func(audioRate float64, bufSize int) *State
}

// New creates a Device with no ports and an empty param store.
func New(id uint32, impl Impl) *Device {
	return &Device{ID: id, Exists: true, Impl: impl, Params: NewParamStore()}
}

// State is one (device x player) instance: audio rate, buffer size, and the
// per-port Work buffers for the mixed-signal path.
type State struct {
	AudioRate  float64
	BufSize    int
	RecvBufs   map[int]*wbuf.Buffer
	SendBufs   map[int]*wbuf.Buffer
	Extra      interface{} // processor-specific mixed-signal state
}

// NewState allocates a State with recv/send buffers for the given port sets.
func NewState(audioRate float64, bufSize int, recv, send PortSet) *State {
	s := &State{AudioRate: audioRate, BufSize: bufSize, RecvBufs: map[int]*wbuf.Buffer{}, SendBufs: map[int]*wbuf.Buffer{}}
	for p := 0; p < PortsMax; p++ {
		if recv.Has(p) {
			s.RecvBufs[p] = wbuf.New(bufSize)
		}
		if send.Has(p) {
			s.SendBufs[p] = wbuf.New(bufSize)
		}
	}
	return s
}

// ThreadState is one (device x worker-thread) instance: per-voice scratch
// buffers and the sticky "mixed audio produced" flag.
type ThreadState struct {
	VoiceBufs         map[int]*wbuf.Buffer
	MixedAudioProduced bool
}

// NewThreadState allocates per-voice scratch buffers for the given send set.
func NewThreadState(bufSize int, send PortSet) *ThreadState {
	ts := &ThreadState{VoiceBufs: map[int]*wbuf.Buffer{}}
	for p := 0; p < PortsMax; p++ {
		if send.Has(p) {
			ts.VoiceBufs[p] = wbuf.New(bufSize)
		}
	}
	return ts
}

// ParamStore is the flat key -> typed-value Device-params mapping, the
// in-memory analogue of the model's `p_*` keys.
type ParamStore struct {
	values map[string]interface{}
}

// NewParamStore creates an empty store.
func NewParamStore() *ParamStore { return &ParamStore{values: map[string]interface{}{}} }

// Set installs a typed value under key (e.g. "p_f_volume").
func (p *ParamStore) Set(key string, value interface{}) { p.values[key] = value }

// Float returns the float64 at key, or def if absent/wrong type.
func (p *ParamStore) Float(key string, def float64) float64 {
	if v, ok := p.values[key].(float64); ok {
		return v
	}
	return def
}

// Int returns the int64 at key, or def if absent/wrong type.
func (p *ParamStore) Int(key string, def int64) int64 {
	if v, ok := p.values[key].(int64); ok {
		return v
	}
	return def
}

// Bool returns the bool at key, or def if absent/wrong type.
func (p *ParamStore) Bool(key string, def bool) bool {
	if v, ok := p.values[key].(bool); ok {
		return v
	}
	return def
}

// String returns the string at key, or def if absent/wrong type.
func (p *ParamStore) String(key string, def string) string {
	if v, ok := p.values[key].(string); ok {
		return v
	}
	return def
}

// Any returns the raw value at key and whether it was present, for
// processor-specific typed values (envelopes, note maps, sample headers).
func (p *ParamStore) Any(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (d *Device) String() string {
	tag := "<nil>"
	if d.Impl != nil {
		tag = d.Impl.TypeTag()
	}
	return fmt.Sprintf("device#%d(%s)", d.ID, tag)
}
