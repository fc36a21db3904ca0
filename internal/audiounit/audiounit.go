// Package audiounit implements the composite Device-impl variant that owns
// a nested Connections graph, a table of processors, a table of nested
// audio-units, and the two interface devices that expose its external
// ports internally (spec §3 "Audio-unit"; §4.4).
package audiounit

import (
	"fmt"

	"github.com/kqcore/korender/internal/connections"
	"github.com/kqcore/korender/internal/device"
)

// ProcessorsMax bounds the number of processors one audio-unit may hold
// (PROCESSORS_MAX in the glossary).
const ProcessorsMax = 64

// Kind distinguishes an instrument (voice-producing root) from an effect
// (mixed-signal processing only), per spec §3.
type Kind int

const (
	KindInstrument Kind = iota
	KindEffect
)

// StreamMapEntry binds a channel-visible stream name to a processor inside
// this unit's Proc-table, resolved by set_stream_value and friends (spec
// §4.8).
type StreamMapEntry struct {
	Name string
	Proc string // key into Procs
}

// AudioUnit is a composite device: its own nested graph of processors and
// sub-units, wired between an input interface and an output interface.
type AudioUnit struct {
	Kind Kind

	Procs map[string]*device.Device // processor name -> device
	Units map[string]*device.Device // nested audio-unit name -> device

	In  *device.Device // interface device exposing external recv ports internally
	Out *device.Device // interface device exposing external send ports internally

	Graph *connections.Graph

	StreamMap      []StreamMapEntry
	ExpressionFilt []string // empty = unfiltered
}

// IsAudioUnit satisfies the duck-typed capability connections.Build uses to
// classify a Device-node as NodeAudioUnit without importing this package.
func (a *AudioUnit) IsAudioUnit() bool { return true }

// TypeTag identifies the concrete Device-impl kind.
func (a *AudioUnit) TypeTag() string {
	if a.Kind == KindInstrument {
		return "audio_unit:instrument"
	}
	return "audio_unit:effect"
}

var _ device.Impl = (*AudioUnit)(nil)

// New creates an empty AudioUnit of the given kind with interface devices
// already allocated (but no ports declared yet -- callers add ports to
// a.In/a.Out to match the containing connections.Spec list).
func New(kind Kind) *AudioUnit {
	return &AudioUnit{
		Kind:  kind,
		Procs: map[string]*device.Device{},
		Units: map[string]*device.Device{},
		In:    device.New(0, ifaceImpl{"in"}),
		Out:   device.New(0, ifaceImpl{"out"}),
	}
}

type ifaceImpl struct{ tag string }

func (i ifaceImpl) TypeTag() string { return "interface:" + i.tag }

// AddProcessor registers a processor device under name, growing the
// Proc-table up to ProcessorsMax.
func (a *AudioUnit) AddProcessor(name string, dev *device.Device) error {
	if len(a.Procs) >= ProcessorsMax {
		return fmt.Errorf("audiounit: proc-table full (max %d)", ProcessorsMax)
	}
	a.Procs[name] = dev
	return nil
}

// AddUnit registers a nested audio-unit device under name.
func (a *AudioUnit) AddUnit(name string, dev *device.Device) {
	a.Units[name] = dev
}

// Build assembles this unit's nested Connections graph from edge specs,
// treating "in"/"out" as the reserved names for the interface devices
// (spec §4.4).
func (a *AudioUnit) Build(specs []connections.Spec) error {
	devices := map[string]*device.Device{"in": a.In, "out": a.Out}
	for name, d := range a.Procs {
		devices[name] = d
	}
	for name, d := range a.Units {
		devices[name] = d
	}
	g, err := connections.Build(devices, "out", specs)
	if err != nil {
		return err
	}
	a.Graph = g
	return nil
}

// ResolveStream finds the processor device bound to a channel stream name
// via this unit's stream map, per the set_stream_value family of events
// (spec §4.8).
func (a *AudioUnit) ResolveStream(name string) (*device.Device, bool) {
	for _, e := range a.StreamMap {
		if e.Name == name {
			d, ok := a.Procs[e.Proc]
			return d, ok
		}
	}
	return nil, false
}

// PassesExpressionFilter reports whether a voice whose active expression
// name is expr may render through this unit's voice chain (spec §4.6
// "Expression filtering"). An empty filter list passes everything.
func (a *AudioUnit) PassesExpressionFilter(expr string) bool {
	if len(a.ExpressionFilt) == 0 {
		return true
	}
	for _, e := range a.ExpressionFilt {
		if e == expr {
			return true
		}
	}
	return false
}
