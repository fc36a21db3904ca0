// Package telemetry broadcasts a playback-state snapshot over OSC for
// external monitors (a debug/UI concern outside the core render path),
// grounded on the teacher's go-osc client usage in its instrument/sampler
// messaging (spec §5 "a playback-state snapshot read by control").
package telemetry

import (
	"github.com/hypebeast/go-osc/osc"

	"github.com/kqcore/korender/internal/master"
)

// Snapshot is the subset of Master state worth broadcasting to an external
// monitor: position, tempo, and transport flags.
type Snapshot struct {
	Track       int
	BeatsPos    float64
	TempoBPM    float64
	VolumeDB    float64
	Paused      bool
	Stopped     bool
}

// Broadcaster sends Snapshots as OSC messages to a fixed address.
type Broadcaster struct {
	client *osc.Client
	prefix string
}

// NewBroadcaster dials an OSC client at host:port; addresses are sent under
// prefix (e.g. "/kqcore/playback").
func NewBroadcaster(host string, port int, prefix string) *Broadcaster {
	return &Broadcaster{client: osc.NewClient(host, port), prefix: prefix}
}

// Send snapshots the given Master state and emits one OSC message.
func (b *Broadcaster) Send(s *master.State) error {
	snap := Snapshot{
		Track:    s.Track,
		BeatsPos: s.Position.ToFloatBeats(),
		TempoBPM: s.Tempo.Value(),
		VolumeDB: s.Volume.Value(),
		Paused:   s.Paused,
		Stopped:  s.Stopped,
	}
	msg := osc.NewMessage(b.prefix + "/snapshot")
	msg.Append(int32(snap.Track))
	msg.Append(float32(snap.BeatsPos))
	msg.Append(float32(snap.TempoBPM))
	msg.Append(float32(snap.VolumeDB))
	msg.Append(snap.Paused)
	msg.Append(snap.Stopped)
	return b.client.Send(msg)
}
