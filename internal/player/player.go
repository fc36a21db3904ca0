// Package player implements the pull-driven render loop: per render call it
// advances musical time by at most the requested frame count, firing any
// triggers whose timestamps fall in the window and rendering that window
// through the device graph (spec §4.9 "Player scheduling").
package player

import (
	"log"

	"github.com/kqcore/korender/internal/channel"
	"github.com/kqcore/korender/internal/connections"
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/event"
	"github.com/kqcore/korender/internal/master"
	"github.com/kqcore/korender/internal/pattern"
	"github.com/kqcore/korender/internal/streader"
	"github.com/kqcore/korender/internal/tstamp"
	"github.com/kqcore/korender/internal/voice"
	"github.com/kqcore/korender/internal/wbuf"
)

// Player owns the Master state, the device-state collection, the voice
// pool, and per-channel Cgiters (spec §1 "PURPOSE & SCOPE").
type Player struct {
	Master *master.State
	Graph  *connections.Graph
	Events *event.Table

	Channels []*channel.Channel
	Cgiters  []*pattern.Cgiter

	// ChannelProcs maps a channel number to the processor node names (keys
	// into Graph.Nodes) its currently selected instrument binds voices to,
	// root processor first. Populated by whatever owns instrument/channel
	// assignment (the model loader is out of this package's scope per spec
	// §1); note_on is a no-op for a channel with no entry here.
	ChannelProcs map[int][]string

	Voices    *voice.Pool
	AudioRate float64
	BufSize   int

	// LastRendered is the frame count produced by the most recent Render
	// call, read by a facade's get_frames_available (spec §6).
	LastRendered int

	states map[string]*device.State
}

// New creates a Player wired to an already-built device graph.
func New(audioRate float64, bufSize int, g *connections.Graph, voicePool *voice.Pool) *Player {
	p := &Player{
		Master:       master.New(),
		Graph:        g,
		Events:       event.NewTable(),
		ChannelProcs: map[int][]string{},
		Voices:       voicePool,
		AudioRate:    audioRate,
		BufSize:      bufSize,
		states:       map[string]*device.State{},
	}
	event.RegisterChannelEvents(p.Events)
	for name, n := range g.Nodes {
		p.states[name] = device.NewState(audioRate, bufSize, n.Dev.RecvPorts, n.Dev.SendPorts)
	}
	return p
}

// MasterBuffers returns the master sink's receive-port buffers for output
// ports 0 (left) and 1 (right), or nil where the bound graph's master
// device never declared that port (spec §2 step 3 "Copy the master
// output-port buffers to the caller's interleaved stereo audio buffer").
func (p *Player) MasterBuffers() (left, right *wbuf.Buffer) {
	st, ok := p.states[p.Graph.MasterName]
	if !ok {
		return nil, nil
	}
	return st.RecvBufs[0], st.RecvBufs[1]
}

// Render advances playback by up to nframes, firing triggers and rendering
// the graph, returning the number of frames actually produced (spec §4.9).
func (p *Player) Render(nframes int) int {
	rendered := 0
	for rendered < nframes && !p.Master.Stopped {
		window := nframes - rendered
		dist := windowAsTstamp(window, p.Master.Tempo.Value(), p.AudioRate)

		triggersFired := false
		for _, it := range p.Cgiters {
			if it.GetTriggerRow() {
				p.fireRow(it)
				triggersFired = true
			}
			rowDist := it.Peek(dist)
			if tstamp.Less(rowDist, dist) {
				dist = rowDist
			}
		}

		subFrames, carry := tstamp.ToFrames(dist, p.Master.Tempo.Value(), p.AudioRate, p.Master.FrameRemainder())
		p.Master.SetFrameRemainder(carry)

		if subFrames == 0 && !triggersFired {
			p.advanceOrStop()
			continue
		}
		if subFrames > int64(window) {
			subFrames = int64(window)
		}
		p.renderGraph(rendered, rendered+int(subFrames))
		for _, it := range p.Cgiters {
			it.Move(dist)
		}
		rendered += int(subFrames)
	}
	p.LastRendered = rendered
	return rendered
}

// FireEvent dispatches one out-of-band trigger (spec §6 "fire_event") at
// the given channel, bypassing the per-row Cgiter scan: eventJSON is the
// full `[name, arg]` (or `[name]`) event literal, as fire_event's caller
// supplies it.
func (p *Player) FireEvent(channelNum int, eventJSON []byte) {
	if channelNum < 0 || channelNum >= len(p.Channels) {
		return
	}
	kind, arg := decodeTriggerJSON(eventJSON)
	p.dispatchTrigger(p.Channels[channelNum], pattern.Trigger{Kind: kind, Arg: arg})
}

// decodeTriggerJSON splits a `[name, arg]` event literal into its name and
// the literal bytes of its argument (nil for a bare `[name]`).
func decodeTriggerJSON(raw []byte) (kind string, arg []byte) {
	i := 0
	streader.New(raw).ReadList(func(elem *streader.Reader) bool {
		switch i {
		case 0:
			kind = elem.ReadString()
		case 1:
			arg = elem.Raw()
		}
		i++
		return true
	})
	return kind, arg
}

// windowAsTstamp converts a frame window to the maximum musical-time
// distance it could represent at the current tempo (spec §4.9 step 1).
func windowAsTstamp(window int, tempo, audioRate float64) tstamp.Tstamp {
	return tstamp.FromFrames(int64(window), tempo, audioRate)
}

// advanceOrStop handles the "no frames to render and nothing fired" case:
// either there is a next pattern to move into, or playback halts.
func (p *Player) advanceOrStop() {
	allAtEnd := true
	for _, it := range p.Cgiters {
		if !it.AtEnd() {
			allAtEnd = false
		}
	}
	if allAtEnd {
		// Nothing left to render this call. Stopped halts the loop at once;
		// no fade-out ramp is applied to the rendered output (FadeGain is
		// not called).
		p.Master.RequestStop()
		p.Master.Stopped = true
	}
}

// fireRow fires every trigger at it's current row in column-index order
// (the iterator itself is scoped to one column, so ordering across columns
// is the caller's responsibility via Cgiters slice order; spec §4.8
// "Trigger ordering").
func (p *Player) fireRow(it *pattern.Cgiter) {
	ch := p.channelFor(it)
	if ch == nil {
		return
	}
	for _, trig := range it.TriggersAtRow() {
		p.dispatchTrigger(ch, trig)
	}
}

// channelFor resolves the Channel bound to a Cgiter's column, by index into
// Channels (spec §3 "Channel" is one per pattern column).
func (p *Player) channelFor(it *pattern.Cgiter) *channel.Channel {
	col := it.Column()
	if col < 0 || col >= len(p.Channels) {
		return nil
	}
	return p.Channels[col]
}

// dispatchTrigger routes one trigger to its handler: note_on/note_off need
// the voice pool, so the Player handles them directly (spec §4.8
// "note_on"/"note_off"); everything else goes through the channel-category
// dispatch table (spec §4.8 "Event handler").
func (p *Player) dispatchTrigger(ch *channel.Channel, t pattern.Trigger) {
	switch t.Kind {
	case "n+":
		p.noteOn(ch, t.Arg)
	case "n-":
		p.noteOff(ch)
	default:
		if err := p.Events.Fire(event.CategoryChannel, t.Kind, t.Arg, ch); err != nil {
			log.Printf("player: channel %d trigger %q: %v", ch.Num, t.Kind, err)
		}
	}
}

// noteOn reserves a voice group for the channel's currently selected
// instrument (ChannelProcs[ch.Num], root processor first), applies any
// carried pitch/force slide targets, and initialises each voice (spec §4.8
// "note_on(pitch)").
func (p *Player) noteOn(ch *channel.Channel, arg []byte) {
	if p.Voices == nil {
		return
	}
	procs := p.ChannelProcs[ch.Num]
	if len(procs) == 0 {
		return
	}
	pitch := streader.New(arg).ReadFloat()
	if target, carrying := ch.CarryPitchTarget(); carrying {
		pitch = target
	}
	force, carryForce := ch.CarryForceTarget()

	var groupID uint64
	for i, name := range procs {
		n, ok := p.Graph.Nodes[name]
		if !ok {
			log.Printf("player: note_on channel %d: unknown processor %q", ch.Num, name)
			continue
		}
		v := p.Voices.Reserve(groupID, ch.Num, i == 0)
		groupID = v.GroupID
		v.State.PitchCents = pitch
		if carryForce {
			v.State.ForceDB = force
		}
		if vc, ok := n.Dev.Impl.(device.VoiceCapable); ok {
			vc.BindVoice(v)
		}
		v.ProcID = n.Dev.ID
		v.State.Active = true
		v.State.NoteOn = true
		if v.State.Init != nil {
			v.State.Init(v)
		}
		v.Priority = voice.Foreground
	}
	p.Voices.Rebalance()
	ch.GroupID = groupID
}

// noteOff demotes the channel's active voice group to background priority
// (spec §4.8 "note_off").
func (p *Player) noteOff(ch *channel.Channel) {
	if p.Voices == nil || ch.GroupID == 0 {
		return
	}
	p.Voices.Demote(ch.GroupID)
}

// renderGraph walks the device graph, mixing sender outputs into each
// node's receive buffers and invoking its mixed-render or voice-render
// path, over the local window [start, stop) of the shared work buffers
// (spec §4.4 rendering traversal; §4.6 voice-state rendering).
func (p *Player) renderGraph(start, stop int) {
	p.Graph.Traverse(func(n *connections.Node) {
		st := p.states[n.Name]
		for port, edges := range n.Recv {
			dst, ok := st.RecvBufs[port]
			if !ok {
				continue
			}
			dst.Clear(start, stop)
			for _, e := range edges {
				srcSt := p.states[e.SenderNode.Name]
				src, ok := srcSt.SendBufs[e.SenderPort]
				if !ok {
					continue
				}
				wbuf.Mix(dst, src, start, stop)
			}
			dst.SetValid(true)
		}
		if mr, ok := n.Dev.Impl.(device.MixedRenderer); ok {
			mr.MixedRender(st.RecvBufs, st.SendBufs, start, stop)
			return
		}
		p.renderVoicesFor(n, st, start, stop)
	})
}

// renderVoicesFor mixes every active voice bound to this processor device
// into its send buffers (spec §4.6).
func (p *Player) renderVoicesFor(n *connections.Node, st *device.State, start, stop int) {
	if p.Voices == nil {
		return
	}
	for port := range st.SendBufs {
		st.SendBufs[port].Clear(start, stop)
	}
	rampFrames := int(p.AudioRate * 0.002)
	p.Voices.ForEachActive(func(v *voice.Voice) {
		if v.ProcID != n.Dev.ID {
			return
		}
		ctx := &voice.RenderContext{
			BufStart: start, BufStop: stop, AudioRate: p.AudioRate,
			Recv: st.RecvBufs, Send: st.SendBufs,
		}
		voice.RenderOne(v, ctx, rampFrames)
	})
}
