// Package voice implements the bounded voice pool, min-heap priority
// reclamation, and per-voice rendering contract shared by every
// voice-capable processor (spec §3 "Voice"/"Voice-state"/"Voice-group";
// §4.5 "Voice pool and allocation"; §4.6 "Voice-state rendering").
package voice

import (
	"container/heap"

	"github.com/kqcore/korender/internal/krandom"
	"github.com/kqcore/korender/internal/wbuf"
)

// Priority orders voices for preemption: inactive < background < foreground < new.
type Priority int

const (
	Inactive Priority = iota
	Background
	Foreground
	New
)

// RenderFunc is the per-processor voice render function, stored on the
// Voice's State so the pool dispatches uniformly without switching on
// processor kind (§9 "Function-pointer dispatch inside Voice-state").
type RenderFunc func(v *Voice, ctx *RenderContext) int

// InitFunc initialises a voice's processor-specific tail state for a new
// note.
type InitFunc func(v *Voice)

// RenderContext carries one sub-chunk's rendering window and the bound
// processor's receive/send Work buffers into a voice render call.
type RenderContext struct {
	BufStart, BufStop int
	AudioRate         float64
	Recv              map[int]*wbuf.Buffer
	Send              map[int]*wbuf.Buffer
}

// State is the header common to all processors, followed by a
// processor-specific Tail (the Go analogue of the C arena's variable-size
// trailing struct).
type State struct {
	Active        bool
	NoteOn        bool
	KeepAliveStop int
	RampAttack    int // frames of ramp-attack already applied
	HitIndex      int
	PosFrames     int64
	ReleaseFrames int64

	PitchCents float64
	ForceDB    float64
	Panning    float64

	ExpressionFilter []string // note/channel expression names this voice answers to

	Render RenderFunc
	Init   InitFunc
	Tail   interface{}
}

// Voice is one fixed-pool slot.
type Voice struct {
	GroupID     uint64
	Channel     int
	Priority    Priority
	FrameOffset int
	ProcID      uint32 // bound processor device id; 0 = group placeholder
	IsRoot      bool   // designated root producer of its group

	State State

	ParamRand  *krandom.Source
	SignalRand *krandom.Source
	Buf        *wbuf.Buffer

	index int // heap bookkeeping
	age   uint64
}

// Pool is the fixed-size array of Voice slots plus a min-heap on priority.
type Pool struct {
	voices     []*Voice
	h          voiceHeap
	nextGroup  uint64
	nextAge    uint64
}

// NewPool allocates a pool of size voicesMax, each with a bufSize Work buffer.
func NewPool(voicesMax, bufSize int) *Pool {
	p := &Pool{voices: make([]*Voice, voicesMax)}
	for i := range p.voices {
		v := &Voice{Buf: wbuf.New(bufSize), index: i}
		p.voices[i] = v
		p.h = append(p.h, v)
	}
	heap.Init(&p.h)
	return p
}

// Len returns the pool's fixed capacity.
func (p *Pool) Len() int { return len(p.voices) }

// IsValidHeap reports whether the pool's heap currently satisfies the
// min-heap invariant (spec §8).
func (p *Pool) IsValidHeap() bool {
	return heapCheck(p.h)
}

func heapCheck(h voiceHeap) bool {
	n := len(h)
	for i := 0; i < n; i++ {
		l, r := 2*i+1, 2*i+2
		if l < n && h.Less(l, i) {
			return false
		}
		if r < n && h.Less(r, i) {
			return false
		}
	}
	return true
}

// Reserve pops the lowest-priority voice (the heap root), preempts it if it
// was active, and marks it priority New bound to the given group/channel.
// If groupID is 0, a fresh monotonic group id is allocated (this voice is
// the first reservation for a new note-on); otherwise the voice joins the
// existing group.
func (p *Pool) Reserve(groupID uint64, channel int, isRoot bool) *Voice {
	v := p.h[0]
	v.State = State{}
	v.Priority = New
	v.Channel = channel
	v.IsRoot = isRoot
	p.nextAge++
	v.age = p.nextAge
	if groupID == 0 {
		p.nextGroup++
		v.GroupID = p.nextGroup
	} else {
		v.GroupID = groupID
	}
	heap.Fix(&p.h, 0)
	return v
}

// NextGroupID previews the group id that would be allocated by the next
// root reservation, without consuming it.
func (p *Pool) NextGroupID() uint64 { return p.nextGroup + 1 }

// Rebalance re-establishes the heap invariant after priorities have changed
// (e.g. a note_off demoted a voice, or a voice went inactive).
func (p *Pool) Rebalance() {
	heap.Init(&p.h)
}

// Demote lowers every live voice in groupID from Foreground to Background,
// as on note_off (spec §4.8).
func (p *Pool) Demote(groupID uint64) {
	for _, v := range p.voices {
		if v.GroupID == groupID && v.Priority == Foreground {
			v.Priority = Background
		}
	}
	p.Rebalance()
}

// ReclaimEndedGroups deactivates every voice whose group's root producer has
// gone inactive this cycle (spec §4.5 "Group lifetime").
func (p *Pool) ReclaimEndedGroups() {
	rootEnded := map[uint64]bool{}
	for _, v := range p.voices {
		if v.IsRoot && v.GroupID != 0 && !v.State.Active {
			rootEnded[v.GroupID] = true
		}
	}
	if len(rootEnded) == 0 {
		return
	}
	for _, v := range p.voices {
		if rootEnded[v.GroupID] {
			v.State.Active = false
			v.Priority = Inactive
			v.GroupID = 0
		}
	}
	p.Rebalance()
}

// ForEachInGroup calls fn for every voice currently carrying groupID.
func (p *Pool) ForEachInGroup(groupID uint64, fn func(v *Voice)) {
	if groupID == 0 {
		return
	}
	for _, v := range p.voices {
		if v.GroupID == groupID {
			fn(v)
		}
	}
}

// ForEachActive calls fn for every voice with Priority != Inactive.
func (p *Pool) ForEachActive(fn func(v *Voice)) {
	for _, v := range p.voices {
		if v.Priority != Inactive {
			fn(v)
		}
	}
}

// RenderOne invokes a voice's render function over [ctx.BufStart,
// ctx.BufStop), applies ramp-attack, and honours keep_alive_stop (spec
// §4.6).
func RenderOne(v *Voice, ctx *RenderContext, rampFrames int) {
	if v.State.Render == nil || !v.State.Active {
		return
	}
	end := v.State.Render(v, ctx)
	applyRampAttack(v, ctx, rampFrames)
	if end < ctx.BufStop {
		v.State.Active = false
		v.Priority = Inactive
	}
}

func applyRampAttack(v *Voice, ctx *RenderContext, rampFrames int) {
	if v.State.RampAttack >= rampFrames {
		return
	}
	for _, send := range ctx.Send {
		c := send.GetContentsMut()
		for i := ctx.BufStart; i < ctx.BufStop && v.State.RampAttack < rampFrames; i++ {
			gain := float64(v.State.RampAttack+1) / float64(rampFrames)
			c[i] *= gain
			v.State.RampAttack++
		}
	}
}

// voiceHeap implements container/heap.Interface, ordered by
// (priority ascending, age ascending) so ties break FIFO and the lowest
// priority class is always the root.
type voiceHeap []*Voice

func (h voiceHeap) Len() int { return len(h) }
func (h voiceHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].age < h[j].age
}
func (h voiceHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *voiceHeap) Push(x interface{}) {
	v := x.(*Voice)
	v.index = len(*h)
	*h = append(*h, v)
}
func (h *voiceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
