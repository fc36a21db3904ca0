// Package handle implements the public facade over the core: the thin
// surface a control thread calls into (new_Handle, set_data, validate,
// fire_event, play, get_audio, get_error), decoupled from the audio
// thread's render loop (spec §6 "EXTERNAL INTERFACES"; §5 "Scheduling
// model"). The file-format loader that turns set_data's raw model keys
// into a built device graph is an explicit Non-goal of the core (spec §1);
// this package stores raw keys and exposes BindPlayer for the caller that
// does own graph construction to attach a ready Player.
package handle

import (
	"fmt"
	"sync"
	"time"

	"github.com/kqcore/korender/internal/master"
	"github.com/kqcore/korender/internal/player"
	"github.com/kqcore/korender/internal/snapshot"
)

// ErrKind tags the handle's last-error slot (spec §7).
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrValidation
	ErrIO
	ErrUnexpected
)

// Error is the tagged error surfaced by get_error.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("handle: %s", e.Msg) }

// Handle is the opaque object the public API operates on.
type Handle struct {
	mu sync.Mutex

	keys map[string][]byte // raw set_data entries, keyed by slash-delimited path

	audioRate    float64
	bufferSize   int
	mixingVolume float64

	player  *player.Player
	lastErr *Error

	pendingEvents []pendingEvent

	autosave *snapshot.AutoSaver
}

type pendingEvent struct {
	channel int
	raw     []byte
}

// New creates an empty Handle (spec "new_Handle").
func New() *Handle {
	return &Handle{
		keys:         map[string][]byte{},
		audioRate:    48000,
		bufferSize:   2048,
		mixingVolume: 0,
	}
}

// SetData installs one model entry by its slash-delimited key (spec
// "set_data").
func (h *Handle) SetData(key string, data []byte) {
	h.mu.Lock()
	h.keys[key] = append([]byte(nil), data...)
	as := h.autosave
	h.mu.Unlock()

	if as != nil {
		as.Trigger(h.snapshotKeys)
	}
}

// snapshotKeys returns a defensive copy of the raw key map, for AutoSaver's
// deferred-fetch-at-fire-time contract.
func (h *Handle) snapshotKeys() map[string][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string][]byte, len(h.keys))
	for k, v := range h.keys {
		out[k] = v
	}
	return out
}

// EnableAutoSave starts debounced persistence of every SetData call to
// path, coalescing writes within debounce of each other.
func (h *Handle) EnableAutoSave(path string, debounce time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.autosave = snapshot.NewAutoSaver(path, debounce)
}

// SaveSnapshot writes the current key map to path immediately, bypassing
// any autosave debounce.
func (h *Handle) SaveSnapshot(path string) error {
	return snapshot.Save(path, h.snapshotKeys())
}

// LoadSnapshot replaces the key map with the contents of path.
func (h *Handle) LoadSnapshot(path string) error {
	keys, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = keys
	return nil
}

// Validate checks the minimal structural invariant this facade can verify
// without a full model loader: that a global connection list key is
// present. A failure is recorded in the error slot GetError reads; any
// richer validation belongs to the caller doing real graph construction.
func (h *Handle) Validate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.keys["p_connections.json"]; !ok {
		err := &Error{Kind: ErrValidation, Msg: "missing p_connections.json"}
		h.lastErr = err
		return err
	}
	h.lastErr = nil
	return nil
}

// BindPlayer attaches a fully constructed Player (device graph, channels,
// voice pool already wired) so Play/GetAudio have something to drive. The
// caller is responsible for building that Player from the keys installed
// via SetData.
func (h *Handle) BindPlayer(p *player.Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.player = p
}

// SetAudioRate / GetAudioRate set and read the target sample rate (spec
// "set_audio_rate", "get_audio_rate"). Changes take effect at the next
// sub-chunk boundary per spec §4.9 "Tempo/rate changes".
func (h *Handle) SetAudioRate(rate float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.audioRate = rate
	if h.player != nil {
		h.player.AudioRate = rate
	}
}

func (h *Handle) GetAudioRate() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.audioRate
}

// SetAudioBufferSize records a buffer size on the handle. Play does not
// consult it: the frame count passed to Play goes to the Player unclamped.
func (h *Handle) SetAudioBufferSize(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bufferSize = n
}

// SetMixingVolume sets the final-mix dB trim: it is stored on the handle
// and, when a Player is bound, installed as the Master state's Volume. The
// render loop does not scale the output by it.
func (h *Handle) SetMixingVolume(db float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mixingVolume = db
	if h.player != nil {
		h.player.Master.Volume.Start(db, db, 0)
	}
}

// FireEvent injects a trigger at the current render position (spec
// "fire_event"). The raw JSON is queued and consumed by the next Play call,
// matching the "render-input queue ... drained by audio at chunk
// boundaries" concurrency model (spec §5).
func (h *Handle) FireEvent(channel int, eventJSON []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingEvents = append(h.pendingEvents, pendingEvent{channel: channel, raw: eventJSON})
}

// Play renders up to nframes into the internal output buffer and returns
// the number of frames actually produced (spec "play").
func (h *Handle) Play(nframes int) (int, error) {
	h.mu.Lock()
	p := h.player
	pending := h.pendingEvents
	h.pendingEvents = nil
	h.mu.Unlock()

	if p == nil {
		err := &Error{Kind: ErrUnexpected, Msg: "play called before a Player was bound"}
		h.setLastErr(err)
		return 0, err
	}
	for _, ev := range pending {
		p.FireEvent(ev.channel, ev.raw)
	}
	return p.Render(nframes), nil
}

// GetFramesAvailable reports how many rendered frames are waiting to be
// read via GetAudio. This facade renders synchronously inside Play, so the
// answer is always the frame count from the last Play call.
func (h *Handle) GetFramesAvailable() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return 0
	}
	return h.player.LastRendered
}

// GetAudio reads the interleaved stereo result of the last Play call by
// copying the bound Player's master output-port buffers (spec §2 step 3;
// §6 "get_audio"). A master output port that was never declared reads back
// as silence.
func (h *Handle) GetAudio() []float32 {
	h.mu.Lock()
	p := h.player
	h.mu.Unlock()
	if p == nil {
		return nil
	}
	n := p.LastRendered
	left, right := p.MasterBuffers()
	out := make([]float32, n*2)
	var lc, rc []float64
	if left != nil {
		lc = left.GetContents()
	}
	if right != nil {
		rc = right.GetContents()
	}
	for i := 0; i < n; i++ {
		if i < len(lc) {
			out[2*i] = float32(lc[i])
		}
		if i < len(rc) {
			out[2*i+1] = float32(rc[i])
		}
	}
	return out
}

// GetError returns the last error as a tagged string (spec "get_error").
func (h *Handle) GetError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastErr == nil {
		return ""
	}
	return h.lastErr.Error()
}

func (h *Handle) setLastErr(e *Error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastErr = e
}

// MasterState exposes the bound Player's Master state for callers that
// need direct access to tempo/position (e.g. CLI progress reporting).
func (h *Handle) MasterState() *master.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return nil
	}
	return h.player.Master
}
