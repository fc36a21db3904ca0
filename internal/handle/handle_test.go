package handle

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kqcore/korender/internal/connections"
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/player"
	"github.com/kqcore/korender/internal/voice"
)

type stubImpl struct{}

func (stubImpl) TypeTag() string { return "stub" }

func TestValidateRequiresConnections(t *testing.T) {
	h := New()
	err := h.Validate()
	assert.Error(t, err)
	assert.Equal(t, err.Error(), h.GetError())

	h.SetData("p_connections.json", []byte("[]"))
	assert.NoError(t, h.Validate())
}

func TestPlayFailsWithoutBoundPlayer(t *testing.T) {
	h := New()
	_, err := h.Play(64)
	assert.Error(t, err)
}

func TestPlayRendersThroughBoundPlayer(t *testing.T) {
	h := New()
	devices := map[string]*device.Device{"master": device.New(0, stubImpl{})}
	g, err := connections.Build(devices, "master", nil)
	assert.NoError(t, err)
	p := player.New(48000, 64, g, voice.NewPool(2, 64))
	h.BindPlayer(p)

	got, err := h.Play(64)
	assert.NoError(t, err)
	assert.Greater(t, got, 0)
}

func TestSetAudioRatePropagatesToBoundPlayer(t *testing.T) {
	h := New()
	devices := map[string]*device.Device{"master": device.New(0, stubImpl{})}
	g, _ := connections.Build(devices, "master", nil)
	p := player.New(48000, 64, g, voice.NewPool(2, 64))
	h.BindPlayer(p)

	h.SetAudioRate(44100)
	assert.Equal(t, 44100.0, p.AudioRate)
}

// Scenario 1: Silence. An empty graph with no triggers, master declaring
// both stereo output ports -- play(nframes) must report that many frames
// available and read back as all zeros on both channels.
func TestPlaySilenceMatchesFramesAvailableAndZeroAudio(t *testing.T) {
	h := New()
	masterDev := device.New(0, stubImpl{})
	masterDev.RecvPorts = device.PortSet(0).With(0).With(1)
	devices := map[string]*device.Device{"master": masterDev}
	g, err := connections.Build(devices, "master", nil)
	assert.NoError(t, err)
	p := player.New(48000, 128, g, voice.NewPool(2, 128))
	h.BindPlayer(p)

	got, err := h.Play(128)
	assert.NoError(t, err)
	assert.Equal(t, got, h.GetFramesAvailable())

	audio := h.GetAudio()
	assert.Len(t, audio, got*2)
	for _, s := range audio {
		assert.Equal(t, float32(0), s)
	}
}

func TestSaveSnapshotRoundTrip(t *testing.T) {
	h := New()
	h.SetData("p_connections.json", []byte("[]"))
	h.SetData("p_song.json", []byte(`{"tempo":120}`))

	path := filepath.Join(t.TempDir(), "handle.json.gz")
	assert.NoError(t, h.SaveSnapshot(path))

	h2 := New()
	assert.NoError(t, h2.LoadSnapshot(path))
	assert.NoError(t, h2.Validate())
}

func TestEnableAutoSavePersistsAfterDebounce(t *testing.T) {
	h := New()
	path := filepath.Join(t.TempDir(), "auto.json.gz")
	h.EnableAutoSave(path, 10*time.Millisecond)

	h.SetData("p_connections.json", []byte("[]"))
	time.Sleep(40 * time.Millisecond)

	h2 := New()
	assert.NoError(t, h2.LoadSnapshot(path))
	assert.NoError(t, h2.Validate())
}
