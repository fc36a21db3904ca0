package sampleio

import (
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
)

func encodeFixture(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.wav")
	assert.NoError(t, err)

	enc := wav.NewEncoder(f, 48000, 16, 1, 1)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 48000},
		Data:           []int{0, 16384, -16384, 32767},
		SourceBitDepth: 16,
	}
	assert.NoError(t, enc.Write(ib))
	assert.NoError(t, enc.Close())

	_, err = f.Seek(0, 0)
	assert.NoError(t, err)
	return f
}

func TestDecodeWAVNormalisesToFloat(t *testing.T) {
	f := encodeFixture(t)
	defer f.Close()

	data, err := DecodeWAV(f, 440)
	assert.NoError(t, err)
	assert.Len(t, data.Frames, 1)
	assert.Len(t, data.Frames[0], 4)
	assert.InDelta(t, 0.0, data.Frames[0][0], 1e-6)
	assert.InDelta(t, 32767.0/32768.0, data.Frames[0][3], 1e-6)
	assert.Equal(t, 440.0, data.RefFreq)
}
