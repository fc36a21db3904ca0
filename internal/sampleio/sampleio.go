// Package sampleio decodes WAV sample data for the Sample and PADsynth
// processors, using go-audio/wav the way the teacher's getbpm package reads
// WAV headers and PCM payloads (spec §4.7 "Sample", "PADsynth").
package sampleio

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/kqcore/korender/internal/processor"
)

// DecodeWAV reads a complete WAV stream into a processor.SampleData,
// normalising integer PCM to [-1, 1] floats per channel.
func DecodeWAV(r io.Reader, refFreq float64) (*processor.SampleData, error) {
	ra, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, fmt.Errorf("sampleio: reader must support Seek for WAV decoding")
	}
	d := wav.NewDecoder(ra)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("sampleio: invalid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("sampleio: decode PCM: %w", err)
	}
	chans := buf.Format.NumChannels
	if chans <= 0 {
		chans = 1
	}
	frames := len(buf.Data) / chans
	out := make([][]float64, chans)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	maxVal := float64(int(1) << uint(buf.SourceBitDepth-1))
	if maxVal <= 0 {
		maxVal = 32768
	}
	for i, sample := range buf.Data {
		c := i % chans
		f := i / chans
		if f < frames {
			out[c][f] = float64(sample) / maxVal
		}
	}
	return &processor.SampleData{
		Frames:    out,
		RefFreq:   refFreq,
		LoopStart: -1,
		LoopEnd:   -1,
	}, nil
}
