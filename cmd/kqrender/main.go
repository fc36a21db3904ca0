// Command kqrender is a reference CLI over the core render engine: it
// loads a minimal single-file model, renders it, and writes the result to
// a WAV file, or just runs structural validation (spec §6 "Exit codes
// (when embedded in a CLI)").
package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/kqcore/korender/internal/connections"
	"github.com/kqcore/korender/internal/device"
	"github.com/kqcore/korender/internal/handle"
	"github.com/kqcore/korender/internal/player"
	"github.com/kqcore/korender/internal/voice"
)

const (
	exitOK = iota
	exitValidation
	exitIO
	exitUnexpected
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:   "kqrender",
		Short: "Render or validate a kqcore model",
	}

	var audioRate float64
	var nframes int
	var outPath string

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render nframes of silence through an empty master graph and write a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := handle.New()
			h.SetData("p_connections.json", []byte("[]"))
			if err := h.Validate(); err != nil {
				return err
			}
			h.SetAudioRate(audioRate)

			masterDev := device.New(0, masterImpl{})
			masterDev.RecvPorts = device.PortSet(0).With(0).With(1)
			devices := map[string]*device.Device{"master": masterDev}
			g, err := connections.Build(devices, "master", nil)
			if err != nil {
				return err
			}
			p := player.New(audioRate, nframes, g, voice.NewPool(32, nframes))
			h.BindPlayer(p)

			if _, err := h.Play(nframes); err != nil {
				return err
			}
			return writeWAV(outPath, int(audioRate), h.GetAudio())
		},
	}
	renderCmd.Flags().Float64Var(&audioRate, "audio-rate", 48000, "audio sample rate")
	renderCmd.Flags().IntVar(&nframes, "frames", 48000, "number of frames to render")
	renderCmd.Flags().StringVar(&outPath, "out", "out.wav", "output WAV path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check structural invariants of a minimal model",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := handle.New()
			h.SetData("p_connections.json", []byte("[]"))
			return h.Validate()
		},
	}

	root.AddCommand(renderCmd, validateCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if _, ok := err.(*handle.Error); ok {
			return exitValidation
		}
		return exitUnexpected
	}
	return exitOK
}

type masterImpl struct{}

func (masterImpl) TypeTag() string { return "master" }

// writeWAV writes nframes of interleaved stereo PCM -- the master output
// buffers a bound Player actually rendered, read back via get_audio -- to a
// 16-bit WAV file (spec §2 step 3 "Copy the master output-port buffers to
// the caller's interleaved stereo audio buffer"; §6 "get_audio").
func writeWAV(path string, sampleRate int, interleaved []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kqrender: create output: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	data := make([]int, len(interleaved))
	for i, s := range interleaved {
		data[i] = int(s * 32767)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:   data,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("kqrender: write samples: %w", err)
	}
	return enc.Close()
}
