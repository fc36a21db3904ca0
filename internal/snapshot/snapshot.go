// Package snapshot persists a Handle's raw set_data keys to a single
// gzipped JSON file and restores them, plus a debounced autosave timer,
// grounded on the teacher's own gzip+jsoniter save/load pipeline (spec §6
// "set_data" stores opaque byte blobs the core never interprets -- this
// package only round-trips that byte-map, it does not know what the model
// format inside each key means).
package snapshot

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var jsonc = jsoniter.ConfigCompatibleWithStandardLibrary

// Save gzip-compresses a JSON encoding of keys to path.
func Save(path string, keys map[string][]byte) error {
	data, err := jsonc.Marshal(keys)
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}
	return gz.Close()
}

// Load reads and decompresses the key map written by Save.
func Load(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: gzip reader: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}

	keys := map[string][]byte{}
	if err := jsonc.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return keys, nil
}

// AutoSaver coalesces repeated save requests into one write per debounce
// window, so rapid-fire set_data calls during editing don't each hit disk.
type AutoSaver struct {
	mu       sync.Mutex
	timer    *time.Timer
	path     string
	debounce time.Duration
}

// NewAutoSaver creates an AutoSaver writing to path, coalescing triggers
// within debounce of each other.
func NewAutoSaver(path string, debounce time.Duration) *AutoSaver {
	return &AutoSaver{path: path, debounce: debounce}
}

// Trigger (re)starts the debounce timer. snapshot is called to fetch the
// current key map only once the timer actually fires, so callers can pass
// a closure over mutable state without copying it up front.
func (a *AutoSaver) Trigger(snapshot func() map[string][]byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() {
		start := time.Now()
		if err := Save(a.path, snapshot()); err != nil {
			log.Printf("snapshot: autosave failed: %v", err)
			return
		}
		log.Printf("snapshot: autosaved %s in %s", a.path, time.Since(start))
	})
}

// Stop cancels any pending debounced save.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
}
