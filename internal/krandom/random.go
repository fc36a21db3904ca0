// Package krandom provides the engine's deterministic PRNG, used for
// per-channel and per-voice Random sources (spec §3, "Random"). It wraps
// math/rand exactly as the teacher's modulation package does for note
// randomisation, but gives each source an explicit identity so a voice's
// parameter stream and signal stream never share state.
package krandom

import "math/rand"

// Source is one seedable deterministic PRNG instance.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source seeded with seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Reseed re-seeds the source in place, matching modulation.ApplyModulation's
// reseed-on-fixed-or-time-seed behaviour.
func (s *Source) Reseed(seed int64) { s.rng.Seed(seed) }

// Float64 returns a value in [0,1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// IntN returns a value in [0,n).
func (s *Source) IntN(n int) int { return s.rng.Intn(n) }

// Sign returns -1 or 1 with equal probability, used by noise generators that
// need a signed unit impulse.
func (s *Source) Sign() float64 {
	if s.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}
