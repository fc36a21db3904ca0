package scale

import "testing"

func TestQuantizeCentsSnapsToMajorScale(t *testing.T) {
	// 100 cents (C#) is not in C major; nearest scale tones are C (0) and D
	// (200), both 100 cents away -- the first match found (C, 0) wins.
	got := QuantizeCents(100, "major", 0)
	if got != 0 {
		t.Fatalf("QuantizeCents(100, major, 0) = %v, want 0", got)
	}
}

func TestQuantizeCentsPassesThroughAllScale(t *testing.T) {
	if got := QuantizeCents(150, "all", 0); got != 150 {
		t.Fatalf("QuantizeCents(150, all, 0) = %v, want 150 (every semitone is in scale)", got)
	}
}

func TestQuantizeCentsUnknownScaleIsNoop(t *testing.T) {
	if got := QuantizeCents(137, "nonexistent", 0); got != 137 {
		t.Fatalf("QuantizeCents with unknown scale should pass through unchanged, got %v", got)
	}
}

func TestQuantizeCentsHandlesNegativeOctaves(t *testing.T) {
	// -1100 cents = one semitone above the octave below 0 (pitch class 1),
	// already in the chromatic "all" scale so it should round-trip through divmod.
	got := QuantizeCents(-1100, "all", 0)
	if got != -1100 {
		t.Fatalf("QuantizeCents(-1100, all, 0) = %v, want -1100", got)
	}
}

func TestQuantizeCentsRespectsRoot(t *testing.T) {
	// Major scale rooted at A (9 semitones) quantizes A (900 cents) exactly.
	got := QuantizeCents(900, "major", 9)
	if got != 900 {
		t.Fatalf("QuantizeCents(900, major, root=9) = %v, want 900", got)
	}
}
