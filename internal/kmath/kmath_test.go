package kmath

import (
	"crypto/md5"
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestCentsHzRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := rapid.Float64Range(1, 20000).Draw(rt, "f")
		got := CentsToHz(HzToCents(f))
		if math.Abs(got-f) > f*1e-9 {
			rt.Fatalf("CentsToHz(HzToCents(%v)) = %v", f, got)
		}
	})
}

func TestDBScaleRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		db := rapid.Float64Range(-60, 20).Draw(rt, "db")
		got := ScaleToDB(DBToScale(db))
		if math.Abs(got-db) > 1e-6 {
			rt.Fatalf("ScaleToDB(DBToScale(%v)) = %v", db, got)
		}
	})
}

func TestDBNegInfIsZeroScale(t *testing.T) {
	if DBToScale(NegInf) != 0 {
		t.Fatalf("DBToScale(-inf) should be exactly 0")
	}
}

func TestMD5MatchesStandardLibrary(t *testing.T) {
	data := []byte("kunquat voice seed")
	got := MD5Bytes(data)
	want := md5.Sum(data)
	if got != want {
		t.Fatalf("MD5Bytes mismatch")
	}
}

func TestCentsToNoteNameReferenceIsA4(t *testing.T) {
	if got := CentsToNoteName(0); got != "a-4" {
		t.Fatalf("CentsToNoteName(0) = %q, want a-4", got)
	}
}

func TestCentsToNoteNameOctaveUp(t *testing.T) {
	if got := CentsToNoteName(1200); got != "a-5" {
		t.Fatalf("CentsToNoteName(1200) = %q, want a-5", got)
	}
}

func TestCentsToNoteNameSharpStaysThreeChars(t *testing.T) {
	got := CentsToNoteName(100) // a4 + 1 semitone = a#4
	if got != "a#4" {
		t.Fatalf("CentsToNoteName(100) = %q, want a#4", got)
	}
	if len(got) != 3 {
		t.Fatalf("note name %q should be exactly 3 characters", got)
	}
}

func TestCentsToNoteNameOutOfRange(t *testing.T) {
	if got := CentsToNoteName(-1e6); got != "---" {
		t.Fatalf("CentsToNoteName(-1e6) = %q, want ---", got)
	}
}

func TestSeedFromMD5Deterministic(t *testing.T) {
	data := []byte("channel-0")
	a := SeedFromMD5(data, 3)
	b := SeedFromMD5(data, 3)
	if a != b {
		t.Fatalf("SeedFromMD5 should be deterministic for identical inputs")
	}
	c := SeedFromMD5(data, 4)
	if a == c {
		t.Fatalf("SeedFromMD5 should vary with salt")
	}
}
