package tstamp

import (
	"testing"

	"pgregory.net/rapid"
)

func TestNormaliseInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		beats := rapid.Int64Range(-1000, 1000).Draw(rt, "beats")
		rem := rapid.Int64Range(-10*BeatUnits, 10*BeatUnits).Draw(rt, "rem")
		ts := New(beats, rem)
		if !ts.IsValid() {
			rt.Fatalf("normalised Tstamp %v violates 0 <= rem < BeatUnits", ts)
		}
	})
}

func TestAddSubRoundtrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := New(rapid.Int64Range(-1000, 1000).Draw(rt, "ab"), rapid.Int64Range(0, BeatUnits-1).Draw(rt, "ar"))
		b := New(rapid.Int64Range(-1000, 1000).Draw(rt, "bb"), rapid.Int64Range(0, BeatUnits-1).Draw(rt, "br"))
		sum := Add(a, b)
		back := Sub(sum, b)
		if Cmp(back, a) != 0 {
			rt.Fatalf("Sub(Add(a,b),b) = %v, want %v", back, a)
		}
	})
}

func TestCmpOrdering(t *testing.T) {
	a := New(1, 0)
	b := New(1, 1)
	c := New(2, 0)
	if !Less(a, b) || !Less(b, c) || !Less(a, c) {
		t.Fatalf("expected a < b < c, got a=%v b=%v c=%v", a, b, c)
	}
	if Cmp(a, a) != 0 {
		t.Fatalf("expected Cmp(a,a) == 0")
	}
}

func TestFramesRoundTrip(t *testing.T) {
	const tempo = 120.0
	const rate = 48000.0
	ts := New(4, 0)
	frames, _ := ToFrames(ts, tempo, rate, 0)
	want := int64(4 * 60.0 * rate / tempo)
	if frames != want {
		t.Fatalf("ToFrames(%v) = %d, want %d", ts, frames, want)
	}
	back := FromFrames(frames, tempo, rate)
	if back.Beats != ts.Beats {
		t.Fatalf("FromFrames round trip beats = %d, want %d", back.Beats, ts.Beats)
	}
}

func TestEmptyModuleZeroFrames(t *testing.T) {
	frames, carry := ToFrames(Zero, 120, 48000, 0)
	if frames != 0 || carry != 0 {
		t.Fatalf("rendering Zero tstamp should produce zero frames, got %d carry %f", frames, carry)
	}
}
