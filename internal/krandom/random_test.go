package krandom

import "testing"

func TestFloat64IsInUnitRange(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() = %v, want [0,1)", v)
		}
	}
}

func TestIntNIsInRange(t *testing.T) {
	s := NewSource(2)
	for i := 0; i < 1000; i++ {
		v := s.IntN(7)
		if v < 0 || v >= 7 {
			t.Fatalf("IntN(7) = %v, want [0,7)", v)
		}
	}
}

func TestSignIsPlusOrMinusOne(t *testing.T) {
	s := NewSource(3)
	seenPos, seenNeg := false, false
	for i := 0; i < 1000; i++ {
		v := s.Sign()
		if v != 1 && v != -1 {
			t.Fatalf("Sign() = %v, want 1 or -1", v)
		}
		if v == 1 {
			seenPos = true
		} else {
			seenNeg = true
		}
	}
	if !seenPos || !seenNeg {
		t.Fatalf("Sign() should produce both 1 and -1 across 1000 draws")
	}
}

func TestReseedIsDeterministic(t *testing.T) {
	a := NewSource(0)
	a.Reseed(42)
	b := NewSource(0)
	b.Reseed(42)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("two sources reseeded with the same seed diverged")
		}
	}
}
