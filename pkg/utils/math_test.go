package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v, want [0.6 0.8]", v)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for i, x := range zero {
		if x != 0 {
			t.Errorf("zero vector changed at %d: %f", i, x)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456789, 4); got != 1.2346 {
		t.Errorf("Round(1.23456789, 4) = %v", got)
	}
	if got := Round(0.000000014, 8); got != 0.00000001 {
		t.Errorf("Round(0.000000014, 8) = %v", got)
	}
	if got := Round(540.127, 2); got != 540.13 {
		t.Errorf("Round(540.127, 2) = %v", got)
	}
}
