package vector

// SquaredL2 returns the squared L2 distance between two vectors. Mismatched
// or empty vectors give 0.
func SquaredL2(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// ScoreFromDistance maps a distance to a relevance score in (0, 1] where 1 is
// an exact match.
func ScoreFromDistance(d float64) float64 {
	return 1 / (1 + d)
}
