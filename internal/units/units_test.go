package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrequency(t *testing.T) {
	for _, lambda := range []float64{1, 39.47841760435743, 250.5, 1e4} {
		want := math.Sqrt(lambda) / (2 * math.Pi)
		assert.InDelta(t, want, Frequency(lambda), 1e-12)
	}

	// ω = 2π → 1 Hz
	assert.InDelta(t, 1.0, Frequency(4*math.Pi*math.Pi), 1e-12)
}

func TestFrequencies(t *testing.T) {
	got := Frequencies([]float64{4 * math.Pi * math.Pi, 16 * math.Pi * math.Pi})
	assert.InDeltaSlice(t, []float64{1, 2}, got, 1e-12)
}

func TestKmhToMmPerSec(t *testing.T) {
	assert.InDelta(t, 2777.7777777, KmhToMmPerSec(10), 1e-6)
	assert.InDelta(t, 1000.0, KmhToMmPerSec(3.6), 1e-9)
}

func TestAccelToG(t *testing.T) {
	assert.InDelta(t, 1.0, AccelToG(9810), 1e-12)
}
