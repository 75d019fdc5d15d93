// Package units holds the N / mm / MPa unit system the bridge model is
// written in. Nothing is converted on input: spreadsheet values are taken
// to already be in these units.
package units

import "math"

// Base units
const (
	N  = 1.0
	MM = 1.0
)

// Derived units
const (
	Kilo  = 1e3
	Milli = 1e-3

	M   = 1000 * MM
	MM2 = MM * MM
	MM3 = MM * MM * MM
	MM4 = MM * MM * MM * MM

	KN  = Kilo * N
	MPa = N / MM2
	GPa = Kilo * MPa
)

// Gravity in m/s², used to express accelerations in g.
const Gravity = 9.81

// KmhToMmPerSec converts a vehicle speed in km/h to mm/s.
func KmhToMmPerSec(v float64) float64 {
	return v * 1000 * 1000 / 3600
}

// AccelToG converts an acceleration in mm/s² to multiples of g.
func AccelToG(a float64) float64 {
	return a / Gravity / 1000
}

// Frequency returns the natural frequency in Hz for an eigenvalue λ = ω².
// Negative eigenvalues (numerical noise on rigid modes) give NaN.
func Frequency(lambda float64) float64 {
	return math.Sqrt(lambda) / (2 * math.Pi)
}

// Frequencies maps Frequency over a list of eigenvalues.
func Frequencies(lambdas []float64) []float64 {
	out := make([]float64, len(lambdas))
	for i, l := range lambdas {
		out[i] = Frequency(l)
	}
	return out
}
