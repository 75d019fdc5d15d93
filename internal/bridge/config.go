// Package bridge assembles the finite-element model of a PSCI girder
// bridge: fiber girders with parabolic tendons, a zoned shell deck, the
// barrier beam, end diaphragms and cross beams, spring bearings, a pavement
// layer and the rigid links tying them together.
package bridge

import (
	"fmt"

	"github.com/alexiusacademia/bridgepsci/internal/params"
)

// Config is the typed view of the parameters the builder reads. Lengths
// are mm unless the field says otherwise.
type Config struct {
	Width       float64 // m
	Skew        float64 // degrees
	Girders     int
	Length      float64
	Spacing     float64 // m
	LeftCant    float64 // m
	RightCant   float64 // m
	GirderDepth float64 // girder_H
	Centroid    float64 // yt3, depth of the transformed centroid

	B [5]float64
	H [5]float64
	Ag float64
	Ep float64
	PE float64

	Tendons       int
	TendonHalfLen float64
	ZCoef         []float64
	ZIntercept    []float64
	YCoef         []float64
	YIntercept    []float64
	Ap            []float64

	EGirder    []float64
	EDeck      []float64
	Thickness  []float64
	Diaphragm1 []float64
	Diaphragm2 []float64
	Bearings   [][]float64

	PaveThick float64
	PaveE     float64

	BarrierE      float64
	BarrierHeight float64 // m
	BarrierWidth  float64 // m

	DiaphragmHeight    float64
	DiaphragmThickness float64
	CrossBeams         []float64
}

// reader collects missing keys and the first shape error while a Config is
// filled in.
type reader struct {
	s       params.Set
	missing []string
	err     error
}

func (r *reader) note(key string, err error) {
	if err == nil {
		return
	}
	if _, ok := err.(*params.MissingParameterError); ok {
		r.missing = append(r.missing, key)
		return
	}
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) float(key string) float64 {
	v, err := r.s.Float(key)
	r.note(key, err)
	return v
}

func (r *reader) floatOr(key string, def float64) float64 {
	v, err := r.s.FloatOr(key, def)
	r.note(key, err)
	return v
}

func (r *reader) int(key string) int {
	v, err := r.s.Int(key)
	r.note(key, err)
	return v
}

func (r *reader) floats(key string) []float64 {
	v, err := r.s.Floats(key)
	r.note(key, err)
	return v
}

func (r *reader) floatsOr(key string, def []float64) []float64 {
	v, err := r.s.FloatsOr(key, def)
	r.note(key, err)
	return v
}

func (r *reader) matrix(key string) [][]float64 {
	v, err := r.s.Matrix(key)
	r.note(key, err)
	return v
}

func (r *reader) done() error {
	if len(r.missing) > 0 {
		return &params.MissingParameterError{Keys: r.missing}
	}
	return r.err
}

// ConfigFromSet reads and checks the builder inputs.
func ConfigFromSet(s params.Set) (*Config, error) {
	r := &reader{s: s}
	c := &Config{
		Width:       r.float("Bridge_width"),
		Skew:        r.floatOr("Bridge_skew", 0),
		Girders:     r.int("girder_number"),
		Length:      r.float("girder_length"),
		Spacing:     r.float("girder_spacing"),
		LeftCant:    r.float("Left_Cantilever"),
		RightCant:   r.float("Right_Cantilever"),
		GirderDepth: r.float("girder_H"),
		Centroid:    r.float("yt3"),
		Ag:          r.float("Ag"),
		Ep:          r.float("Ep"),
		PE:          r.floatOr("PE", 600),

		Tendons:       r.int("number_tendon"),
		TendonHalfLen: r.float("tendon_horizontal_length"),
		ZCoef:         r.floats("z_coef_list"),
		ZIntercept:    r.floats("z_intercept_list"),
		YCoef:         r.floats("y_coef_list"),
		YIntercept:    r.floats("y_intercept_list"),
		Ap:            r.floats("Ap_N"),

		EGirder:    r.floats("E_girder1"),
		EDeck:      r.floats("E_deck1"),
		Thickness:  r.floats("thickness1"),
		Diaphragm1: r.floats("diaphragm1_Ec"),
		Diaphragm2: r.floats("diaphragm2_Ec"),
		Bearings:   r.matrix("Bearing_Stiffness"),

		BarrierE:      r.floatOr("barrier_Ec", 25000),
		BarrierHeight: r.floatOr("barrier_height_m", 0.3),
		BarrierWidth:  r.floatOr("barrier_width_m", 3.88),

		DiaphragmHeight:    r.floatOr("diaphragm_height", 1795),
		DiaphragmThickness: r.floatOr("diaphragm_thickness", 300),
		CrossBeams:         r.floatsOr("crossbeam_positions_mm", []float64{5000, 10000, 15000, 20000, 25000}),
	}
	for i, k := range []string{"b1", "b2", "b3", "b4", "b5"} {
		c.B[i] = r.float(k)
	}
	for i, k := range []string{"h1", "h2", "h3", "h4", "h5"} {
		c.H[i] = r.float(k)
	}
	pave := r.floatsOr("pave_thick", []float64{80})
	paveE := r.floatsOr("pave_E", []float64{2500})
	if err := r.done(); err != nil {
		return nil, err
	}
	if len(pave) == 0 || len(paveE) == 0 {
		return nil, fmt.Errorf("pave_thick and pave_E need at least one value")
	}
	c.PaveThick, c.PaveE = pave[0], paveE[0]
	return c, c.Validate()
}

// Validate checks list lengths and tag-range limits of the model.
func (c *Config) Validate() error {
	n := c.Girders
	if n < 2 || n > 9 {
		return fmt.Errorf("girder_number %d: must be between 2 and 9", n)
	}
	if c.Length <= 0 || c.Width <= 0 || c.Spacing <= 0 {
		return fmt.Errorf("girder_length, Bridge_width and girder_spacing must be positive")
	}
	if d := c.Division(); d < 2 || d+1 >= 1000 {
		return fmt.Errorf("girder_length %.0f gives %d elements per girder, want 2..998", c.Length, d)
	}
	checks := []struct {
		key  string
		have int
		want int
	}{
		{"E_girder1", len(c.EGirder), n},
		{"E_deck1", len(c.EDeck), n + 1},
		{"thickness1", len(c.Thickness), n + 2},
		{"diaphragm1_Ec", len(c.Diaphragm1), n - 1},
		{"diaphragm2_Ec", len(c.Diaphragm2), n - 1},
		{"Bearing_Stiffness", len(c.Bearings), 2 * n},
		{"z_coef_list", len(c.ZCoef), c.Tendons},
		{"z_intercept_list", len(c.ZIntercept), c.Tendons},
		{"y_coef_list", len(c.YCoef), c.Tendons},
		{"y_intercept_list", len(c.YIntercept), c.Tendons},
		{"Ap_N", len(c.Ap), c.Tendons},
	}
	for _, ch := range checks {
		if ch.have < ch.want {
			return &params.ValueError{Key: ch.key, Want: fmt.Sprintf("at least %d entries", ch.want), Got: ch.have}
		}
	}
	for i, row := range c.Bearings {
		if len(row) < 3 {
			return &params.ValueError{Key: "Bearing_Stiffness", Want: fmt.Sprintf("3 or more values in row %d", i+1), Got: row}
		}
	}
	if c.Tendons > 0 && c.TendonHalfLen <= 0 {
		return fmt.Errorf("tendon_horizontal_length must be positive")
	}
	if len(c.CrossBeams) > 7 {
		return fmt.Errorf("at most 7 cross beams, got %d", len(c.CrossBeams))
	}
	return nil
}

// Division is the number of girder elements: five per metre of span.
func (c *Config) Division() int {
	return int(c.Length / 1000 * 5)
}
