package params

import (
	"errors"
	"fmt"
	"math"
)

// Section is the PSCI I-girder cross-section described by its flange and
// web dimensions (mm). Heights are measured from the top of the girder.
type Section struct {
	UF  float64 `json:"UF"`  // upper flange width
	UT  float64 `json:"UT"`  // upper flange thickness
	UFT float64 `json:"UFT"` // upper fillet thickness
	WH  float64 `json:"WH"`  // web height
	WT  float64 `json:"WT"`  // web thickness
	LFT float64 `json:"LFT"` // lower fillet thickness
	LT  float64 `json:"LT"`  // lower flange thickness
	LF  float64 `json:"LF"`  // lower flange width

	Ec float64 `json:"Ec"` // girder concrete modulus (MPa)
	Ep float64 `json:"Ep"` // strand modulus (MPa)

	// Tendons, one entry per tendon group.
	Tendons []Tendon `json:"tendons"`
}

// Tendon is one tendon group at midspan: strand area, duct area and the
// duct depth from the top of the girder.
type Tendon struct {
	Area     float64 `json:"area"`
	DuctArea float64 `json:"duct_area"`
	Depth    float64 `json:"depth"`
}

// SectionProperties holds the gross, net (duct deducted) and transformed
// (strand added with modular ratio Np) properties. Centroids are depths
// from the top fibre.
type SectionProperties struct {
	B [5]float64 // b1..b5 part widths
	H [5]float64 // h1..h5 part heights

	Ag  float64
	Qg  float64
	Yt1 float64
	IxG float64
	Hgt float64 // girder_H

	DuctA float64
	DuctQ float64
	DuctY float64

	ANet  float64
	QNet  float64
	Yt2   float64
	IxNet float64

	Np  float64
	Ap  float64
	Yp  float64
	At  float64
	Qt  float64
	Yt3 float64
	IxT float64
}

// ValidationError represents a section validation error
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Validate checks that the section can be evaluated.
func (s *Section) Validate() error {
	dims := []struct {
		name string
		v    float64
	}{
		{"UF", s.UF}, {"UT", s.UT}, {"WH", s.WH}, {"WT", s.WT}, {"LT", s.LT}, {"LF", s.LF},
	}
	for _, d := range dims {
		if d.v <= 0 {
			return &ValidationError{msg: fmt.Sprintf("section %s must be positive", d.name)}
		}
	}
	if s.UFT < 0 || s.LFT < 0 {
		return &ValidationError{"fillet thickness must not be negative"}
	}
	if s.WT > s.UF || s.WT > s.LF {
		return &ValidationError{"web must not be wider than the flanges"}
	}
	if s.Ec <= 0 {
		return &ValidationError{"Ec must be positive"}
	}
	for i, t := range s.Tendons {
		if t.Area < 0 || t.DuctArea < 0 {
			return &ValidationError{msg: fmt.Sprintf("tendon %d must have non-negative area", i+1)}
		}
	}
	return nil
}

// CalculateProperties runs the gross, net and transformed section chain.
func (s *Section) CalculateProperties() *SectionProperties {
	p := &SectionProperties{}

	p.B = [5]float64{s.UF, (s.UF - s.WT) / 2, s.WT, (s.LF - s.WT) / 2, s.LF}
	p.H = [5]float64{s.UT, s.UFT, s.UFT + s.WH + s.LFT, s.LFT, s.LT}
	b, h := p.B, p.H
	p.Hgt = s.UT + s.UFT + s.WH + s.LFT + s.LT

	// Top flange, upper fillet pair (two triangles), web, lower fillet pair,
	// bottom flange.
	area := [5]float64{b[0] * h[0], b[1] * h[1], b[2] * h[2], b[3] * h[3], b[4] * h[4]}
	depth := [5]float64{
		h[0] / 2,
		h[0] + h[1]/3,
		h[0] + h[2]/2,
		h[0] + h[2] - h[3]/3,
		h[0] + h[2] + h[4]/2,
	}
	own := [5]float64{
		b[0] * math.Pow(h[0], 3) / 12,
		b[1] / 36 * 2 * math.Pow(h[1], 3),
		b[2] * math.Pow(h[2], 3) / 12,
		b[3] / 36 * 2 * math.Pow(h[3], 3),
		b[4] * math.Pow(h[4], 3) / 12,
	}
	for i := range area {
		p.Ag += area[i]
		p.Qg += area[i] * depth[i]
	}
	p.Yt1 = p.Qg / p.Ag
	for i := range area {
		p.IxG += own[i] + area[i]*sq(p.Yt1-depth[i])
	}

	for _, t := range s.Tendons {
		p.DuctA += t.DuctArea
		p.DuctQ += t.DuctArea * t.Depth
		p.Ap += t.Area
	}
	if p.DuctA > 0 {
		p.DuctY = p.DuctQ / p.DuctA
	}

	p.ANet = p.Ag - p.DuctA
	p.QNet = p.Qg - p.DuctQ
	p.Yt2 = p.QNet / p.ANet
	shift := p.Ag * sq(p.Yt2-p.Yt1)
	for _, t := range s.Tendons {
		shift += t.DuctArea * sq(p.Yt2-t.Depth)
	}
	p.IxNet = p.IxG + shift

	p.Np = s.Ep / s.Ec
	var qp float64
	for _, t := range s.Tendons {
		qp += t.Area * t.Depth
	}
	if p.Ap > 0 {
		p.Yp = qp / p.Ap
	}
	atp := p.Ap * p.Np
	p.At = p.ANet + atp
	p.Qt = p.QNet + atp*p.Yp
	p.Yt3 = p.Qt / p.At

	p.IxT = p.IxNet + p.ANet*sq(p.Yt3-p.Yt2)
	for _, t := range s.Tendons {
		p.IxT += t.Area * p.Np * sq(p.Yt3-t.Depth)
	}
	return p
}

func sq(x float64) float64 { return x * x }

// SectionFromSet reads the section inputs out of a parameter set.
func SectionFromSet(s Set) (*Section, error) {
	sec := &Section{}
	fields := []struct {
		key string
		dst *float64
	}{
		{"UF", &sec.UF}, {"UT", &sec.UT}, {"UFT", &sec.UFT}, {"WH", &sec.WH},
		{"WT", &sec.WT}, {"LFT", &sec.LFT}, {"LT", &sec.LT}, {"LF", &sec.LF},
		{"Ec", &sec.Ec}, {"Ep", &sec.Ep},
	}
	var missing []string
	for _, f := range fields {
		v, err := s.Float(f.key)
		if err != nil {
			var m *MissingParameterError
			if errors.As(err, &m) {
				missing = append(missing, f.key)
				continue
			}
			return nil, err
		}
		*f.dst = v
	}
	if len(missing) > 0 {
		return nil, &MissingParameterError{Keys: missing}
	}

	ap, err := s.Floats("Ap_N")
	if err != nil {
		return nil, err
	}
	ad, err := s.FloatsOr("A_duct_N", ap)
	if err != nil {
		return nil, err
	}
	yd, err := s.Floats("y_duct_N")
	if err != nil {
		return nil, err
	}
	if len(ad) != len(ap) || len(yd) != len(ap) {
		return nil, &ValueError{Key: "y_duct_N", Want: fmt.Sprintf("%d entries to match Ap_N", len(ap)), Got: yd}
	}
	for i := range ap {
		sec.Tendons = append(sec.Tendons, Tendon{Area: ap[i], DuctArea: ad[i], Depth: yd[i]})
	}
	if err := sec.Validate(); err != nil {
		return nil, err
	}
	return sec, nil
}

// Values returns the derived keys written back into a parameter set.
func (p *SectionProperties) Values() map[string]any {
	return map[string]any{
		"b1": p.B[0], "b2": p.B[1], "b3": p.B[2], "b4": p.B[3], "b5": p.B[4],
		"h1": p.H[0], "h2": p.H[1], "h3": p.H[2], "h4": p.H[3], "h5": p.H[4],
		"Ag":       p.Ag,
		"Qg":       p.Qg,
		"yt1":      p.Yt1,
		"Ix_g":     p.IxG,
		"A_duct":   p.DuctA,
		"Q_duct":   p.DuctQ,
		"y_duct":   p.DuctY,
		"A_net":    p.ANet,
		"Q_net":    p.QNet,
		"yt2":      p.Yt2,
		"Ix_net":   p.IxNet,
		"Np":       p.Np,
		"Ap":       p.Ap,
		"yp":       p.Yp,
		"At":       p.At,
		"Qt":       p.Qt,
		"yt3":      p.Yt3,
		"Ix_t":     p.IxT,
		"A_t":      p.At,
		"B_t":      p.Qt,
		"I_n":      p.IxT,
		"girder_H": p.Hgt,
	}
}

// DerivedKeys lists every key Derive overwrites.
var DerivedKeys = []string{
	"b1", "b2", "b3", "b4", "b5", "h1", "h2", "h3", "h4", "h5",
	"Ag", "Qg", "yt1", "Ix_g", "A_duct", "Q_duct", "y_duct", "A_net", "Q_net",
	"yt2", "Ix_net", "Np", "Ap", "yp", "At", "Qt", "yt3", "Ix_t", "A_t", "B_t",
	"I_n", "girder_H", "Bearing_Stiffness",
}

// IsDerived reports whether key is recomputed by Derive, so a value set
// for it directly does not survive derivation.
func IsDerived(key string) bool {
	for _, k := range DerivedKeys {
		if k == key {
			return true
		}
	}
	return false
}
