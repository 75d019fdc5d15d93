package bridge

import (
	"math"
	"sort"
)

// Layout is the transverse and longitudinal station layout shared by every
// component. Transverse positions are in metres, longitudinal in mm.
type Layout struct {
	// Lines are the transverse positions of the deck node lines.
	Lines []float64
	// Zones are the line indices of the thickness stations: the deck edge,
	// every girder and the far edge. Deck zone k spans Zones[k]..Zones[k+1].
	Zones []int
	// GirderLines are the line indices lying over each girder.
	GirderLines []int
	// GirderY are the transverse girder positions.
	GirderY []float64
	// Stations are the longitudinal offsets of the node columns before skew.
	Stations []float64
	// Tan and Cos of the skew angle.
	Tan, Cos, Sin float64
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// NewLayout computes the station layout for c.
func NewLayout(c *Config) *Layout {
	l := &Layout{}
	rad := c.Skew * math.Pi / 180
	l.Tan, l.Cos, l.Sin = math.Tan(rad), math.Cos(rad), math.Sin(rad)

	thick := []float64{0, round3(c.LeftCant)}
	for i := 0; i < c.Girders; i++ {
		y := round3(c.LeftCant + float64(i)*c.Spacing)
		l.GirderY = append(l.GirderY, y)
		if i > 0 {
			thick = append(thick, y)
		}
	}
	thick = append(thick, round3(c.LeftCant+float64(c.Girders-1)*c.Spacing+c.RightCant))

	seen := map[float64]bool{}
	for k := 0.0; k < c.Width; k++ {
		seen[k] = true
	}
	for _, y := range thick {
		seen[y] = true
	}
	for y := range seen {
		l.Lines = append(l.Lines, y)
	}
	sort.Float64s(l.Lines)

	l.Zones = l.indices(thick)
	l.GirderLines = l.indices(l.GirderY)

	div := c.Division()
	step := c.Length / float64(div)
	l.Stations = make([]float64, div+1)
	for j := range l.Stations {
		l.Stations[j] = step * float64(j)
	}
	return l
}

func (l *Layout) indices(ys []float64) []int {
	out := make([]int, len(ys))
	for i, y := range ys {
		out[i] = sort.SearchFloat64s(l.Lines, y)
	}
	return out
}

// Columns is the number of node columns along the span.
func (l *Layout) Columns() int { return len(l.Stations) }

// Skewed returns the longitudinal coordinate of column j on a line at
// transverse position y (m).
func (l *Layout) Skewed(y float64, j int) float64 {
	return -y*1000*l.Tan + l.Stations[j]
}

// Column returns the column whose station lies at x (mm), or -1.
func (l *Layout) Column(x float64) int {
	for j, s := range l.Stations {
		if math.Abs(s-x) < 1e-6 {
			return j
		}
	}
	return -1
}

// lump spreads a per-element mass m over n nodes: half to each end node of
// every element.
func lump(n int, m float64) []float64 {
	out := make([]float64, n)
	for j := range out {
		if j > 0 {
			out[j] += m
		}
		if j < n-1 {
			out[j] += m
		}
	}
	return out
}
