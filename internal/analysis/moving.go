package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/alexiusacademia/bridgepsci/internal/bridge"
	"github.com/alexiusacademia/bridgepsci/internal/fe"
	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/units"
)

// Vehicle is a multi-axle truck. Axle i carries Loads[i] (N) at
// Distances[i] (mm) behind the lead position of lane Lanes[i].
type Vehicle struct {
	Loads     []float64
	Distances []float64
	Lanes     []int
}

// Length is the largest axle offset.
func (v Vehicle) Length() float64 {
	l := 0.0
	for _, d := range v.Distances {
		l = math.Max(l, math.Abs(d))
	}
	return l
}

// MovingOptions configures the moving-load transient analysis.
type MovingOptions struct {
	Vehicle Vehicle
	// Speed in km/h.
	Speed float64
	// Dt is the time step in seconds.
	Dt       float64
	Zeta     float64
	NumEigen int
	// LaneGirders are the girder numbers the lanes travel over.
	LaneGirders []int
	// Eigenvalues from an earlier run of the same model; extracted again
	// when empty.
	Eigenvalues []float64
}

// MovingOptionsFromSet reads the vehicle and dynamic parameters. Lane k
// runs along the girder whose first node is girder3_start_tag (k = 0) or
// girder4_start_tag (k = 1).
func MovingOptionsFromSet(s params.Set, b *bridge.Bridge) (MovingOptions, error) {
	var o MovingOptions
	r := &optReader{s: s}
	o.Speed = r.floatOr("velocity_kmh", 10)
	o.Dt = r.floatOr("dt", 0.1)
	o.Zeta = r.floatOr("zeta", 0.015)
	o.NumEigen = r.intOr("numEigen", 3)
	o.Vehicle.Loads = r.floatsOr("vehicle_loads_n", []float64{30650, 57350, 55410, 30650, 57350, 55410})
	o.Vehicle.Distances = r.floatsOr("vehicle_distances_mm", []float64{0, 3300, 4600, 0, 3300, 4600})
	lanes := r.intsOr("vehicle_lanes", nil)
	starts := []int{r.intOr("girder3_start_tag", 3001), r.intOr("girder4_start_tag", 4001)}
	count := r.intOr("girder_n_nodes", b.Layout.Columns())
	if r.err != nil {
		return o, r.err
	}

	v := &o.Vehicle
	if len(v.Loads) != len(v.Distances) {
		return o, &params.ValueError{Key: "vehicle_distances_mm",
			Want: fmt.Sprintf("%d entries to match vehicle_loads_n", len(v.Loads)), Got: len(v.Distances)}
	}
	if len(lanes) == 0 {
		// First half of the axles on lane 0, the rest on lane 1.
		for i := range v.Loads {
			lanes = append(lanes, i*2/len(v.Loads))
		}
	}
	if len(lanes) != len(v.Loads) {
		return o, &params.ValueError{Key: "vehicle_lanes",
			Want: fmt.Sprintf("%d entries to match vehicle_loads_n", len(v.Loads)), Got: len(lanes)}
	}
	v.Lanes = lanes

	if count != b.Layout.Columns() {
		return o, &params.ValueError{Key: "girder_n_nodes",
			Want: fmt.Sprintf("%d nodes per girder", b.Layout.Columns()), Got: count}
	}
	for k, tag := range starts {
		g := b.GirderOf(tag)
		if g == 0 || b.Girders[g-1][0] != tag {
			return o, fmt.Errorf("lane %d start tag %d is not the first node of a girder", k, tag)
		}
		o.LaneGirders = append(o.LaneGirders, g)
	}
	return o, o.validate()
}

func (o MovingOptions) validate() error {
	if o.Speed <= 0 {
		return &params.ValueError{Key: "velocity_kmh", Want: "a positive speed", Got: o.Speed}
	}
	if o.Dt <= 0 {
		return &params.ValueError{Key: "dt", Want: "a positive time step", Got: o.Dt}
	}
	if o.NumEigen < 1 {
		return &params.ValueError{Key: "numEigen", Want: "a positive mode count", Got: o.NumEigen}
	}
	for _, l := range o.Vehicle.Lanes {
		if l < 0 || l >= len(o.LaneGirders) {
			return &params.ValueError{Key: "vehicle_lanes",
				Want: fmt.Sprintf("lane indices below %d", len(o.LaneGirders)), Got: l}
		}
	}
	return nil
}

type optReader struct {
	s   params.Set
	err error
}

func (r *optReader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *optReader) floatOr(key string, def float64) float64 {
	v, err := r.s.FloatOr(key, def)
	r.keep(err)
	return v
}

func (r *optReader) intOr(key string, def int) int {
	v, err := r.s.IntOr(key, def)
	r.keep(err)
	return v
}

func (r *optReader) floatsOr(key string, def []float64) []float64 {
	v, err := r.s.FloatsOr(key, def)
	r.keep(err)
	return v
}

func (r *optReader) intsOr(key string, def []int) []int {
	if !r.s.Has(key) {
		return def
	}
	v, err := r.s.Ints(key)
	r.keep(err)
	return v
}

// Histories are the nodal load histories of a moving-load run.
type Histories struct {
	Dt    float64
	Steps int
	// Loads maps girder number to node tag to the vertical load (N,
	// positive downwards) at every step.
	Loads map[int]map[int][]float64
}

// Duration is the time the vehicle needs to cross the bridge plus five
// seconds of free vibration.
func Duration(bridgeLength float64, o MovingOptions) float64 {
	return (bridgeLength+o.Vehicle.Length())/units.KmhToMmPerSec(o.Speed) + 5
}

// LoadHistories distributes every axle to the two nearest nodes of its lane
// girder at every time step. The vehicle enters at the far end of the
// girder and travels towards its first node.
func LoadHistories(b *bridge.Bridge, o MovingOptions) *Histories {
	first := b.MustCoord(b.Girders[o.LaneGirders[0]-1][0])
	last := b.MustCoord(b.Girders[o.LaneGirders[0]-1][len(b.Girders[0])-1])
	length := math.Abs(last.X - first.X)
	steps := int(math.Ceil(Duration(length, o) / o.Dt))

	h := &Histories{Dt: o.Dt, Steps: steps, Loads: map[int]map[int][]float64{}}
	type lane struct {
		girder int
		tags   []int
		x      []float64
	}
	lanes := make([]lane, len(o.LaneGirders))
	for k, g := range o.LaneGirders {
		tags := b.Girders[g-1]
		l := lane{girder: g, tags: tags, x: make([]float64, len(tags))}
		for j, t := range tags {
			l.x[j] = b.MustCoord(t).X
		}
		lanes[k] = l
		if h.Loads[g] == nil {
			h.Loads[g] = map[int][]float64{}
			for _, t := range tags {
				h.Loads[g][t] = make([]float64, steps)
			}
		}
	}

	speed := units.KmhToMmPerSec(o.Speed)
	for it := 0; it < steps; it++ {
		progress := speed * float64(it) * o.Dt
		for i, load := range o.Vehicle.Loads {
			l := lanes[o.Vehicle.Lanes[i]]
			n := len(l.x)
			x := l.x[n-1] - progress + o.Vehicle.Distances[i]
			if x < l.x[0] || x > l.x[n-1] {
				continue
			}
			idx := sort.SearchFloat64s(l.x, x) - 1
			idx = max(0, min(idx, n-2))
			r := (x - l.x[idx]) / (l.x[idx+1] - l.x[idx])
			hist := h.Loads[l.girder]
			hist[l.tags[idx]][it] += load * (1 - r)
			hist[l.tags[idx+1]][it] += load * r
		}
	}
	return h
}

// Rayleigh returns the mass and stiffness proportional damping
// coefficients giving ratio zeta at the first and third modes (the last
// one when fewer are available).
func Rayleigh(eigenvalues []float64, zeta float64) (alphaM, betaK float64) {
	w1 := math.Sqrt(eigenvalues[0])
	w2 := math.Sqrt(eigenvalues[min(2, len(eigenvalues)-1)])
	return zeta * 2 * w1 * w2 / (w1 + w2), 2 * zeta / (w1 + w2)
}

// Trace is the vertical acceleration history of one monitored node.
type Trace struct {
	Girder int
	Node   int
	// Time in s and acceleration in mm/s².
	Time  []float64
	Accel []float64
}

// MovingResult holds the outcome of a moving-load run.
type MovingResult struct {
	Eigenvalues []float64
	AlphaM      float64
	BetaK       float64
	Steps       int
	Dt          float64
	Traces      []Trace
}

// AccelFile is the recorder file of node.
func AccelFile(node int) string {
	return fmt.Sprintf("accel_%d.out", node)
}

// MovingProgram returns the transient analysis program for b with the
// given damping and load histories.
func MovingProgram(b *bridge.Bridge, alphaM, betaK float64, h *Histories, monitor []int) *fe.Program {
	p := &fe.Program{}
	p.Append(&b.Program)
	p.Exec("wipeAnalysis")
	p.Exec("rayleigh", alphaM, 0.0, 0.0, betaK)
	p.Exec("constraints", "Transformation")
	p.Exec("numberer", "RCM")
	p.Exec("system", "SparseGeneral")
	p.Exec("test", "NormDispIncr", 1e-5, 10)
	p.Exec("algorithm", "Newton")
	p.Exec("integrator", "Newmark", 0.5, 0.25)
	p.Exec("analysis", "Transient")
	for _, n := range monitor {
		p.Exec("recorder", "Node", "-file", AccelFile(n), "-time", "-node", n, "-dof", 3, "accel")
	}

	girders := make([]int, 0, len(h.Loads))
	for g := range h.Loads {
		girders = append(girders, g)
	}
	sort.Ints(girders)
	for _, g := range girders {
		nodes := make([]int, 0, len(h.Loads[g]))
		for n := range h.Loads[g] {
			nodes = append(nodes, n)
		}
		sort.Ints(nodes)
		for _, n := range nodes {
			values := h.Loads[g][n]
			if allZero(values) {
				continue
			}
			ts, pat := 1000*g+n, 2000*g+n
			p.Exec("timeSeries", "Path", ts, "-dt", h.Dt, "-values", values, "-factor", 1.0)
			p.Block("pattern", []any{"Plain", pat, ts},
				fe.Cmd("load", n, 0.0, 0.0, -1.0, 0.0, 0.0, 0.0))
		}
	}
	p.Check("analyze", h.Steps, h.Dt)
	return p
}

func allZero(v []float64) bool {
	for _, x := range v {
		if math.Abs(x) > 1e-8 {
			return false
		}
	}
	return true
}

// MovingLoad runs the moving-load transient analysis of b on eng and
// returns the midspan acceleration of every lane girder.
func MovingLoad(ctx context.Context, eng fe.Engine, b *bridge.Bridge, o MovingOptions) (*MovingResult, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	ev := o.Eigenvalues
	if len(ev) == 0 {
		var err error
		if ev, err = Eigen(ctx, eng, b, o.NumEigen); err != nil {
			return nil, err
		}
	}
	for i, l := range ev {
		if l <= 0 {
			return nil, fmt.Errorf("eigenvalue %d is %g, cannot derive damping", i+1, l)
		}
	}
	alphaM, betaK := Rayleigh(ev, o.Zeta)
	h := LoadHistories(b, o)

	var monitor []int
	seen := map[int]bool{}
	for _, g := range o.LaneGirders {
		if !seen[g] {
			seen[g] = true
			monitor = append(monitor, b.Midspan(g))
		}
	}

	out, err := eng.Run(ctx, MovingProgram(b, alphaM, betaK, h, monitor))
	if err != nil {
		return nil, fmt.Errorf("moving-load analysis: %w", err)
	}
	res := &MovingResult{Eigenvalues: ev, AlphaM: alphaM, BetaK: betaK, Steps: h.Steps, Dt: h.Dt}
	for _, n := range monitor {
		rows, err := out.ReadTable(AccelFile(n))
		if err != nil {
			return nil, fmt.Errorf("moving-load analysis: %w", err)
		}
		tr := Trace{Girder: b.GirderOf(n), Node: n}
		for i, row := range rows {
			if len(row) < 2 {
				return nil, fmt.Errorf("%s row %d: want time and acceleration", AccelFile(n), i+1)
			}
			tr.Time = append(tr.Time, row[0])
			tr.Accel = append(tr.Accel, row[1])
		}
		res.Traces = append(res.Traces, tr)
	}
	return res, nil
}
