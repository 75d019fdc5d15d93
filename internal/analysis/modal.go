// Package analysis drives the modal and moving-load analyses of a built
// bridge model through an engine.
package analysis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexiusacademia/bridgepsci/internal/bridge"
	"github.com/alexiusacademia/bridgepsci/internal/fe"
	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/units"
)

// EigenProbe is the probe label of the eigenvalue list.
const EigenProbe = "eigen"

// ModalOptions configures the static check and the eigen extraction.
type ModalOptions struct {
	// CheckNodes are read for vertical deflection.
	CheckNodes []int
	// LoadNodes each carry half of PointLoad.
	LoadNodes [2]int
	// PointLoad is the total vertical load in N, negative downwards.
	PointLoad float64
	NumEigen  int
}

// ModalOptionsFromSet reads check_nodes, load_nodes, point_load_n and
// numEigen, defaulting the nodes to the girder midspans of b.
func ModalOptionsFromSet(s params.Set, b *bridge.Bridge) (ModalOptions, error) {
	var o ModalOptions
	var err error
	if o.PointLoad, err = s.FloatOr("point_load_n", -290*units.KN); err != nil {
		return o, err
	}
	if o.NumEigen, err = s.IntOr("numEigen", 3); err != nil {
		return o, err
	}
	if o.NumEigen < 1 {
		return o, &params.ValueError{Key: "numEigen", Want: "a positive mode count", Got: o.NumEigen}
	}

	if s.Has("check_nodes") {
		if o.CheckNodes, err = s.Ints("check_nodes"); err != nil {
			return o, err
		}
	}
	if len(o.CheckNodes) == 0 {
		for g := 1; g <= len(b.Girders); g++ {
			o.CheckNodes = append(o.CheckNodes, b.Midspan(g))
		}
	}

	mid := len(b.Girders) / 2
	o.LoadNodes = [2]int{b.Midspan(mid), b.Midspan(mid + 1)}
	if s.Has("load_nodes") {
		nodes, err := s.Ints("load_nodes")
		if err != nil {
			return o, err
		}
		switch len(nodes) {
		case 0:
		case 2:
			o.LoadNodes = [2]int{nodes[0], nodes[1]}
		default:
			return o, &params.ValueError{Key: "load_nodes", Want: "two node tags", Got: nodes}
		}
	}

	for _, n := range append(append([]int{}, o.CheckNodes...), o.LoadNodes[:]...) {
		if _, ok := b.Coord(n); !ok {
			return o, fmt.Errorf("node %d is not part of the model", n)
		}
	}
	return o, nil
}

// ModalResult holds the static check and the eigen analysis.
type ModalResult struct {
	CheckNodes  []int
	LoadNodes   [2]int
	PointLoad   float64
	NumEigen    int
	Eigenvalues []float64
	Frequencies []float64
	// Deflections are the vertical displacements (mm) at CheckNodes caused
	// by the point load.
	Deflections []float64
}

func deflectionLabel(stage, node int) string {
	return "d" + strconv.Itoa(stage) + "_" + strconv.Itoa(node)
}

// staticLoad appends one load-controlled static step with a vertical load
// at node under pattern tag.
func staticLoad(p *fe.Program, tag, node int, pz float64) {
	p.Exec("wipeAnalysis")
	p.Exec("timeSeries", "Constant", tag)
	p.Block("pattern", []any{"Plain", tag, tag},
		fe.Cmd("load", node, 0.0, 0.0, pz, 0.0, 0.0, 0.0))
	p.Exec("constraints", "Transformation")
	p.Exec("numberer", "RCM")
	p.Exec("system", "UmfPack")
	p.Exec("test", "NormDispIncr", 1e-6, 5, 0, 2)
	p.Exec("algorithm", "Newton")
	p.Exec("integrator", "LoadControl", 1)
	p.Exec("analysis", "Static")
	p.Check("analyze", 1)
	p.Exec("loadConst", "-time", 0.0)
}

// ModalProgram returns the model followed by the static check and the
// eigen extraction.
func ModalProgram(b *bridge.Bridge, o ModalOptions) *fe.Program {
	p := &fe.Program{}
	p.Append(&b.Program)

	staticLoad(p, 1, o.LoadNodes[0], 0)
	for _, n := range o.CheckNodes {
		p.Probe(deflectionLabel(0, n), "nodeDisp", n, 3)
	}
	staticLoad(p, 2, o.LoadNodes[0], o.PointLoad/2)
	staticLoad(p, 3, o.LoadNodes[1], o.PointLoad/2)
	for _, n := range o.CheckNodes {
		p.Probe(deflectionLabel(1, n), "nodeDisp", n, 3)
	}
	p.Probe(EigenProbe, "eigen", o.NumEigen)
	return p
}

// Modal runs the static check and eigen analysis of b on eng.
func Modal(ctx context.Context, eng fe.Engine, b *bridge.Bridge, o ModalOptions) (*ModalResult, error) {
	out, err := eng.Run(ctx, ModalProgram(b, o))
	if err != nil {
		return nil, fmt.Errorf("modal analysis: %w", err)
	}
	r := &ModalResult{
		CheckNodes: o.CheckNodes,
		LoadNodes:  o.LoadNodes,
		PointLoad:  o.PointLoad,
		NumEigen:   o.NumEigen,
	}
	for _, n := range o.CheckNodes {
		before, err := out.Scalar(deflectionLabel(0, n))
		if err != nil {
			return nil, err
		}
		after, err := out.Scalar(deflectionLabel(1, n))
		if err != nil {
			return nil, err
		}
		r.Deflections = append(r.Deflections, after-before)
	}
	if r.Eigenvalues, err = eigenvalues(out, o.NumEigen); err != nil {
		return nil, err
	}
	r.Frequencies = units.Frequencies(r.Eigenvalues)
	return r, nil
}

func eigenvalues(out *fe.Output, n int) ([]float64, error) {
	ev, err := out.Probe(EigenProbe)
	if err != nil {
		return nil, err
	}
	if len(ev) != n {
		return nil, fmt.Errorf("engine returned %d eigenvalues, want %d", len(ev), n)
	}
	return ev, nil
}

// Eigen runs only the eigen extraction of b.
func Eigen(ctx context.Context, eng fe.Engine, b *bridge.Bridge, n int) ([]float64, error) {
	p := &fe.Program{}
	p.Append(&b.Program)
	p.Probe(EigenProbe, "eigen", n)
	out, err := eng.Run(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("eigen analysis: %w", err)
	}
	return eigenvalues(out, n)
}
