// Package pipeline runs one analysis case end to end: parameter source,
// case resolution, derivation and validation, model building, the modal
// and moving-load stages, result files and the run catalog.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/alexiusacademia/bridgepsci/internal/analysis"
	"github.com/alexiusacademia/bridgepsci/internal/bridge"
	"github.com/alexiusacademia/bridgepsci/internal/cases"
	"github.com/alexiusacademia/bridgepsci/internal/catalog"
	"github.com/alexiusacademia/bridgepsci/internal/fe"
	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/results"
	"github.com/alexiusacademia/bridgepsci/internal/workbook"
)

// SourceDefaults names the in-code parameter source.
const SourceDefaults = "defaults"

// Stage names recorded in the catalog.
const (
	StageModal  = "modal"
	StageMoving = "moving"
)

// Inputs is a parameter source before case resolution.
type Inputs struct {
	// Source is the workbook path, or SourceDefaults.
	Source   string
	Base     params.Set
	Bearings [][]float64
	Cases    *cases.Table
	// Ignored lists derived keys the workbook set; their values were
	// dropped in favour of the recomputed ones.
	Ignored []string
}

// DefaultInputs returns the in-code defaults with the built-in cases.
func DefaultInputs() *Inputs {
	return &Inputs{Source: SourceDefaults, Base: params.Defaults(), Cases: cases.Builtin()}
}

// LoadInputs reads the parameter source. An empty excel path selects the
// in-code defaults. A YAML case table, when given, replaces the case rows
// of the workbook. The built-in cases stay known as a fallback.
func LoadInputs(excel, casesFile string) (*Inputs, error) {
	in := DefaultInputs()
	if excel != "" {
		wb, err := workbook.Load(excel)
		if err != nil {
			return nil, err
		}
		in = &Inputs{Source: excel, Base: wb.Params, Bearings: wb.Bearings, Cases: wb.Cases, Ignored: wb.Ignored}
	}
	if casesFile != "" {
		t, err := cases.LoadYAML(casesFile)
		if err != nil {
			return nil, err
		}
		in.Cases = t
	}
	if excel != "" || casesFile != "" {
		in.Cases.Fallback = cases.Builtin()
	}
	return in, nil
}

// Resolve applies the overrides of label, recomputes the derived keys and
// checks that every key the model builder reads is present.
func (in *Inputs) Resolve(label string) (params.Set, error) {
	s, err := cases.Resolve(in.Base, label, in.Cases)
	if err != nil {
		return params.Set{}, err
	}
	if s, err = params.Derive(s, in.Bearings); err != nil {
		return params.Set{}, fmt.Errorf("case %s: %w", cases.Normalize(label), err)
	}
	if err := params.Validate(s); err != nil {
		return params.Set{}, fmt.Errorf("case %s: %w", cases.Normalize(label), err)
	}
	return s, nil
}

// FallbackOnly reports whether label is known only through the fallback
// table, so it resolves to the base set without any override.
func (in *Inputs) FallbackOnly(label string) bool {
	label = cases.Normalize(label)
	if label == cases.Baseline || in.Cases == nil || in.Cases.Defines(label) {
		return false
	}
	return in.Cases.Fallback.Defines(label)
}

// Options selects the case and stages of a run.
type Options struct {
	Case   string
	Modal  bool
	Moving bool
	// Plot forces the acceleration plot; the case's plot parameter can
	// also request it.
	Plot bool
}

// Pipeline runs cases against one engine.
type Pipeline struct {
	Engine fe.Engine
	// Timeout bounds every engine run; zero means no limit.
	Timeout time.Duration
	Writer  *results.Writer
	// Catalog, when set, receives one entry per completed run.
	Catalog *catalog.Catalog
	Logger  *log.Logger
}

// Report is the outcome of one run.
type Report struct {
	Run    *results.Run
	Params params.Set
	Bridge *bridge.Bridge
	Paths  []string
	Entry  catalog.Entry
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return p.Logger
}

func (p *Pipeline) engine() fe.Engine {
	if p.Timeout <= 0 {
		return p.Engine
	}
	return fe.EngineFunc(func(ctx context.Context, prog *fe.Program) (*fe.Output, error) {
		ctx, cancel := context.WithTimeout(ctx, p.Timeout)
		defer cancel()
		return p.Engine.Run(ctx, prog)
	})
}

// Build resolves label and builds its model without running any stage.
func Build(in *Inputs, label string) (params.Set, *bridge.Bridge, error) {
	s, err := in.Resolve(label)
	if err != nil {
		return params.Set{}, nil, err
	}
	b, err := bridge.Build(s)
	if err != nil {
		return params.Set{}, nil, fmt.Errorf("case %s: build model: %w", cases.Normalize(label), err)
	}
	return s, b, nil
}

// Run executes the selected stages for one case. Result files are written
// only after every stage succeeded.
func (p *Pipeline) Run(ctx context.Context, in *Inputs, o Options) (*Report, error) {
	if !o.Modal && !o.Moving {
		return nil, errors.New("no analysis stage selected")
	}
	if p.Engine == nil || p.Writer == nil {
		return nil, errors.New("pipeline needs an engine and a result writer")
	}
	label := cases.Normalize(o.Case)
	if label == "" {
		label = cases.Baseline
	}
	logger := p.logger()
	eng := p.engine()

	for _, k := range in.Ignored {
		logger.Printf("warning: %s: derived key %s ignored; it is recomputed from the primary inputs", in.Source, k)
	}
	if in.FallbackOnly(label) {
		logger.Printf("warning: case %s has no overrides in %s; running the base parameters", label, in.Source)
	}

	s, b, err := Build(in, label)
	if err != nil {
		return nil, err
	}
	logger.Printf("case %s: model with %d nodes from %s", label, len(b.Nodes()), in.Source)

	run := results.NewRun(label)
	entry := catalog.Entry{ID: run.ID.String(), Case: label, Source: in.Source, Started: run.Started}

	var eigen []float64
	if o.Modal {
		mo, err := analysis.ModalOptionsFromSet(s, b)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", label, err)
		}
		start := time.Now()
		if run.Modal, err = analysis.Modal(ctx, eng, b, mo); err != nil {
			return nil, fmt.Errorf("case %s: %w", label, err)
		}
		eigen = run.Modal.Eigenvalues
		entry.Stages = append(entry.Stages, StageModal)
		if f := run.Modal.Frequencies; len(f) > 0 && !math.IsNaN(f[0]) && !math.IsInf(f[0], 0) {
			entry.F1 = &f[0]
		}
		logger.Printf("case %s: modal done in %s", label, time.Since(start).Round(time.Millisecond))
	}
	if o.Moving {
		mo, err := analysis.MovingOptionsFromSet(s, b)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", label, err)
		}
		if len(eigen) == mo.NumEigen {
			mo.Eigenvalues = eigen
		}
		start := time.Now()
		if run.Moving, err = analysis.MovingLoad(ctx, eng, b, mo); err != nil {
			return nil, fmt.Errorf("case %s: %w", label, err)
		}
		entry.Stages = append(entry.Stages, StageMoving)
		peak := 0.0
		for _, tr := range run.Moving.Traces {
			peak = math.Max(peak, results.PeakG(tr))
		}
		entry.PeakAccel = &peak
		logger.Printf("case %s: moving load done in %s, %d steps", label,
			time.Since(start).Round(time.Millisecond), run.Moving.Steps)
	}

	w := *p.Writer
	if w.Logger == nil {
		w.Logger = logger
	}
	if plot, err := s.Bool("plot"); err == nil && plot {
		w.Plot = true
	}
	w.Plot = w.Plot || o.Plot
	paths, err := w.Write(run)
	if err != nil {
		return nil, fmt.Errorf("case %s: write results: %w", label, err)
	}

	entry.Finished = time.Now().UTC()
	entry.OutputDir = w.CaseDir(label)
	entry.Files = len(paths)
	if p.Catalog != nil {
		if err := p.Catalog.Record(ctx, entry); err != nil {
			logger.Printf("warning: case %s: results written to %s but not cataloged: %v", label, entry.OutputDir, err)
		}
	}
	return &Report{Run: run, Params: s, Bridge: b, Paths: paths, Entry: entry}, nil
}
