package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/bridgepsci/internal/cases"
	"github.com/alexiusacademia/bridgepsci/internal/catalog"
	"github.com/alexiusacademia/bridgepsci/internal/fe"
	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/results"
	"github.com/alexiusacademia/bridgepsci/internal/workbook"
)

// fakeEngine answers probes with fixed values and fills every recorder
// file of a transient program.
type fakeEngine struct {
	runs     int
	fail     func(p *fe.Program) error
	deadline bool
}

func (e *fakeEngine) Run(ctx context.Context, p *fe.Program) (*fe.Output, error) {
	e.runs++
	_, e.deadline = ctx.Deadline()
	if e.fail != nil {
		if err := e.fail(p); err != nil {
			return nil, err
		}
	}
	out := &fe.Output{Probes: map[string][]float64{}, Files: map[string][]byte{}}
	for _, s := range p.Steps {
		if s.Kind != fe.Probe {
			continue
		}
		switch s.Cmd.Name {
		case "nodeDisp":
			out.Probes[s.Label] = []float64{0}
			if s.Label[:2] == "d1" {
				out.Probes[s.Label] = []float64{-1.5}
			}
		case "eigen":
			out.Probes[s.Label] = []float64{100, 400, 900}[:s.Cmd.Args[0].(int)]
		}
	}
	for _, c := range p.Find("recorder") {
		out.Files[c.Args[2].(string)] = []byte("0.1 9.81\n0.2 -19.62\n")
	}
	return out, nil
}

func TestRunBothStages(t *testing.T) {
	dir := t.TempDir()
	cat, err := catalog.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer cat.Close()

	eng := &fakeEngine{}
	p := &Pipeline{Engine: eng, Writer: &results.Writer{Dir: filepath.Join(dir, "out")}, Catalog: cat}
	rep, err := p.Run(context.Background(), DefaultInputs(), Options{Case: " Case2 ", Modal: true, Moving: true})
	require.NoError(t, err)

	assert.Equal(t, 2, eng.runs, "moving load reuses the modal eigenvalues")
	assert.Equal(t, "case2", rep.Run.Case)
	m, err := rep.Params.Float("bearing_multiplier")
	require.NoError(t, err)
	assert.Equal(t, 0.5, m)
	assert.Equal(t, []float64{-1.5, -1.5, -1.5, -1.5, -1.5, -1.5}, rep.Run.Modal.Deflections)
	assert.Equal(t, []float64{100, 400, 900}, rep.Run.Moving.Eigenvalues)
	require.Len(t, rep.Paths, 3)
	for _, path := range rep.Paths {
		assert.FileExists(t, path)
	}

	entries, err := cat.List(context.Background(), "case2", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rep.Run.ID.String(), entries[0].ID)
	assert.Equal(t, []string{StageModal, StageMoving}, entries[0].Stages)
	assert.Equal(t, SourceDefaults, entries[0].Source)
	assert.Equal(t, 3, entries[0].Files)
	require.NotNil(t, entries[0].PeakAccel)
	assert.InDelta(t, 0.002, *entries[0].PeakAccel, 1e-12)
	require.NotNil(t, entries[0].F1)
}

func TestRunModalOnly(t *testing.T) {
	eng := &fakeEngine{}
	p := &Pipeline{Engine: eng, Writer: &results.Writer{Dir: t.TempDir()}, Timeout: time.Minute}
	rep, err := p.Run(context.Background(), DefaultInputs(), Options{Modal: true})
	require.NoError(t, err)
	assert.Equal(t, cases.Baseline, rep.Run.Case)
	assert.Nil(t, rep.Run.Moving)
	assert.Len(t, rep.Paths, 1)
	assert.True(t, eng.deadline, "engine runs under the configured timeout")
}

func TestRunMissingParameterWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	eng := &fakeEngine{}
	p := &Pipeline{Engine: eng, Writer: &results.Writer{Dir: out}}
	in := DefaultInputs()
	in.Base = in.Base.Without("girder_length")

	_, err := p.Run(context.Background(), in, Options{Modal: true, Moving: true})
	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Keys, "girder_length")
	assert.Zero(t, eng.runs)
	assert.NoDirExists(t, out)
}

func TestRunStageFailureWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	boom := errors.New("segmentation fault")
	eng := &fakeEngine{fail: func(p *fe.Program) error {
		if p.Count("recorder") > 0 {
			return boom
		}
		return nil
	}}
	p := &Pipeline{Engine: eng, Writer: &results.Writer{Dir: out}}
	_, err := p.Run(context.Background(), DefaultInputs(), Options{Modal: true, Moving: true})
	assert.ErrorIs(t, err, boom)
	assert.NoDirExists(t, out)
}

func TestRunRejects(t *testing.T) {
	p := &Pipeline{Engine: &fakeEngine{}, Writer: &results.Writer{Dir: t.TempDir()}}
	_, err := p.Run(context.Background(), DefaultInputs(), Options{Case: "baseline"})
	assert.ErrorContains(t, err, "no analysis stage")

	_, err = p.Run(context.Background(), DefaultInputs(), Options{Case: "case42", Modal: true})
	var unknown *cases.UnknownCaseError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Known, "case9")
}

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "bridge.xlsx")
	require.NoError(t, workbook.CreateTemplate(xlsx, params.Defaults(), &cases.Table{}))
	yml := filepath.Join(dir, "cases.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(`
cases:
  - label: soft
    overrides:
      - key: bearing_multiplier
        value: 0.2
        type: float
`), 0o644))

	in, err := LoadInputs(xlsx, yml)
	require.NoError(t, err)
	assert.Equal(t, xlsx, in.Source)

	s, err := in.Resolve("SOFT")
	require.NoError(t, err)
	m, err := s.Float("bearing_multiplier")
	require.NoError(t, err)
	assert.Equal(t, 0.2, m)

	_, err = in.Resolve("case5")
	assert.NoError(t, err, "built-in labels stay known")

	_, err = LoadInputs(filepath.Join(dir, "missing.xlsx"), "")
	assert.Error(t, err)
}

func TestResolveRejectsDerivedOverride(t *testing.T) {
	in := DefaultInputs()
	in.Cases = &cases.Table{}
	in.Cases.Add(cases.Override{Case: "soft", Key: "$.Bearing_Stiffness[0][2]", Value: 123.0})

	_, err := in.Resolve("soft")
	var oe *cases.OverrideError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "$.Bearing_Stiffness[0][2]", oe.Key)
	assert.ErrorIs(t, err, cases.ErrDerivedKey)

	in.Cases = &cases.Table{}
	in.Cases.Add(cases.Override{Case: "soft", Key: "$.Bearing_Base_Stiffness[0][2]", Value: 123.0})
	in.Cases.Add(cases.Override{Case: "soft", Key: "bearing_multiplier", Value: 1.0})
	s, err := in.Resolve("soft")
	require.NoError(t, err)
	k, err := s.Matrix("Bearing_Stiffness")
	require.NoError(t, err)
	assert.Equal(t, 123.0, k[0][2])
}

func TestRunCatalogFailureKeepsResults(t *testing.T) {
	dir := t.TempDir()
	cat, err := catalog.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	var logs bytes.Buffer
	p := &Pipeline{
		Engine:  &fakeEngine{},
		Writer:  &results.Writer{Dir: filepath.Join(dir, "out")},
		Catalog: cat,
		Logger:  log.New(&logs, "", 0),
	}
	rep, err := p.Run(context.Background(), DefaultInputs(), Options{Modal: true})
	require.NoError(t, err)
	require.NotEmpty(t, rep.Paths)
	for _, path := range rep.Paths {
		assert.FileExists(t, path)
	}
	assert.Contains(t, logs.String(), "not cataloged")
}

func TestRunWarnsFallbackOnlyCase(t *testing.T) {
	in := DefaultInputs()
	in.Cases = &cases.Table{Fallback: cases.Builtin()}
	in.Cases.Declare("mine")
	in.Ignored = []string{"yt3"}
	assert.True(t, in.FallbackOnly("Case5"))
	assert.False(t, in.FallbackOnly("mine"))
	assert.False(t, in.FallbackOnly(cases.Baseline))
	assert.False(t, DefaultInputs().FallbackOnly("case5"))

	var logs bytes.Buffer
	p := &Pipeline{Engine: &fakeEngine{}, Writer: &results.Writer{Dir: t.TempDir()}, Logger: log.New(&logs, "", 0)}
	rep, err := p.Run(context.Background(), in, Options{Case: "case5", Modal: true})
	require.NoError(t, err)
	assert.Equal(t, "case5", rep.Run.Case)
	assert.Contains(t, logs.String(), "case case5 has no overrides")
	assert.Contains(t, logs.String(), "derived key yt3 ignored")

	logs.Reset()
	_, err = p.Run(context.Background(), in, Options{Case: "mine", Modal: true})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "has no overrides")
}
