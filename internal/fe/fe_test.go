package fe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelNodesAndMass(t *testing.T) {
	m := NewModel()
	m.Node(2, 1, 2, 3)
	m.Node(1, 0, 0, 0)
	m.Mass(2, 0, 0, 5)

	require.NoError(t, m.Err())
	assert.Equal(t, []Node{{Tag: 2, X: 1, Y: 2, Z: 3}, {Tag: 1}}, m.Nodes())
	assert.Equal(t, []Node{{Tag: 1}, {Tag: 2, X: 1, Y: 2, Z: 3}}, m.Range(0, 10))

	mass := m.Find("mass")
	require.Len(t, mass, 1)
	assert.Equal(t, []any{2, 0.0, 0.0, 5.0, 0.0, 0.0, 0.0}, mass[0].Args)
	assert.Equal(t, 2, m.Count("node"))
}

func TestModelRecordsFirstError(t *testing.T) {
	m := NewModel()
	m.Node(1, 0, 0, 0)
	m.Node(1, 1, 1, 1)
	m.Mass(7, 1)
	assert.EqualError(t, m.Err(), "node 1 defined twice")
	assert.Equal(t, 1, m.Count("node"))
}

func TestProgramSteps(t *testing.T) {
	var p Program
	p.Exec("wipe")
	p.Block("pattern", []any{"Plain", 1, 1}, Cmd("load", 5, 0, 0, -1))
	p.Probe("eigen", "eigen", 3)
	p.Check("analyze", 1)

	require.Len(t, p.Steps, 4)
	assert.Equal(t, Exec, p.Steps[1].Kind)
	assert.Len(t, p.Steps[1].Cmd.Body, 1)
	assert.Equal(t, Probe, p.Steps[2].Kind)
	assert.Equal(t, "eigen", p.Steps[2].Label)
	assert.Equal(t, Check, p.Steps[3].Kind)
	assert.Equal(t, "check", Check.String())

	var q Program
	q.Append(&p)
	assert.Equal(t, p.Steps, q.Steps)
}

func TestEngineFunc(t *testing.T) {
	var got *Program
	e := EngineFunc(func(_ context.Context, p *Program) (*Output, error) {
		got = p
		return &Output{Probes: map[string][]float64{"x": {1}}}, nil
	})
	p := &Program{}
	out, err := e.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Same(t, p, got)

	v, err := out.Scalar("x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = out.Probe("y")
	var pe *ProbeError
	assert.ErrorAs(t, err, &pe)
}

func TestParseProbes(t *testing.T) {
	probes, err := ParseProbes("eigen 1.5 2.5 3.5\n\nd0_1075 -0.25\n")
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"eigen": {1.5, 2.5, 3.5}, "d0_1075": {-0.25}}, probes)

	_, err = ParseProbes("eigen one\n")
	assert.Error(t, err)
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acc.out"), []byte("0.1 2.5\n0.2 -1e-3\n"), 0o644))
	out := &Output{Dir: dir}
	rows, err := out.ReadTable("acc.out")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.1, 2.5}, {0.2, -1e-3}}, rows)

	_, err = out.ReadTable("missing.out")
	assert.Error(t, err)

	mem := &Output{Files: map[string][]byte{"acc.out": []byte("1 2\n")}}
	rows, err = mem.ReadTable("acc.out")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}}, rows)
}
