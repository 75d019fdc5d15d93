package opensees

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/bridgepsci/internal/fe"
)

func TestRender(t *testing.T) {
	var p fe.Program
	p.Exec("model", "basic", "-ndm", 3, "-ndf", 6)
	p.Exec("node", 1001, -1.5, 2080.0, -1037.485)
	p.Block("section", []any{"Fiber", 1001, "-GJ", 2.5e12},
		fe.Cmd("patch", "quad", 1001, 2, 5, -170, -350, 0, -350, 0, 350, -170, 350),
		fe.Cmd("layer", "straight", 101, 1, 603.24, -1800.0, 0.0, -1800.0, 0.0),
	)
	p.Block("pattern", []any{"Plain", 1, 1})
	p.Exec("timeSeries", "Path", 3001, "-time", []float64{0, 0.1}, "-values", []float64{0, 0.5})
	p.Probe("eigen", "eigen", 3)
	p.Check("analyze", 1)
	p.Exec("recorder", "Node", "-file", "my file.out")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &p))

	want := `set __probe [open "probes.out" w]
model basic -ndm 3 -ndf 6
node 1001 -1.5 2080 -1037.485
section Fiber 1001 -GJ 2.5e+12 {
	patch quad 1001 2 5 -170 -350 0 -350 0 350 -170 350
	layer straight 101 1 603.24 -1800 0 -1800 0
}
pattern Plain 1 1 {
}
timeSeries Path 3001 -time {0 0.1} -values {0 0.5}
puts $__probe "eigen [eigen 3]"
if {[analyze 1] != 0} {
	puts stderr "bridgepsci: analyze failed"
	close $__probe
	exit 2
}
recorder Node -file {my file.out}
puts $__probe "__done 1"
wipe
close $__probe
`
	assert.Equal(t, want, buf.String())
}

func TestRenderRejectsBadProbeLabel(t *testing.T) {
	var p fe.Program
	p.Probe("two words", "eigen", 1)
	assert.Error(t, Render(&bytes.Buffer{}, &p))
}

// fakeEngine writes a shell script that stands in for the OpenSees binary.
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine")
	}
	path := filepath.Join(t.TempDir(), "OpenSees")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunnerCollectsProbesAndFiles(t *testing.T) {
	bin := fakeEngine(t, `test -f script.tcl || exit 9
printf 'eigen 100 400 900\n__done 1\n' > probes.out
printf '0.1 5.0\n0.2 -3.0\n' > accel_3075.out
`)
	r := &Runner{Binary: bin, WorkDir: t.TempDir()}
	out, err := r.Run(context.Background(), &fe.Program{})
	require.NoError(t, err)

	eig, err := out.Probe("eigen")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 400, 900}, eig)
	_, err = out.Probe("__done")
	assert.Error(t, err)

	rows, err := out.ReadTable("accel_3075.out")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.1, 5}, {0.2, -3}}, rows)

	entries, err := os.ReadDir(r.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "work directory must be removed")
}

func TestRunnerKeepsWorkDir(t *testing.T) {
	bin := fakeEngine(t, `printf '__done 1\n' > probes.out
`)
	r := &Runner{Binary: bin, WorkDir: t.TempDir(), Keep: true}
	out, err := r.Run(context.Background(), &fe.Program{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out.Dir, ScriptFile))
}

func TestRunnerFailure(t *testing.T) {
	bin := fakeEngine(t, `echo "WARNING analysis failed"
exit 2
`)
	r := &Runner{Binary: bin, WorkDir: t.TempDir()}
	_, err := r.Run(context.Background(), &fe.Program{})
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.ExitCode)
	assert.Contains(t, ee.Tail, "analysis failed")
}

func TestRunnerIncompleteScript(t *testing.T) {
	bin := fakeEngine(t, `printf 'eigen 1\n' > probes.out
`)
	r := &Runner{Binary: bin, WorkDir: t.TempDir()}
	_, err := r.Run(context.Background(), &fe.Program{})
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.ErrorContains(t, err, "stopped before the last step")
}

func TestRunnerMissingBinary(t *testing.T) {
	r := &Runner{Binary: filepath.Join(t.TempDir(), "no-such-opensees"), WorkDir: t.TempDir()}
	_, err := r.Run(context.Background(), &fe.Program{})
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, -1, ee.ExitCode)
}
