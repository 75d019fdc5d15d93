package opensees

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexiusacademia/bridgepsci/internal/fe"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "OpenSees"

const tailLines = 20

// Runner executes programs with the OpenSees binary, one process and one
// fresh work directory per run.
type Runner struct {
	// Binary is the OpenSees executable; DefaultBinary when empty.
	Binary string
	// WorkDir is the parent of per-run directories; the system temp
	// directory when empty.
	WorkDir string
	// Keep leaves the per-run directory on disk after the run.
	Keep bool
	// Logger receives one line per run; nil discards.
	Logger *log.Logger
}

// EngineError reports an engine run that failed or did not finish.
type EngineError struct {
	Dir      string
	ExitCode int
	Tail     string
	Err      error
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("opensees failed (exit %d) in %s", e.ExitCode, e.Dir)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Tail != "" {
		msg += "\n" + e.Tail
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Err }

// Run renders p into a script, runs it and collects probes and recorder
// files.
func (r *Runner) Run(ctx context.Context, p *fe.Program) (*fe.Output, error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if r.WorkDir != "" {
		if err := os.MkdirAll(r.WorkDir, 0o755); err != nil {
			return nil, err
		}
	}
	dir, err := os.MkdirTemp(r.WorkDir, "opensees-")
	if err != nil {
		return nil, err
	}
	if !r.Keep {
		defer os.RemoveAll(dir)
	}

	var script bytes.Buffer
	if err := Render(&script, p); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ScriptFile), script.Bytes(), 0o644); err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Printf("opensees: %d steps in %s", len(p.Steps), dir)
	var combined bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, ScriptFile)
	cmd.Dir = dir
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	runErr := cmd.Run()
	tail := lastLines(combined.String(), tailLines)

	if runErr != nil {
		ee := &EngineError{Dir: dir, ExitCode: -1, Tail: tail, Err: runErr}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			ee.ExitCode = exitErr.ExitCode()
			ee.Err = nil
		}
		if ctx.Err() != nil {
			ee.Err = ctx.Err()
		}
		return nil, ee
	}

	raw, err := os.ReadFile(filepath.Join(dir, ProbeFile))
	if err != nil {
		return nil, &EngineError{Dir: dir, Tail: tail, Err: fmt.Errorf("no probe file: %w", err)}
	}
	probes, err := fe.ParseProbes(string(raw))
	if err != nil {
		return nil, &EngineError{Dir: dir, Tail: tail, Err: err}
	}
	if _, ok := probes[doneLabel]; !ok {
		return nil, &EngineError{Dir: dir, Tail: tail, Err: errors.New("script stopped before the last step")}
	}
	delete(probes, doneLabel)

	files, err := collect(dir)
	if err != nil {
		return nil, err
	}
	logger.Printf("opensees: finished in %s", time.Since(start).Round(time.Millisecond))
	out := &fe.Output{Probes: probes, Files: files, Log: tail}
	if r.Keep {
		out.Dir = dir
	}
	return out, nil
}

// collect reads every recorder output file of a run.
func collect(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := map[string][]byte{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == ProbeFile || name == ScriptFile {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		files[name] = data
	}
	return files, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
