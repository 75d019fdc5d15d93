// Package results writes per-case analysis output: the modal record as
// JSON, one acceleration table per monitored node as CSV, and an optional
// acceleration plot.
package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexiusacademia/bridgepsci/internal/analysis"
	"github.com/alexiusacademia/bridgepsci/internal/diagram"
	"github.com/alexiusacademia/bridgepsci/internal/units"
)

// Run is everything one case produced.
type Run struct {
	ID      uuid.UUID
	Case    string
	Started time.Time
	Modal   *analysis.ModalResult
	Moving  *analysis.MovingResult
}

// NewRun starts a run record for label.
func NewRun(label string) *Run {
	return &Run{ID: uuid.New(), Case: label, Started: time.Now().UTC()}
}

// Number is a float that encodes NaN and infinities as null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func numbers(v []float64) []Number {
	out := make([]Number, len(v))
	for i, x := range v {
		out[i] = Number(x)
	}
	return out
}

// ModalRecord is the JSON document of a modal analysis.
type ModalRecord struct {
	RunID       string   `json:"run_id"`
	CaseLabel   string   `json:"case_label"`
	CreatedAt   string   `json:"created_at"`
	CheckNodes  []int    `json:"check_nodes"`
	LoadNodes   []int    `json:"load_nodes"`
	PointLoadN  float64  `json:"point_load_n"`
	NumEigen    int      `json:"num_eigen"`
	Eigenvalues []Number `json:"eigen_values"`
	Frequencies []Number `json:"natural_frequency_hz"`
	Deflections []Number `json:"static_deflections_mm"`
}

// NewModalRecord builds the modal record of r.
func NewModalRecord(r *Run) ModalRecord {
	m := r.Modal
	return ModalRecord{
		RunID:       r.ID.String(),
		CaseLabel:   r.Case,
		CreatedAt:   r.Started.Format(time.RFC3339),
		CheckNodes:  m.CheckNodes,
		LoadNodes:   m.LoadNodes[:],
		PointLoadN:  m.PointLoad,
		NumEigen:    m.NumEigen,
		Eigenvalues: numbers(m.Eigenvalues),
		Frequencies: numbers(m.Frequencies),
		Deflections: numbers(m.Deflections),
	}
}

// ReadModalRecord decodes a modal record file.
func ReadModalRecord(path string) (*ModalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec ModalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rec, nil
}

// PeakG returns the largest acceleration magnitude of tr in g.
func PeakG(tr analysis.Trace) float64 {
	peak := 0.0
	for _, a := range tr.Accel {
		peak = math.Max(peak, math.Abs(units.AccelToG(a)))
	}
	return peak
}

// AccelSeries converts traces to plot series in g, one per girder.
func AccelSeries(traces []analysis.Trace) []diagram.Series {
	series := make([]diagram.Series, 0, len(traces))
	for _, tr := range traces {
		g := make([]float64, len(tr.Accel))
		for i, a := range tr.Accel {
			g[i] = units.AccelToG(a)
		}
		series = append(series, diagram.Series{Label: fmt.Sprintf("Girder %d", tr.Girder), X: tr.Time, Y: g})
	}
	return series
}

// Writer writes run output below Dir, one sub-directory per case.
type Writer struct {
	Dir string
	// Plot adds an acceleration plot when the run has moving-load traces.
	Plot bool
	// PlotExt is the plot format extension; ".png" when empty.
	PlotExt string
	Logger  *log.Logger
}

// ModalFile is the modal record file name of a case.
func ModalFile(label string) string { return label + "_modal_results.json" }

// AccelFile is the acceleration table of the midspan of girder.
func AccelFile(label string, girder int) string {
	return fmt.Sprintf("%s_mid_accel_g%d.csv", label, girder)
}

// PlotFile is the acceleration plot file name.
func PlotFile(label, ext string) string { return label + "_mid_accel" + ext }

// CaseDir returns the output directory of label.
func (w *Writer) CaseDir(label string) string {
	return filepath.Join(w.Dir, label)
}

// Write writes every file of r and returns their paths. The files are
// staged first, so a failure leaves no partial output for the case.
func (w *Writer) Write(r *Run) ([]string, error) {
	if err := checkLabel(r.Case); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, err
	}
	stage, err := os.MkdirTemp(w.Dir, "."+r.Case+"-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(stage)

	var names []string
	if r.Modal != nil {
		name := ModalFile(r.Case)
		if err := writeJSON(filepath.Join(stage, name), NewModalRecord(r)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if r.Moving != nil {
		for _, tr := range r.Moving.Traces {
			name := AccelFile(r.Case, tr.Girder)
			if err := writeTrace(filepath.Join(stage, name), tr); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
		if series := AccelSeries(r.Moving.Traces); w.Plot && len(series) > 0 {
			ext := w.PlotExt
			if ext == "" {
				ext = ".png"
			}
			name := PlotFile(r.Case, ext)
			title := fmt.Sprintf("Midspan acceleration, %s", r.Case)
			if err := diagram.ExportAccelerationPlot(title, series, filepath.Join(stage, name)); err != nil {
				return nil, fmt.Errorf("plot: %w", err)
			}
			names = append(names, name)
		}
	}

	final := w.CaseDir(r.Case)
	if err := os.MkdirAll(final, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		dst := filepath.Join(final, name)
		if err := os.Rename(filepath.Join(stage, name), dst); err != nil {
			return nil, err
		}
		paths = append(paths, dst)
	}
	if w.Logger != nil {
		w.Logger.Printf("wrote %d files to %s", len(paths), final)
	}
	return paths, nil
}

func checkLabel(label string) error {
	if label == "" || label == "." || label == ".." || strings.ContainsAny(label, `/\:`) {
		return fmt.Errorf("case label %q cannot name an output directory", label)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeTrace(path string, tr analysis.Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTrace(f, tr)
}

// WriteTrace writes tr as CSV with columns time_s, accel_mm_s2, accel_g.
func WriteTrace(w io.Writer, tr analysis.Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time_s", "accel_mm_s2", "accel_g"}); err != nil {
		return err
	}
	for i := range tr.Time {
		a := tr.Accel[i]
		rec := []string{
			strconv.FormatFloat(tr.Time[i], 'g', -1, 64),
			strconv.FormatFloat(a, 'g', -1, 64),
			strconv.FormatFloat(units.AccelToG(a), 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
