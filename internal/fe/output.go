package fe

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Output is what an engine run leaves behind: probe values by label,
// recorder files, and the tail of the engine log. Recorder files are read
// from Files when the engine collected them, otherwise from Dir.
type Output struct {
	Dir    string
	Probes map[string][]float64
	Files  map[string][]byte
	Log    string
}

// ProbeError reports a probe label the run did not produce.
type ProbeError struct {
	Label string
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("engine produced no value for probe %q", e.Label)
}

// Probe returns the values reported under label.
func (o *Output) Probe(label string) ([]float64, error) {
	v, ok := o.Probes[label]
	if !ok {
		return nil, &ProbeError{Label: label}
	}
	return v, nil
}

// Scalar returns the single value reported under label.
func (o *Output) Scalar(label string) (float64, error) {
	v, err := o.Probe(label)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("probe %q: want one value, got %d", label, len(v))
	}
	return v[0], nil
}

// ReadTable reads a whitespace-separated numeric recorder file from the
// output directory, one row per line.
func (o *Output) ReadTable(name string) ([][]float64, error) {
	var r io.Reader
	if data, ok := o.Files[name]; ok {
		r = bytes.NewReader(data)
	} else {
		f, err := os.Open(filepath.Join(o.Dir, name))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var rows [][]float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", name, line, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, sc.Err()
}

// ParseProbes reads "label v1 v2 ..." lines as written by an engine script.
func ParseProbes(text string) (map[string][]float64, error) {
	out := map[string][]float64{}
	for n, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		vals := make([]float64, 0, len(fields)-1)
		for _, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("probe line %d (%s): %w", n+1, fields[0], err)
			}
			vals = append(vals, v)
		}
		out[fields[0]] = vals
	}
	return out, nil
}
