package diagram

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawSummaryBox(t *testing.T) {
	box := DrawSummaryBox("Modal", []string{"f1 = 3.21 Hz", "δ = -1.5 mm"})
	lines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	require.Len(t, lines, 5)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
	assert.Contains(t, box, "δ = -1.5 mm")
}

func TestDrawBars(t *testing.T) {
	out := DrawBars("Frequencies", []string{"f1", "f2"}, []float64{2, 4}, "%.2f Hz")
	assert.Contains(t, out, "f1 │"+strings.Repeat("█", 20)+" 2.00 Hz")
	assert.Contains(t, out, "f2 │"+strings.Repeat("█", 40)+" 4.00 Hz")

	out = DrawBars("Frequencies", []string{"f1"}, []float64{math.NaN()}, "%.2f")
	assert.Contains(t, out, "f1 │ NaN")
}

func TestExportAccelerationPlot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plots", "accel.png")
	err := ExportAccelerationPlot("Midspan", []Series{
		{Label: "Girder 3", X: []float64{0, 0.1, 0.2}, Y: []float64{0, 0.01, -0.02}},
		{Label: "Girder 4", X: []float64{0, 0.1, 0.2}, Y: []float64{0, 0.005, -0.01}},
	}, file)
	require.NoError(t, err)
	assert.FileExists(t, file)

	err = ExportAccelerationPlot("bad", []Series{{Label: "x", X: []float64{0}, Y: nil}}, file)
	assert.Error(t, err)
}

func TestDrawGraph(t *testing.T) {
	assert.Equal(t, []float64{-5, 3}, resample([]float64{1, -5, 2, 3}, 2))
	assert.Equal(t, []float64{1, 2}, resample([]float64{1, 2}, 10))

	out := DrawGraph("accel (g)", []Series{{Label: "Girder 3", Y: []float64{0, 0.01, -0.02, 0.005}}}, 60, 8)
	assert.Contains(t, out, "accel (g)")
	assert.Empty(t, DrawGraph("none", []Series{{Label: "empty"}}, 60, 8))
}
