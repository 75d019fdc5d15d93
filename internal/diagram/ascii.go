// Package diagram draws analysis results: acceleration plots as images and
// summary boxes and bar charts as text.
package diagram

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"
)

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title, maxLen-4)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line, maxLen-4)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// DrawBars draws one horizontal bar per value, scaled to the largest
// magnitude. Labels are left-aligned and values printed with format.
func DrawBars(title string, labels []string, values []float64, format string) string {
	var sb strings.Builder
	const width = 40

	sb.WriteString("\n")
	sb.WriteString("  " + title + "\n")
	sb.WriteString("  " + strings.Repeat("─", utf8.RuneCountInString(title)) + "\n\n")

	peak := 0.0
	labelWidth := 0
	for i, v := range values {
		if !math.IsNaN(v) {
			peak = math.Max(peak, math.Abs(v))
		}
		if i < len(labels) {
			labelWidth = max(labelWidth, utf8.RuneCountInString(labels[i]))
		}
	}

	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		bar := 0
		if peak > 0 && !math.IsNaN(v) {
			bar = int(math.Round(math.Abs(v) / peak * width))
		}
		sb.WriteString(fmt.Sprintf("  %s │%s %s\n", pad(label, labelWidth),
			strings.Repeat("█", bar), fmt.Sprintf(format, v)))
	}
	return sb.String()
}

// DrawGraph draws the Y values of every series as a terminal line graph,
// resampled to at most width points.
func DrawGraph(caption string, series []Series, width, height int) string {
	var data [][]float64
	for _, s := range series {
		if len(s.Y) == 0 {
			continue
		}
		data = append(data, resample(s.Y, width))
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Precision(4),
		asciigraph.Caption(caption),
	) + "\n"
}

// resample keeps the extreme of each bucket so peaks survive.
func resample(y []float64, n int) []float64 {
	if n <= 0 || len(y) <= n {
		return y
	}
	out := make([]float64, n)
	for i := range out {
		lo, hi := i*len(y)/n, (i+1)*len(y)/n
		out[i] = y[lo]
		for _, v := range y[lo:hi] {
			if math.Abs(v) > math.Abs(out[i]) {
				out[i] = v
			}
		}
	}
	return out
}
