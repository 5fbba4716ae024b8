package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Eighth-block glyphs, index n draws n/8 of a cell.
var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
)

// barChart renders values as vertical bars, one column per value after
// resampling to width. Labels go under the first and last column.
func barChart(values []int, width, height int, firstLabel, lastLabel string) []string {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}

	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	axis := fmt.Sprintf("%d", peak)
	axisWidth := runewidth.StringWidth(axis)
	plotWidth := max(minChartWidth, width-axisWidth-3)
	cols := resample(values, plotWidth)

	lines := make([]string, 0, height+2)
	for row := height - 1; row >= 0; row-- {
		var b strings.Builder
		label := ""
		switch row {
		case height - 1:
			label = axis
		case 0:
			label = "0"
		}
		b.WriteString(runewidth.FillLeft(label, axisWidth))
		b.WriteString(" │ ")
		for _, v := range cols {
			b.WriteRune(cell(v, peak, height, row))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}

	footer := strings.Repeat(" ", axisWidth) + " └" + strings.Repeat("─", len(cols)+1)
	lines = append(lines, footer)

	gap := max(1, len(cols)-runewidth.StringWidth(firstLabel)-runewidth.StringWidth(lastLabel))
	lines = append(lines, strings.Repeat(" ", axisWidth+3)+firstLabel+strings.Repeat(" ", gap)+lastLabel)
	return lines
}

// cell returns the glyph for value v in the given row of a chart scaled to peak.
func cell(v, peak, height, row int) rune {
	if peak <= 0 || v <= 0 {
		return ' '
	}
	eighths := v * height * 8 / peak
	filled := eighths - row*8
	switch {
	case filled >= 8:
		return blocks[8]
	case filled <= 0:
		return ' '
	default:
		return blocks[filled]
	}
}

// resample maps values onto exactly n columns. Shorter inputs are stretched,
// longer ones keep the maximum of each bucket so peaks stay visible.
func resample(values []int, n int) []int {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	if len(values) <= n {
		out := make([]int, 0, n)
		for i := range n {
			out = append(out, values[i*len(values)/n])
		}
		return out
	}
	out := make([]int, n)
	for i := range n {
		lo := i * len(values) / n
		hi := max(lo+1, (i+1)*len(values)/n)
		peak := values[lo]
		for _, v := range values[lo:hi] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}
