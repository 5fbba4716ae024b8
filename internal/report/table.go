package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// formatTable lays out rows under headers with every column padded to its
// widest cell. Cells in rightAlign columns are right-aligned. When maxWidth is
// positive, cells of truncCol are shortened so each line fits.
func formatTable(headers []string, rows [][]string, rightAlign map[int]bool, maxWidth, truncCol int) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	if maxWidth > 0 && truncCol >= 0 && truncCol < colCount {
		total := colCount - 1
		for _, w := range widths {
			total += w
		}
		if over := total - maxWidth; over > 0 {
			floor := runewidth.StringWidth(headers[truncCol])
			widths[truncCol] = max(floor, widths[truncCol]-over)
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlign))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlign))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlign map[int]bool) string {
	var b strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, width, rightAlign[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, right bool) string {
	if runewidth.StringWidth(value) > width {
		value = runewidth.Truncate(value, width, ellipsis)
	}
	if right {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
