package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// RenderTable renders an aligned table with a header separator line. Widths
// are measured with lipgloss.Width so styled cells line up.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := columnWidths(headers, rows)

	var b strings.Builder
	for i, h := range headers {
		writeCell(&b, StyleHeader.Render(h), lipgloss.Width(h), widths, i)
	}
	b.WriteString("\n")

	for i, w := range widths {
		sep := StyleDim.Render(strings.Repeat("─", w))
		writeCell(&b, sep, w, widths, i)
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			writeCell(&b, cell, lipgloss.Width(cell), widths, i)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderKeyValues renders "  Label:  value" lines with the labels padded to
// the same width.
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		label := p[0] + ":"
		b.WriteString("  ")
		b.WriteString(label)
		b.WriteString(strings.Repeat(" ", width+colGap-lipgloss.Width(p[0])))
		b.WriteString(p[1])
		b.WriteString("\n")
	}
	return b.String()
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// writeCell writes a cell and pads it to its column. The last column is not
// padded.
func writeCell(b *strings.Builder, rendered string, visible int, widths []int, i int) {
	b.WriteString(rendered)
	if i == len(widths)-1 {
		return
	}
	pad := widths[i] - visible
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad+colGap))
}
