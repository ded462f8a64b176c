package formatter

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := ansi.Strip(RenderTable(
		[]string{"Step", "Days"},
		[][]string{{"Laptop setup", "1"}, {"HR", "12"}},
	))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Step          Days", lines[0])
	assert.Equal(t, "────────────  ────", lines[1])
	assert.Equal(t, "Laptop setup  1", lines[2])
	assert.Equal(t, "HR            12", lines[3])
}

func TestRenderTable_StyledCellsMeasuredByVisibleWidth(t *testing.T) {
	out := ansi.Strip(RenderTable(
		[]string{"Outcome", "N"},
		[][]string{{StyleGreen.Render("ok"), "1"}, {"failed", "2"}},
	))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ok       1", lines[2])
	assert.Equal(t, "failed   2", lines[3])
}

func TestRenderTable_ShortRowsAndNoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))

	out := ansi.Strip(RenderTable([]string{"A", "B"}, [][]string{{"only"}}))
	assert.Contains(t, out, "only")
}

func TestRenderKeyValues_PadsLabels(t *testing.T) {
	out := ansi.Strip(RenderKeyValues([][2]string{{"A", "1"}, {"Longer", "2"}}))

	assert.Equal(t, "  A:       1\n  Longer:  2\n", out)
}
