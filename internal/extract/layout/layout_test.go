package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/extract/table"
)

func word(text string, x0, x1, top float64) Word {
	return Word{Text: text, X0: x0, X1: x1, Top: top, Bottom: top + 8}
}

func TestDetectTablesEmptyPage(t *testing.T) {
	assert.Nil(t, DetectTables(nil, nil))
}

func TestDetectTablesExplicitGrid(t *testing.T) {
	lines := []Line{
		{X0: 10, Y0: 10, X1: 10, Y1: 50},
		{X0: 110, Y0: 10, X1: 110, Y1: 50},
		{X0: 210, Y0: 10, X1: 210, Y1: 50},
		{X0: 310, Y0: 10, X1: 310, Y1: 50},
		{X0: 10, Y0: 10, X1: 310, Y1: 10},
		{X0: 10, Y0: 30, X1: 310, Y1: 30},
		{X0: 10, Y0: 50, X1: 310, Y1: 50},
	}
	words := []Word{
		word("Title", 10, 60, 0),
		word("Name", 20, 50, 14),
		word("Qty", 120, 140, 14),
		word("Price", 220, 250, 14),
		word("Bolt", 20, 45, 34),
		word("4", 120, 126, 34),
		word("9.99", 220, 245, 34),
	}

	regions := DetectTables(words, lines)

	require.Len(t, regions, 1)
	grid := regions[0].Grid
	require.Equal(t, 2, grid.Rows())
	require.Equal(t, 3, grid.Cols())
	assert.Equal(t, []string{"Name", "Qty", "Price"}, []string(grid[0]))
	assert.Equal(t, []string{"Bolt", "4", "9.99"}, []string(grid[1]))
}

func TestDetectTablesDensityFallback(t *testing.T) {
	words := []Word{
		// Prose line: tight spacing, never a table row.
		word("This", 10, 35, 20),
		word("is", 38, 48, 20),
		word("text", 51, 75, 20),
		// Two aligned rows with wide gaps.
		word("Name", 10, 40, 100),
		word("Qty", 100, 125, 100),
		word("Price", 200, 240, 100),
		word("Bolt", 10, 40, 112),
		word("4", 100, 108, 112),
		word("9.99", 200, 230, 112),
	}

	regions := DetectTables(words, nil)

	require.Len(t, regions, 1)
	grid := regions[0].Grid
	require.Equal(t, 2, grid.Rows())
	require.Equal(t, 3, grid.Cols())
	assert.Equal(t, "Name", grid[0][0])
	assert.Equal(t, "9.99", grid[1][2])
}

func TestDetectTablesDensityIgnoresLonePair(t *testing.T) {
	// Two cells on a single row do not make a table.
	words := []Word{
		word("Left", 10, 40, 20),
		word("Right", 200, 240, 20),
		word("prose", 10, 45, 60),
	}

	assert.Empty(t, DetectTables(words, nil))
}

func TestComposeOrdersByVerticalPosition(t *testing.T) {
	region := Region{
		BBox: Rect{X0: 10, Top: 90, X1: 250, Bottom: 130},
		Grid: table.Grid{{"Name", "Qty"}},
	}
	words := []Word{
		word("Intro", 10, 45, 20),
		word("inside", 20, 60, 100), // falls inside the region box
		word("Outro", 10, 45, 200),
	}

	composed := Compose(words, []Region{region})

	assert.NotContains(t, composed, "inside")
	introIdx := strings.Index(composed, "Intro")
	tableIdx := strings.Index(composed, Placeholder)
	outroIdx := strings.Index(composed, "Outro")
	require.True(t, introIdx >= 0 && tableIdx >= 0 && outroIdx >= 0)
	assert.Less(t, introIdx, tableIdx)
	assert.Less(t, tableIdx, outroIdx)
}

func TestClusterRows(t *testing.T) {
	words := []Word{
		word("b", 50, 60, 10.5),
		word("a", 10, 20, 10),
		word("c", 10, 20, 40),
	}

	rows := ClusterRows(words)

	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0][0].Text)
	assert.Equal(t, "b", rows[0][1].Text)
	assert.Equal(t, "c", rows[1][0].Text)
}
