package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWrappedRows(t *testing.T) {
	raw := Grid{
		{"Product Name", "Description", "Price"},
		{"Super Deluxe", "This is a long", "$99.99"},
		{"Widget", "description that", ""},
		{"Basic Widget", "Simple widget", "$49.99"},
	}

	merged := MergeWrappedRows(raw)

	require.Len(t, merged, 3)
	assert.Equal(t, []string{"Product Name", "Description", "Price"}, merged[0])
	assert.Equal(t, []string{"Super Deluxe Widget", "This is a long description that", "$99.99"}, merged[1])
	assert.Equal(t, []string{"Basic Widget", "Simple widget", "$49.99"}, merged[2])
}

func TestMergeWrappedRowsStableOnFullRows(t *testing.T) {
	full := Grid{
		{"A", "B", "C", "D"},
		{"1", "x", "y", "z"},
		{"2", "p", "q", "r"},
	}

	once := MergeWrappedRows(full)
	twice := MergeWrappedRows(once)

	assert.Equal(t, full, once)
	assert.Equal(t, once, twice)
}

func TestMergeWrappedRowsNormalizesEmbeddedBreaks(t *testing.T) {
	raw := Grid{
		{"Name", "Notes", "Qty"},
		{"Bolt", "spans\nmultiple", "4"},
		{"", "lines", ""},
	}

	merged := MergeWrappedRows(raw)

	require.Len(t, merged, 2)
	assert.Equal(t, "spans multiple lines", merged[1][1])
}

func TestMergeWrappedRowsEmptyGrid(t *testing.T) {
	assert.Empty(t, MergeWrappedRows(nil))
	assert.Equal(t, Grid{{"only"}}, MergeWrappedRows(Grid{{"only"}}))
}

func TestIsContinuationColumnCountMismatch(t *testing.T) {
	a := Grid{{"h1", "h2", "h3"}, {"1", "2", "3"}}
	b := Grid{{"h1", "h2"}, {"4", "5"}}

	assert.False(t, IsContinuation(a, b))
}

func TestIsContinuationTypeCompatibility(t *testing.T) {
	a := Grid{
		{"Date", "ID", "Name", "Amount"},
		{"2024-01-02", "17", "alpha", "940"},
	}
	numericDate := Grid{
		{"2024-01-03", "18", "beta", "950"},
	}
	textWhereNumeric := Grid{
		{"2024-01-03", "eighteen", "beta", "950"},
	}

	assert.True(t, IsContinuation(a, numericDate))
	assert.False(t, IsContinuation(a, textWhereNumeric))
}

func TestIsContinuationEmptyCellsAreWildcards(t *testing.T) {
	a := Grid{
		{"Date", "ID", "Name", "Amount"},
		{"2024-01-02", "", "alpha", "940"},
	}
	b := Grid{
		{"01/03/2024", "words", "", "950"},
	}

	assert.True(t, IsContinuation(a, b))
}

func TestIsContinuationEmptyTables(t *testing.T) {
	assert.False(t, IsContinuation(nil, Grid{{"a"}}))
	assert.False(t, IsContinuation(Grid{{"a"}}, nil))
}

func TestMergeDropsDuplicateHeader(t *testing.T) {
	a := Grid{
		{"City", "Pop", "Code"},
		{"Lyon", "500000", "69"},
	}
	b := Grid{
		{"City", "Pop", "Code"},
		{"Nice", "340000", "06"},
	}

	merged := Merge(a, b)

	require.Len(t, merged, 3)
	assert.Equal(t, "Lyon", merged[1][0])
	assert.Equal(t, "Nice", merged[2][0])
}

func TestMergeKeepsDistinctFirstRow(t *testing.T) {
	a := Grid{
		{"City", "Pop", "Code"},
		{"Lyon", "500000", "69"},
	}
	b := Grid{
		{"Nice", "340000", "06"},
		{"Lille", "230000", "59"},
	}

	merged := Merge(a, b)

	assert.Len(t, merged, 4)
}

func TestResolveContinuationsAcrossPages(t *testing.T) {
	pages := [][]Grid{
		{
			{
				{"Date", "ID", "Name", "Amount"},
				{"2024-01-02", "17", "alpha", "940"},
			},
		},
		{
			{
				{"2024-01-03", "18", "beta", "950"},
				{"2024-01-04", "19", "gamma", "960"},
			},
		},
	}

	resolved := ResolveContinuations(pages)

	require.Len(t, resolved[0], 1)
	require.Len(t, resolved[1], 1)
	assert.Nil(t, resolved[1][0], "continuation must not be re-emitted standalone")
	assert.Len(t, resolved[0][0], 4)
}

func TestResolveContinuationsChainsForward(t *testing.T) {
	pages := [][]Grid{
		{{{"ID", "Val", "X", "Y"}, {"1", "a", "b", "c"}}},
		{{{"2", "d", "e", "f"}}},
		{{{"3", "g", "h", "i"}}},
	}

	resolved := ResolveContinuations(pages)

	require.Len(t, resolved[0][0], 4)
	assert.Nil(t, resolved[1][0])
	assert.Nil(t, resolved[2][0])
}

func TestResolveContinuationsOnlyLastTableEligible(t *testing.T) {
	pages := [][]Grid{
		{
			{{"ID", "Val"}, {"1", "a"}},
			{{"Other", "Header", "Cols"}, {"x", "y", "z"}},
		},
		{{{"2", "b"}}},
	}

	resolved := ResolveContinuations(pages)

	// The first table of page 0 is not last on its page, so page 1's table
	// stays standalone even though the shapes line up.
	assert.Len(t, resolved[0][0], 2)
	assert.NotNil(t, resolved[1][0])
}

func TestResolveContinuationsMismatchedColumns(t *testing.T) {
	pages := [][]Grid{
		{{{"A", "B", "C"}, {"1", "2", "3"}}},
		{{{"4", "5"}}},
	}

	resolved := ResolveContinuations(pages)

	assert.Len(t, resolved[0][0], 2)
	assert.NotNil(t, resolved[1][0])
}

func TestResolveContinuationsEmptyPage(t *testing.T) {
	pages := [][]Grid{
		{{{"A", "B", "C"}, {"1", "2", "3"}}},
		{},
	}

	resolved := ResolveContinuations(pages)

	assert.Len(t, resolved[0][0], 2)
	assert.Empty(t, resolved[1])
}

func TestRender(t *testing.T) {
	g := Grid{
		{"Name", "Qty"},
		{"Bolt\nM6", "4"},
	}

	assert.Equal(t, "|Name|Qty|\n|Bolt M6|4|", Render(g))
}
