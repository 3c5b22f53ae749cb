package layout

import (
	"sort"
	"strings"

	"docubot/internal/extract/table"
)

// detectExplicit builds a cell grid from rule-line boundaries. The vertical
// and horizontal positions must already be clustered; the cells are the
// spans between consecutive boundaries, and every word whose center falls
// inside the outer rectangle is assigned to exactly one cell.
func detectExplicit(words []Word, vertical, horizontal []float64) (Region, bool) {
	cols := len(vertical) - 1
	rows := len(horizontal) - 1
	if cols < 1 || rows < 1 {
		return Region{}, false
	}

	bbox := Rect{
		X0:     vertical[0],
		X1:     vertical[len(vertical)-1],
		Top:    horizontal[0],
		Bottom: horizontal[len(horizontal)-1],
	}

	cells := make([][][]Word, rows)
	for r := range cells {
		cells[r] = make([][]Word, cols)
	}

	assigned := false
	for _, w := range words {
		hMid := (w.X0 + w.X1) / 2
		vMid := (w.Top + w.Bottom) / 2
		if !bbox.contains(hMid, vMid) {
			continue
		}
		col := intervalIndex(vertical, hMid)
		row := intervalIndex(horizontal, vMid)
		if col < 0 || row < 0 {
			continue
		}
		cells[row][col] = append(cells[row][col], w)
		assigned = true
	}
	if !assigned {
		return Region{}, false
	}

	grid := make(table.Grid, rows)
	for r := range cells {
		grid[r] = make([]string, cols)
		for c := range cells[r] {
			grid[r][c] = joinCellWords(cells[r][c])
		}
	}

	return Region{BBox: bbox, Grid: grid}, true
}

func intervalIndex(boundaries []float64, v float64) int {
	for i := 0; i+1 < len(boundaries); i++ {
		if v >= boundaries[i] && v < boundaries[i+1] {
			return i
		}
	}
	return -1
}

// detectByDensity finds tables without rule lines: words are clustered into
// physical rows, rows are split into cells at large horizontal gaps, and
// runs of adjacent multi-cell rows become table regions.
type rowInfo struct {
	cells [][]Word
	top   float64
}

func detectByDensity(words []Word) []Region {
	rows := ClusterRows(words)

	infos := make([]rowInfo, len(rows))
	for i, row := range rows {
		infos[i] = rowInfo{
			cells: splitCells(row),
			top:   row[0].Top,
		}
	}

	var regions []Region
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := infos[start:end]
		if regionOK(run) {
			var runRows [][][]Word
			for _, ri := range run {
				runRows = append(runRows, ri.cells)
			}
			regions = append(regions, buildRegion(runRows))
		}
		start = -1
	}

	for i, ri := range infos {
		tabular := len(ri.cells) >= 2
		if tabular && start >= 0 && ri.top-infos[i-1].top > maxRowGap {
			flush(i)
		}
		if tabular {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(infos))

	return regions
}

// regionOK requires at least two rows and one row with three or more cells,
// so a pair of spaced words does not register as a table.
func regionOK(run []rowInfo) bool {
	if len(run) < 2 {
		return false
	}
	for _, ri := range run {
		if len(ri.cells) >= 3 {
			return true
		}
	}
	return false
}

// splitCells breaks a left-to-right sorted row into cells at horizontal
// gaps wider than colGap.
func splitCells(row []Word) [][]Word {
	if len(row) == 0 {
		return nil
	}
	var cells [][]Word
	current := []Word{row[0]}
	for _, w := range row[1:] {
		prev := current[len(current)-1]
		if w.X0-prev.X1 > colGap {
			cells = append(cells, current)
			current = []Word{w}
			continue
		}
		current = append(current, w)
	}
	cells = append(cells, current)
	return cells
}

// buildRegion aligns the cells of a run of rows into shared columns. Column
// positions come from clustering the cell start coordinates across all rows;
// each cell lands in the nearest column, concatenating on collision.
func buildRegion(runRows [][][]Word) Region {
	var starts []float64
	for _, cells := range runRows {
		for _, cell := range cells {
			starts = append(starts, cell[0].X0)
		}
	}
	columns := clusterPositions(starts, colTolerance)

	grid := make(table.Grid, len(runRows))
	bbox := Rect{X0: 1e18, Top: 1e18, X1: -1e18, Bottom: -1e18}

	for r, cells := range runRows {
		grid[r] = make([]string, len(columns))
		for _, cell := range cells {
			col := nearestColumn(columns, cell[0].X0)
			text := joinCellWords(cell)
			if grid[r][col] == "" {
				grid[r][col] = text
			} else {
				grid[r][col] += " " + text
			}
			for _, w := range cell {
				bbox = expand(bbox, w)
			}
		}
	}

	return Region{BBox: bbox, Grid: grid}
}

func nearestColumn(columns []float64, x float64) int {
	best := 0
	bestDist := -1.0
	for i, c := range columns {
		d := x - c
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func expand(r Rect, w Word) Rect {
	if w.X0 < r.X0 {
		r.X0 = w.X0
	}
	if w.X1 > r.X1 {
		r.X1 = w.X1
	}
	if w.Top < r.Top {
		r.Top = w.Top
	}
	if w.Bottom > r.Bottom {
		r.Bottom = w.Bottom
	}
	return r
}

func joinCellWords(cell []Word) string {
	if len(cell) == 0 {
		return ""
	}
	sorted := make([]Word, len(cell))
	copy(sorted, cell)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})
	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
