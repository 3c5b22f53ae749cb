// Package layout locates tabular regions on a page from position-tagged
// words and composes table blocks and loose words back into one text stream
// ordered by vertical position. All functions are pure; coordinates grow
// rightward and downward.
package layout

import (
	"sort"
	"strings"

	"docubot/internal/extract/table"
)

// Word is one position-tagged token on a page.
type Word struct {
	Text   string
	X0, X1 float64
	Top    float64
	Bottom float64
}

// Line is a geometric rule line (from drawn edges or curves), used by the
// explicit detection strategy.
type Line struct {
	X0, Y0, X1, Y1 float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X0, Top, X1, Bottom float64
}

func (r Rect) contains(x, y float64) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Top && y < r.Bottom
}

// Region is one detected table: its bounding box and the raw cell grid.
// The grid still needs the wrapped-row and continuation passes.
type Region struct {
	BBox Rect
	Grid table.Grid
}

// Placeholder marks a table's slot in the composed text stream until the
// merged table content is substituted in.
const Placeholder = "\n[[TABLE]]\n"

const (
	rowTolerance   = 3.0  // max Top delta for words on the same physical row
	colGap         = 15.0 // min horizontal gap separating two cells in a row
	colTolerance   = 12.0 // max X0 delta when clustering cell starts into columns
	maxRowGap      = 20.0 // max vertical distance between consecutive table rows
	axisTolerance  = 1.0  // max deviation for a line to count as axis-aligned
	boundTolerance = 3.0  // cluster tolerance for rule-line positions
)

// DetectTables finds tabular regions. With at least two vertical and two
// horizontal rule lines the explicit strategy is used; otherwise detection
// falls back to a text-density heuristic over the word positions.
func DetectTables(words []Word, lines []Line) []Region {
	if len(words) == 0 {
		return nil
	}

	vertical, horizontal := splitAxisLines(lines)
	if len(vertical) >= 2 && len(horizontal) >= 2 {
		if region, ok := detectExplicit(words, vertical, horizontal); ok {
			return []Region{region}
		}
	}
	return detectByDensity(words)
}

// Compose orders loose words and table placeholders by vertical position.
// Words inside a region's bounding box are dropped; each region contributes
// a single placeholder at its top edge.
func Compose(words []Word, regions []Region) string {
	type element struct {
		top     float64
		content string
	}

	var elements []element
	for _, w := range words {
		vMid := (w.Top + w.Bottom) / 2
		hMid := (w.X0 + w.X1) / 2
		inTable := false
		for _, r := range regions {
			if r.BBox.contains(hMid, vMid) {
				inTable = true
				break
			}
		}
		if !inTable {
			elements = append(elements, element{top: w.Top, content: w.Text + " "})
		}
	}
	for _, r := range regions {
		elements = append(elements, element{top: r.BBox.Top, content: Placeholder})
	}

	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].top < elements[j].top
	})

	var sb strings.Builder
	for _, el := range elements {
		sb.WriteString(el.content)
	}
	return sb.String()
}

// ClusterRows groups words into physical rows by Top position, returning
// rows in reading order with their words sorted left to right.
func ClusterRows(words []Word) [][]Word {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var rows [][]Word
	current := []Word{sorted[0]}
	rowTop := sorted[0].Top
	for _, w := range sorted[1:] {
		if w.Top-rowTop <= rowTolerance {
			current = append(current, w)
			continue
		}
		rows = append(rows, sortRow(current))
		current = []Word{w}
		rowTop = w.Top
	}
	rows = append(rows, sortRow(current))
	return rows
}

func sortRow(row []Word) []Word {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X0 < row[j].X0 })
	return row
}

func splitAxisLines(lines []Line) (vertical, horizontal []float64) {
	for _, l := range lines {
		dx := l.X1 - l.X0
		if dx < 0 {
			dx = -dx
		}
		dy := l.Y1 - l.Y0
		if dy < 0 {
			dy = -dy
		}
		switch {
		case dx <= axisTolerance && dy > axisTolerance:
			vertical = append(vertical, l.X0)
		case dy <= axisTolerance && dx > axisTolerance:
			horizontal = append(horizontal, l.Y0)
		}
	}
	vertical = clusterPositions(vertical, boundTolerance)
	horizontal = clusterPositions(horizontal, boundTolerance)
	return vertical, horizontal
}

// clusterPositions deduplicates near-identical coordinates, returning the
// sorted cluster centers.
func clusterPositions(positions []float64, tol float64) []float64 {
	if len(positions) == 0 {
		return nil
	}
	sort.Float64s(positions)

	var centers []float64
	start := 0
	for i := 1; i <= len(positions); i++ {
		if i == len(positions) || positions[i]-positions[i-1] > tol {
			sum := 0.0
			for _, p := range positions[start:i] {
				sum += p
			}
			centers = append(centers, sum/float64(i-start))
			start = i
		}
	}
	return centers
}
