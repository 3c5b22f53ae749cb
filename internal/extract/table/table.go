package table

import (
	"regexp"
	"strings"
)

// Grid is an extracted table: rows of cell strings. An empty cell marks a
// value that was missing in the source layout.
type Grid [][]string

// Rows returns the row count.
func (g Grid) Rows() int { return len(g) }

// Cols returns the column count of the first row, 0 for an empty grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`), // YYYY-MM-DD or YYYY/MM/DD
	regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2,4}$`), // MM/DD/YYYY or DD/MM/YYYY
}

func isNumericCell(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isDateCell(s string) bool {
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// MergeWrappedRows repairs cell text that wrapped onto multiple physical
// lines. The header row is kept as-is; for each following row, if the next
// row has at most two non-empty cells it is folded into the current row
// column by column and consumed.
func MergeWrappedRows(g Grid) Grid {
	if len(g) == 0 {
		return g
	}

	merged := Grid{g[0]}
	i := 1
	for i < len(g) {
		current := g[i]

		if i+1 < len(g) {
			next := g[i+1]

			empty := 0
			for _, cell := range next {
				if cell == "" {
					empty++
				}
			}

			if empty >= len(next)-2 {
				row := make([]string, len(current))
				for j := range current {
					nextCell := ""
					if j < len(next) {
						nextCell = next[j]
					}
					switch {
					case nextCell == "":
						row[j] = current[j]
					case current[j] == "":
						row[j] = nextCell
					default:
						row[j] = strings.TrimSpace(
							flattenBreaks(current[j]) + " " + flattenBreaks(nextCell))
					}
				}
				merged = append(merged, row)
				i += 2
				continue
			}
		}

		merged = append(merged, current)
		i++
	}

	return merged
}

func flattenBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// IsContinuation reports whether b's first row plausibly continues a's last
// row on the following page: identical column counts, and per column the
// boundary cells agree on numeric-ness and on date-ness. Empty cells are
// wildcards that never disqualify a match.
func IsContinuation(a, b Grid) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if a.Cols() != b.Cols() {
		return false
	}

	lastRow := a[len(a)-1]
	firstRow := b[0]
	if len(lastRow) != len(firstRow) {
		return false
	}

	for j := range lastRow {
		c1 := strings.TrimSpace(lastRow[j])
		c2 := strings.TrimSpace(firstRow[j])
		if c1 == "" || c2 == "" {
			continue
		}
		if isNumericCell(c1) != isNumericCell(c2) {
			return false
		}
		if isDateCell(c1) != isDateCell(c2) {
			return false
		}
	}
	return true
}

// Merge concatenates a continuation onto its parent, dropping the
// continuation's first row when it repeats the parent's header, then re-runs
// the wrapped-row pass over the combined grid.
func Merge(a, b Grid) Grid {
	combined := make(Grid, 0, len(a)+len(b))
	combined = append(combined, a...)
	if len(a) > 0 && len(b) > 0 && rowsEqual(a[0], b[0]) {
		combined = append(combined, b[1:]...)
	} else {
		combined = append(combined, b...)
	}
	return MergeWrappedRows(combined)
}

func rowsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Render serializes the grid as one pipe-delimited block, one line per row.
// Embedded line breaks are normalized to spaces.
func Render(g Grid) string {
	var sb strings.Builder
	for _, row := range g {
		sb.WriteByte('|')
		for _, cell := range row {
			sb.WriteString(flattenBreaks(cell))
			sb.WriteByte('|')
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
