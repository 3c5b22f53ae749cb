package table

// pageTable identifies one raw table by its page and position on that page.
type pageTable struct {
	page  int
	index int
}

// ResolveContinuations walks the per-page raw tables of a paginated document
// and stitches tables that run across page boundaries into single logical
// grids. The result has the same shape as the input: one slot per raw table,
// in page order. A slot holds the merged logical table, or nil when that raw
// table was consumed as the continuation of an earlier one.
//
// Only the last table of a page is a continuation candidate, and only
// against the first table of the next page. A continuation may itself
// continue further, so the chase recurses forward.
func ResolveContinuations(pages [][]Grid) [][]Grid {
	consumed := make(map[pageTable]bool)
	out := make([][]Grid, len(pages))

	for p := range pages {
		out[p] = make([]Grid, len(pages[p]))
		for t := range pages[p] {
			if consumed[pageTable{p, t}] {
				out[p][t] = nil
				continue
			}
			out[p][t] = resolveTable(pages, p, t, consumed)
		}
	}
	return out
}

func resolveTable(pages [][]Grid, page, index int, consumed map[pageTable]bool) Grid {
	current := pages[page][index]
	if len(current) == 0 {
		return nil
	}

	// Continuation is only possible for the last table on the page.
	if index == len(pages[page])-1 && page+1 < len(pages) {
		next := pages[page+1]
		if len(next) > 0 && IsContinuation(current, next[0]) {
			continuation := resolveTable(pages, page+1, 0, consumed)
			if continuation != nil {
				consumed[pageTable{page + 1, 0}] = true
				return Merge(current, continuation)
			}
		}
	}

	return MergeWrappedRows(current)
}
