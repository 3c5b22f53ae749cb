package extract

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"docubot/internal/extract/layout"
	"docubot/internal/extract/table"
)

// ruleThickness is the max extent (points) below which a drawn rectangle
// counts as a rule line rather than a filled shape.
const ruleThickness = 2.0

// sameLineTolerance is the max baseline delta for two glyph fragments to
// belong to the same physical line.
const sameLineTolerance = 2.0

// extractPDF walks every page, detects table regions, and composes words
// and table blocks into one text stream per page ordered by vertical
// position. Tables that continue across page boundaries are stitched before
// their content replaces the page placeholders. A page that cannot be
// parsed contributes an empty segment instead of failing the document.
func extractPDF(data []byte, source string) ([]Segment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	composed := make([]string, numPages)
	grids := make([][]table.Grid, numPages)

	for i := 1; i <= numPages; i++ {
		text, pageGrids, err := extractPDFPage(reader.Page(i))
		if err != nil {
			log.Printf("pdf %s page %d: %v", source, i, err)
			continue
		}
		composed[i-1] = text
		grids[i-1] = pageGrids
	}

	resolved := table.ResolveContinuations(grids)

	segments := make([]Segment, 0, numPages)
	for p := 0; p < numPages; p++ {
		rendered := make([]string, len(resolved[p]))
		for t, g := range resolved[p] {
			if g != nil {
				rendered[t] = "\n" + table.Render(g) + "\n"
			}
		}
		segments = append(segments, Segment{
			Text:     strings.TrimSpace(substitutePlaceholders(composed[p], rendered)),
			Kind:     KindParagraph,
			Source:   source,
			Page:     p + 1,
			Position: p,
		})
	}
	return segments, nil
}

// extractPDFPage recovers from parser panics so a broken page degrades to
// an empty segment.
func extractPDFPage(page pdf.Page) (text string, grids []table.Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page content: %v", r)
		}
	}()

	if page.V.IsNull() {
		return "", nil, nil
	}

	content := page.Content()
	words := assembleWords(content.Text)
	lines := ruleLines(content.Rect)

	regions := layout.DetectTables(words, lines)
	for _, r := range regions {
		grids = append(grids, r.Grid)
	}
	return layout.Compose(words, regions), grids, nil
}

// assembleWords joins glyph fragments into words. PDF coordinates grow
// upward, so Top/Bottom are the negated Y to match the layout package's
// downward axis. A new word starts on a line change, an explicit space, or
// a horizontal gap wider than a fraction of the font size.
func assembleWords(fragments []pdf.Text) []layout.Word {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var words []layout.Word
	var buf strings.Builder
	var current layout.Word

	flush := func() {
		if buf.Len() > 0 {
			current.Text = buf.String()
			words = append(words, current)
			buf.Reset()
		}
	}

	var prevEnd, prevY float64
	for _, f := range sorted {
		trimmed := strings.TrimSpace(f.S)
		if trimmed == "" {
			flush()
			prevEnd = f.X + f.W
			prevY = f.Y
			continue
		}

		if buf.Len() > 0 {
			lineBreak := abs(f.Y-prevY) > sameLineTolerance
			gap := f.X - prevEnd
			if lineBreak || gap > f.FontSize*0.3 {
				flush()
			}
		}
		if buf.Len() == 0 {
			current = layout.Word{
				X0:     f.X,
				Top:    -f.Y - f.FontSize,
				Bottom: -f.Y,
			}
		}
		buf.WriteString(trimmed)
		current.X1 = f.X + f.W
		prevEnd = f.X + f.W
		prevY = f.Y
	}
	flush()
	return words
}

// ruleLines converts thin drawn rectangles into axis-aligned rule lines in
// the layout package's flipped coordinate system.
func ruleLines(rects []pdf.Rect) []layout.Line {
	var lines []layout.Line
	for _, r := range rects {
		width := r.Max.X - r.Min.X
		height := r.Max.Y - r.Min.Y
		switch {
		case height <= ruleThickness && width > ruleThickness:
			y := -(r.Min.Y + r.Max.Y) / 2
			lines = append(lines, layout.Line{X0: r.Min.X, Y0: y, X1: r.Max.X, Y1: y})
		case width <= ruleThickness && height > ruleThickness:
			x := (r.Min.X + r.Max.X) / 2
			lines = append(lines, layout.Line{X0: x, Y0: -r.Max.Y, X1: x, Y1: -r.Min.Y})
		}
	}
	return lines
}

// substitutePlaceholders fills the page's table placeholders in detection
// order. A consumed continuation renders as the empty string, which removes
// its placeholder entirely.
func substitutePlaceholders(text string, rendered []string) string {
	for _, r := range rendered {
		text = strings.Replace(text, layout.Placeholder, r, 1)
	}
	return text
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
