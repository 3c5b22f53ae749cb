package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractSheet renders every sheet of a workbook as one pipe-delimited
// table segment headed by the sheet name. Fully empty rows are dropped,
// floats lose insignificant trailing zeros, and empty cells render as the
// noneCell sentinel.
func extractSheet(data []byte, source string) ([]Segment, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	var segments []Segment
	for pos, name := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		rendered := renderSheet(name, rows)
		if rendered == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     rendered,
			Kind:     KindTable,
			Source:   source,
			Sheet:    name,
			Position: pos,
		})
	}
	return segments, nil
}

func renderSheet(name string, rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("=== Sheet: %s ===", name)}
	for _, row := range rows {
		cells := make([]string, width)
		empty := true
		for c := 0; c < width; c++ {
			value := ""
			if c < len(row) {
				value = row[c]
			}
			cells[c] = formatCell(value)
			if cells[c] != noneCell {
				empty = false
			}
		}
		if empty {
			continue
		}
		lines = append(lines, "|"+strings.Join(cells, "|")+"|")
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// formatCell normalizes one cell value: empty becomes the noneCell
// sentinel, and decimal numbers drop trailing zeros ("2.50" -> "2.5",
// "3.00" -> "3").
func formatCell(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return noneCell
	}
	if strings.Contains(trimmed, ".") {
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			trimmed = strings.TrimRight(trimmed, "0")
			trimmed = strings.TrimRight(trimmed, ".")
		}
	}
	return trimmed
}
