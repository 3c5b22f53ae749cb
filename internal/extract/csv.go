package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/ianaindex"
)

// sampleSize bounds how many bytes feed charset and delimiter detection.
const sampleSize = 10 * 1024

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// extractCSV treats the file as a single implicit sheet: auto-detected
// encoding and delimiter, spreadsheet cell formatting, empty rows dropped.
// Rows whose column count differs from the header are skipped rather than
// failing the file.
func extractCSV(data []byte, source string) ([]Segment, error) {
	decoded := decodeCharset(data)

	sample := decoded
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = detectDelimiter(sample)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	lines := []string{renderCSVRow(header)}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip it, keep the rest.
			continue
		}
		if len(row) != len(header) {
			continue
		}
		rendered := renderCSVRow(row)
		if rendered == "" {
			continue
		}
		lines = append(lines, rendered)
	}

	return []Segment{{
		Text:   strings.Join(lines, "\n"),
		Kind:   KindTable,
		Source: source,
	}}, nil
}

// renderCSVRow formats a row pipe-delimited; a row whose cells are all the
// noneCell sentinel renders as the empty string.
func renderCSVRow(row []string) string {
	cells := make([]string, len(row))
	empty := true
	for i, value := range row {
		cells[i] = formatCell(value)
		if cells[i] != noneCell {
			empty = false
		}
	}
	if empty {
		return ""
	}
	return "|" + strings.Join(cells, "|") + "|"
}

// decodeCharset converts the input to UTF-8 when a detector identifies a
// different encoding; any failure along the way falls back to the raw
// bytes.
func decodeCharset(data []byte) []byte {
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return data
	}
	name := strings.ToLower(result.Charset)
	if name == "utf-8" || name == "ascii" || name == "us-ascii" {
		return data
	}

	enc, err := ianaindex.IANA.Encoding(result.Charset)
	if err != nil || enc == nil {
		return data
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// detectDelimiter scores the candidate delimiters by frequency in the
// sample and returns the most common one, defaulting to comma.
func detectDelimiter(sample []byte) rune {
	text := string(sample)
	best := ','
	bestCount := 0
	for _, candidate := range delimiterCandidates {
		count := strings.Count(text, string(candidate))
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}
