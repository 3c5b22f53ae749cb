package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// noneCell marks an empty table cell in rendered output. It is a stable
// textual sentinel, not a language null.
const noneCell = "None"

// extractWord walks word/document.xml's body elements in document order so
// paragraphs and tables interleave exactly as authored. Headings carry
// their level; tables render pipe-delimited with noneCell for empty cells.
func extractWord(data []byte, source string) ([]Segment, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	body, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("docx has no word/document.xml")
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	var segments []Segment
	pos := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse docx body: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "tbl":
			grid, err := parseWordTable(dec)
			if err != nil {
				return nil, err
			}
			if rendered := renderWordTable(grid); rendered != "" {
				segments = append(segments, Segment{
					Text:     rendered,
					Kind:     KindTable,
					Source:   source,
					Position: pos,
				})
				pos++
			}
		case "p":
			text, level, err := parseWordParagraph(dec)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			kind := KindParagraph
			section := ""
			if level > 0 {
				kind = KindHeading
				section = strings.TrimSpace(text)
			}
			segments = append(segments, Segment{
				Text:     text,
				Kind:     kind,
				Source:   source,
				Section:  section,
				Position: pos,
			})
			pos++
		}
	}
	return segments, nil
}

// parseWordParagraph consumes tokens up to the paragraph's end element,
// returning the run text and the heading level (0 for body text).
func parseWordParagraph(dec *xml.Decoder) (string, int, error) {
	var sb strings.Builder
	level := 0
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", 0, fmt.Errorf("parse paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pStyle":
				level = headingLevel(xmlAttr(t, "val"))
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", 0, fmt.Errorf("parse run text: %w", err)
				}
				sb.WriteString(text)
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), level, nil
}

// parseWordTable consumes tokens up to the table's end element and collects
// the cell text row by row. Nested tables flatten into the enclosing cell.
func parseWordTable(dec *xml.Decoder) ([][]string, error) {
	var rows [][]string
	var row []string
	var cell strings.Builder
	inCell := 0
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				if depth == 1 {
					row = nil
				}
			case "tc":
				if inCell == 0 {
					cell.Reset()
				}
				inCell++
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, fmt.Errorf("parse cell text: %w", err)
				}
				if inCell > 0 {
					if cell.Len() > 0 {
						cell.WriteString(" ")
					}
					cell.WriteString(text)
				}
				continue
			}
			depth++
		case xml.EndElement:
			switch t.Name.Local {
			case "tc":
				inCell--
				if inCell == 0 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "tr":
				if depth == 2 && len(row) > 0 {
					rows = append(rows, row)
					row = nil
				}
			}
			depth--
		}
	}
	return rows, nil
}

func renderWordTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("|")
		for _, cell := range row {
			if cell == "" {
				cell = noneCell
			}
			sb.WriteString(cell)
			sb.WriteString("|")
		}
	}
	return sb.String()
}

// headingLevel parses styles like "Heading1" or "heading2"; anything else
// is body text.
func headingLevel(style string) int {
	lower := strings.ToLower(style)
	if !strings.HasPrefix(lower, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(lower, "heading"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func xmlAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}
