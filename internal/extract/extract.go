// Package extract turns raw file bytes into ordered textual segments with
// provenance. Dispatch is by file type; each extractor is pure and fails
// per file, never past the batch boundary.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the closed set of supported input formats.
type FileType int

const (
	FileTypeUnsupported FileType = iota
	FileTypePDF
	FileTypeWord
	FileTypeSpreadsheet
	FileTypeCSV
	FileTypeMarkdown
	FileTypeText
)

func (t FileType) String() string {
	switch t {
	case FileTypePDF:
		return "pdf"
	case FileTypeWord:
		return "word"
	case FileTypeSpreadsheet:
		return "spreadsheet"
	case FileTypeCSV:
		return "csv"
	case FileTypeMarkdown:
		return "markdown"
	case FileTypeText:
		return "text"
	default:
		return "unsupported"
	}
}

// DetectFileType maps a filename extension to a FileType. Unknown
// extensions map to FileTypeUnsupported.
func DetectFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileTypePDF
	case ".docx", ".doc":
		return FileTypeWord
	case ".xlsx", ".xls":
		return FileTypeSpreadsheet
	case ".csv":
		return FileTypeCSV
	case ".md", ".markdown":
		return FileTypeMarkdown
	case ".txt":
		return FileTypeText
	default:
		return FileTypeUnsupported
	}
}

// SegmentKind tags what a segment holds.
type SegmentKind int

const (
	KindParagraph SegmentKind = iota
	KindTable
	KindHeading
)

// Segment is one ordered unit of extracted content.
type Segment struct {
	Text     string
	Kind     SegmentKind
	Source   string
	Page     int    // 1-based, PDF only
	Sheet    string // spreadsheets only
	Section  string // markdown heading title
	Position int
}

var ErrUnsupportedType = errors.New("unsupported file type")

// Extract dispatches on file type and returns the ordered segments.
// Empty input yields empty segments for every supported type.
func Extract(data []byte, filename string) ([]Segment, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch DetectFileType(filename) {
	case FileTypePDF:
		return extractPDF(data, filename)
	case FileTypeWord:
		return extractWord(data, filename)
	case FileTypeSpreadsheet:
		return extractSheet(data, filename)
	case FileTypeCSV:
		return extractCSV(data, filename)
	case FileTypeMarkdown:
		return extractMarkdown(data, filename)
	case FileTypeText:
		return extractText(data, filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(filename))
	}
}
