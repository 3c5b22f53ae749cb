package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFileType(t *testing.T) {
	cases := map[string]FileType{
		"report.PDF":   FileTypePDF,
		"notes.docx":   FileTypeWord,
		"notes.doc":    FileTypeWord,
		"data.xlsx":    FileTypeSpreadsheet,
		"data.csv":     FileTypeCSV,
		"readme.md":    FileTypeMarkdown,
		"plain.txt":    FileTypeText,
		"archive.tar":  FileTypeUnsupported,
		"no-extension": FileTypeUnsupported,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectFileType(name), name)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract([]byte("payload"), "archive.tar")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractEmptyInput(t *testing.T) {
	for _, name := range []string{"a.pdf", "a.docx", "a.xlsx", "a.csv", "a.md", "a.txt"} {
		segments, err := Extract(nil, name)
		require.NoError(t, err, name)
		assert.Empty(t, segments, name)
	}
}

func TestExtractTextParagraphs(t *testing.T) {
	data := []byte("First paragraph\r\nstill first.\r\n\r\nSecond paragraph.\r\n\r\n\r\n")

	segments, err := Extract(data, "plain.txt")

	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "First paragraph\nstill first.", segments[0].Text)
	assert.Equal(t, "Second paragraph.", segments[1].Text)
	assert.Equal(t, 1, segments[1].Position)
}

func TestExtractMarkdownSections(t *testing.T) {
	data := []byte("intro before any heading\n\n# Setup\n\ninstall it\n\n## Details\n\nmore text\n")

	segments, err := Extract(data, "guide.md")

	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Equal(t, KindParagraph, segments[0].Kind)
	assert.Equal(t, "", segments[0].Section)
	assert.Equal(t, "Setup", segments[1].Section)
	assert.Equal(t, KindHeading, segments[1].Kind)
	assert.Contains(t, segments[1].Text, "install it")
	assert.Equal(t, "Details", segments[2].Section)
}

func TestExtractMarkdownWithoutHeadings(t *testing.T) {
	segments, err := Extract([]byte("just prose\nover two lines\n"), "note.md")

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, KindParagraph, segments[0].Kind)
}

func TestExtractCSV(t *testing.T) {
	data := []byte("name;qty;price\nbolt;4;2.50\nbad-row;7\nnut;2;0.30\n;;\n")

	segments, err := Extract(data, "parts.csv")

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, KindTable, segments[0].Kind)
	assert.Equal(t,
		"|name|qty|price|\n|bolt|4|2.5|\n|nut|2|0.3|",
		segments[0].Text,
		"malformed and empty rows must be skipped, floats trimmed")
}

func TestExtractCSVEmptyCellSentinel(t *testing.T) {
	segments, err := Extract([]byte("a,b\n1,\n"), "x.csv")

	require.NoError(t, err)
	assert.Contains(t, segments[0].Text, "|1|None|")
}

func TestExtractSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Price"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Bolt"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "2.50"))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "Nut"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	segments, err := Extract(buf.Bytes(), "parts.xlsx")

	require.NoError(t, err)
	require.Len(t, segments, 1)
	seg := segments[0]
	assert.Equal(t, "Sheet1", seg.Sheet)
	assert.Contains(t, seg.Text, "=== Sheet: Sheet1 ===")
	assert.Contains(t, seg.Text, "|Name|Price|")
	assert.Contains(t, seg.Text, "|Bolt|2.5|")
	assert.Contains(t, seg.Text, "|Nut|None|")
	assert.NotContains(t, seg.Text, "||", "fully empty rows must be dropped")
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Overview</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Intro paragraph.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Qty</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Bolt</w:t></w:r></w:p></w:tc>
        <w:tc><w:p></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>After the table.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractWordPreservesBodyOrder(t *testing.T) {
	segments, err := Extract(buildDocx(t, docxBody), "spec.docx")

	require.NoError(t, err)
	require.Len(t, segments, 4)

	assert.Equal(t, KindHeading, segments[0].Kind)
	assert.Equal(t, "Overview", segments[0].Section)
	assert.Equal(t, "Intro paragraph.", segments[1].Text)
	assert.Equal(t, KindTable, segments[2].Kind)
	assert.Equal(t, "|Name|Qty|\n|Bolt|None|", segments[2].Text)
	assert.Equal(t, "After the table.", segments[3].Text)
}

func TestExtractWordNotAZip(t *testing.T) {
	_, err := Extract([]byte("not a zip archive"), "broken.docx")
	assert.Error(t, err)
}

func TestSubstitutePlaceholders(t *testing.T) {
	text := "before \n[[TABLE]]\n middle \n[[TABLE]]\n after"

	out := substitutePlaceholders(text, []string{"\n|a|b|\n", ""})

	assert.Equal(t, "before \n|a|b|\n middle  after", out)
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("Heading1"))
	assert.Equal(t, 3, headingLevel("heading3"))
	assert.Equal(t, 0, headingLevel("BodyText"))
	assert.Equal(t, 0, headingLevel("Heading"))
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter([]byte("a;b;c\n1;2;3\n")))
	assert.Equal(t, '\t', detectDelimiter([]byte("a\tb\tc\n")))
	assert.Equal(t, ',', detectDelimiter([]byte("no delimiters here")))
}
