package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/extract"
)

// wordCodec fakes the tiktoken interface with one token per word.
type wordCodec struct {
	words []string
}

func (c *wordCodec) Encode(text string, _, _ []string) []int {
	c.words = strings.Fields(text)
	ids := make([]int, len(c.words))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (c *wordCodec) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, id := range tokens {
		parts[i] = c.words[id]
	}
	return strings.Join(parts, " ")
}

func TestRecursiveSplitterPrefersParagraphBreaks(t *testing.T) {
	s := NewRecursiveSplitter(30, 0)
	text := "First paragraph stays whole.\n\nSecond paragraph stays whole."

	out := s.Split(text)

	require.Len(t, out, 2)
	assert.Equal(t, "First paragraph stays whole.", out[0])
	assert.Equal(t, "Second paragraph stays whole.", out[1])
}

func TestRecursiveSplitterOverlap(t *testing.T) {
	s := NewRecursiveSplitter(10, 5)

	out := s.Split("aaa bbb ccc ddd")

	assert.Equal(t, []string{"aaa bbb", "bbb ccc", "ccc ddd"}, out)
}

func TestRecursiveSplitterHardCut(t *testing.T) {
	s := NewRecursiveSplitter(4, 0)

	out := s.Split("abcdefgh")

	assert.Equal(t, []string{"abcd", "efgh"}, out)
}

func TestRecursiveSplitterEmpty(t *testing.T) {
	s := NewRecursiveSplitter(100, 10)
	assert.Nil(t, s.Split("   \n  "))
}

func TestTokenSplitterWindows(t *testing.T) {
	s := NewTokenSplitter(3, 1, &wordCodec{})

	out := s.Split("one two three four five")

	assert.Equal(t, []string{"one two three", "three four five"}, out)
}

func TestTokenSplitterShortInput(t *testing.T) {
	s := NewTokenSplitter(10, 2, &wordCodec{})

	out := s.Split("just four little words")

	assert.Equal(t, []string{"just four little words"}, out)
}

func newTestChunker() *Chunker {
	return &Chunker{
		recursive: NewRecursiveSplitter(1000, 0),
		markdown:  NewMarkdownSplitter(1000, 0),
		token:     NewTokenSplitter(3, 0, &wordCodec{}),
	}
}

func TestChunkerMetadata(t *testing.T) {
	c := newTestChunker()
	segments := []extract.Segment{
		{Text: "alpha beta", Source: "a.txt", Position: 0},
		{Text: "gamma delta", Source: "a.txt", Section: "Setup", Position: 1},
	}

	chunks := c.Split(segments, extract.FileTypeText)

	require.Len(t, chunks, 2)
	assert.Equal(t, "a.txt", chunks[0].Metadata["source"])
	assert.Equal(t, "0", chunks[0].Metadata["chunk_index"])
	assert.Equal(t, "1", chunks[1].Metadata["chunk_index"])
	assert.Equal(t, "Setup", chunks[1].Metadata["section"])
}

func TestChunkerStrategySelection(t *testing.T) {
	c := newTestChunker()

	assert.Same(t, c.markdown, c.splitterFor(extract.FileTypeMarkdown))
	assert.Same(t, c.token, c.splitterFor(extract.FileTypePDF))
	assert.Same(t, c.token, c.splitterFor(extract.FileTypeWord))
	assert.Same(t, c.recursive, c.splitterFor(extract.FileTypeCSV))
}

func TestChunkerTokenStrategyOnPDFSegments(t *testing.T) {
	c := newTestChunker()
	segments := []extract.Segment{
		{Text: "one two three four five six", Source: "doc.pdf", Page: 2},
	}

	chunks := c.Split(segments, extract.FileTypePDF)

	require.Len(t, chunks, 2)
	assert.Equal(t, "one two three", chunks[0].Text)
	assert.Equal(t, "2", chunks[0].Metadata["page"])
}
