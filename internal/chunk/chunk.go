// Package chunk splits extracted segments into overlapping chunks sized
// for the embedding model, selecting a strategy by source file type.
package chunk

import (
	"fmt"
	"strconv"

	"github.com/pkoukk/tiktoken-go"

	"docubot/internal/extract"
)

// Chunk is one embeddable span of text plus its provenance metadata.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// Options carries the tunable sizes; they come from configuration, never
// from call sites.
type Options struct {
	ChunkSize         int
	ChunkOverlap      int
	TokenChunkSize    int
	TokenChunkOverlap int
}

// Chunker selects a splitter per file type: markdown-aware for markdown,
// token-budget for PDF/Word prose, recursive character splitting otherwise.
type Chunker struct {
	recursive Splitter
	markdown  Splitter
	token     Splitter
}

func New(opts Options) (*Chunker, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding: %w", err)
	}
	return &Chunker{
		recursive: NewRecursiveSplitter(opts.ChunkSize, opts.ChunkOverlap),
		markdown:  NewMarkdownSplitter(opts.ChunkSize, opts.ChunkOverlap),
		token:     NewTokenSplitter(opts.TokenChunkSize, opts.TokenChunkOverlap, enc),
	}, nil
}

// Split chunks the segments in order, preserving source ordering. The
// chunk_index metadata key numbers chunks across the whole call.
func (c *Chunker) Split(segments []extract.Segment, fileType extract.FileType) []Chunk {
	splitter := c.splitterFor(fileType)

	var chunks []Chunk
	for _, seg := range segments {
		for _, text := range splitter.Split(seg.Text) {
			chunks = append(chunks, Chunk{
				Text:     text,
				Metadata: segmentMetadata(seg, len(chunks)),
			})
		}
	}
	return chunks
}

func (c *Chunker) splitterFor(fileType extract.FileType) Splitter {
	switch fileType {
	case extract.FileTypeMarkdown:
		return c.markdown
	case extract.FileTypePDF, extract.FileTypeWord:
		return c.token
	default:
		return c.recursive
	}
}

func segmentMetadata(seg extract.Segment, index int) map[string]string {
	md := map[string]string{
		"source":      seg.Source,
		"chunk_index": strconv.Itoa(index),
	}
	if seg.Page > 0 {
		md["page"] = strconv.Itoa(seg.Page)
	}
	if seg.Sheet != "" {
		md["sheet"] = seg.Sheet
	}
	if seg.Section != "" {
		md["section"] = seg.Section
	}
	return md
}
