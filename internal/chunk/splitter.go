package chunk

import (
	"strings"
	"unicode/utf8"
)

// Splitter cuts one text into pieces sized for embedding.
type Splitter interface {
	Split(text string) []string
}

// recursiveSplitter is a character splitter that prefers natural breaks:
// it tries each separator in order and only falls back to harder cuts when
// a piece still exceeds the chunk size. Consecutive pieces are merged up to
// the size budget with a trailing overlap carried into the next chunk.
type recursiveSplitter struct {
	size       int
	overlap    int
	separators []string
}

// NewRecursiveSplitter splits at paragraph breaks first, then lines, then
// words, then runes.
func NewRecursiveSplitter(size, overlap int) Splitter {
	return &recursiveSplitter{
		size:       size,
		overlap:    overlap,
		separators: []string{"\n\n", "\n", " ", ""},
	}
}

// NewMarkdownSplitter keeps heading boundaries intact before falling back
// to the generic separators.
func NewMarkdownSplitter(size, overlap int) Splitter {
	return &recursiveSplitter{
		size:       size,
		overlap:    overlap,
		separators: []string{"\n# ", "\n## ", "\n### ", "\n\n", "\n", " ", ""},
	}
}

func (s *recursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *recursiveSplitter) split(text string, separators []string) []string {
	sep := ""
	var next []string
	for i, candidate := range separators {
		if candidate == "" {
			sep, next = "", nil
			break
		}
		if strings.Contains(text, candidate) {
			sep, next = candidate, separators[i+1:]
			break
		}
	}

	splits := strings.Split(text, sep)

	var out []string
	var good []string
	flushGood := func() {
		if len(good) > 0 {
			out = append(out, s.merge(good, sep)...)
			good = nil
		}
	}
	for _, piece := range splits {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) <= s.size {
			good = append(good, piece)
			continue
		}
		flushGood()
		if len(next) == 0 {
			out = append(out, piece)
			continue
		}
		out = append(out, s.split(piece, next)...)
	}
	flushGood()
	return out
}

// merge packs adjacent pieces into chunks up to size, then trims the front
// of the window down to the overlap budget before starting the next chunk.
func (s *recursiveSplitter) merge(splits []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var docs []string
	var current []string
	total := 0
	for _, piece := range splits {
		plen := utf8.RuneCountInString(piece)
		if len(current) > 0 && total+plen+sepLen > s.size {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > s.overlap || total+plen+sepLen > s.size) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += plen
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// tokenCodec is the subset of the tiktoken API the token splitter needs.
type tokenCodec interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// tokenSplitter cuts on a token budget with a sliding overlap window. Used
// for dense prose extracted from binary formats, where character counts
// track the embedding model's limits poorly.
type tokenSplitter struct {
	size    int
	overlap int
	codec   tokenCodec
}

func NewTokenSplitter(size, overlap int, codec tokenCodec) Splitter {
	return &tokenSplitter{size: size, overlap: overlap, codec: codec}
}

func (s *tokenSplitter) Split(text string) []string {
	tokens := s.codec.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	step := s.size - s.overlap
	if step < 1 {
		step = 1
	}

	var out []string
	for start := 0; start < len(tokens); start += step {
		end := start + s.size
		if end > len(tokens) {
			end = len(tokens)
		}
		piece := strings.TrimSpace(s.codec.Decode(tokens[start:end]))
		if piece != "" {
			out = append(out, piece)
		}
		if end == len(tokens) {
			break
		}
	}
	return out
}
