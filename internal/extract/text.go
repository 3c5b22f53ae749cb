package extract

import "strings"

// extractText splits plain text into paragraph segments at blank lines.
func extractText(data []byte, source string) ([]Segment, error) {
	text := normalizeNewlines(string(data))

	var segments []Segment
	for _, block := range strings.Split(text, "\n\n") {
		paragraph := strings.TrimSpace(block)
		if paragraph == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     paragraph,
			Kind:     KindParagraph,
			Source:   source,
			Position: len(segments),
		})
	}
	return segments, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
