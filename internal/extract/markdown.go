package extract

import "strings"

// extractMarkdown segments a document at its ATX headings so each section
// keeps its title as provenance. A document without headings becomes one
// paragraph segment.
func extractMarkdown(data []byte, source string) ([]Segment, error) {
	text := normalizeNewlines(string(data))

	var segments []Segment
	var body []string
	title := ""
	kind := KindParagraph

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content == "" {
			return
		}
		segments = append(segments, Segment{
			Text:     content,
			Kind:     kind,
			Source:   source,
			Section:  title,
			Position: len(segments),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		level, heading := parseATXHeading(line)
		if level == 0 {
			body = append(body, line)
			continue
		}
		flush()
		body = []string{line}
		title = heading
		kind = KindHeading
	}
	flush()
	return segments, nil
}

// parseATXHeading returns the heading level (1-6) and title of an ATX
// heading line, or 0 for a non-heading line.
func parseATXHeading(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level == len(trimmed) || trimmed[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(trimmed[level:])
}
