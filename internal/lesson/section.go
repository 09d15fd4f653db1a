package lesson

import (
	"strings"
)

const (
	SectionCheckpoint = "checkpoint"
	SectionText       = "text"
)

type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Order   int    `json:"order"`
}

// ExtractSections lists the level two and three headings of content, leaving
// out quiz and question headings. Content holds the prose up to the next
// heading.
func ExtractSections(content string) []Section {
	lines := splitLines(content)
	sections := []Section{}

	for i, l := range lines {
		m := headingRegex.FindStringSubmatch(l.text)
		if m == nil {
			continue
		}

		title := strings.TrimSpace(m[2])
		lower := strings.ToLower(title)
		if strings.Contains(lower, "quiz") || strings.Contains(lower, "question") {
			continue
		}

		sectionType := SectionText
		if len(m[1]) == 2 {
			sectionType = SectionCheckpoint
		}

		body := []string{}
		for _, next := range lines[i+1:] {
			if anyHeadingRegex.MatchString(next.text) {
				break
			}
			body = append(body, next.text)
		}

		sections = append(sections, Section{
			Title:   title,
			Content: strings.TrimSpace(strings.Join(body, "\n")),
			Type:    sectionType,
			Order:   len(sections),
		})
	}

	return sections
}

// ReplaceQuestionsWithPlaceholders swaps every question or quiz block for an
// HTML comment marker that a renderer can substitute with an interactive
// widget.
func ReplaceQuestionsWithPlaceholders(content string) string {
	blocks := scanBlocks(content)
	if len(blocks) == 0 {
		return content
	}

	var sb strings.Builder
	last := 0
	for _, b := range blocks {
		sb.WriteString(content[last:b.start])
		sb.WriteString("\n\n")
		sb.WriteString(Placeholder(b.number))
		sb.WriteString("\n\n")
		last = b.end
	}
	sb.WriteString(content[last:])

	return sb.String()
}

// Placeholder returns the marker of question number, or the generic block
// marker when number is empty.
func Placeholder(number string) string {
	if number == "" {
		return "<!-- question-block -->"
	}

	return "<!-- question-" + number + " -->"
}
