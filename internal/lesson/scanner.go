package lesson

import (
	"regexp"
	"strings"
)

var (
	questionNumberRegex = regexp.MustCompile(`(?i)^###\s+question\s+(\d+)`)
	blockHeaderRegex    = regexp.MustCompile(`(?i)^(?:###\s+question\s+\d+|###?\s+quiz)`)
	optionRegex         = regexp.MustCompile(`^([A-Z])\)\s*(.*)$`)
	answerRegex         = regexp.MustCompile(`(?i)^\*\*Correct\s+Answer:\s*([A-Z])\*\*(.*)$`)
	explanationRegex    = regexp.MustCompile(`^\s*-\s*(.*)$`)
	headingRegex        = regexp.MustCompile(`^(#{2,3})\s+(.+)$`)
	anyHeadingRegex     = regexp.MustCompile(`^#{1,6}\s`)
)

// line is one line of content together with its byte offsets. end excludes
// the line terminator; next is the offset of the following line.
type line struct {
	text  string
	start int
	end   int
	next  int
}

func (l line) blank() bool {
	return strings.TrimSpace(l.text) == ""
}

func splitLines(content string) []line {
	lines := []line{}
	start := 0
	for start < len(content) {
		end := strings.IndexByte(content[start:], '\n')
		if end < 0 {
			lines = append(lines, line{text: content[start:], start: start, end: len(content), next: len(content)})
			break
		}

		end += start
		text := strings.TrimSuffix(content[start:end], "\r")
		lines = append(lines, line{text: text, start: start, end: end, next: end + 1})
		start = end + 1
	}

	return lines
}

// block is a run of lines opened by a question or quiz header and closed by
// the next heading of level two or deeper.
type block struct {
	// number is the N of "### Question N", empty for quiz blocks.
	number string
	lines  []line
	start  int
	end    int
}

func scanBlocks(content string) []block {
	lines := splitLines(content)
	blocks := []block{}

	for i := 0; i < len(lines); i++ {
		header := strings.TrimSpace(lines[i].text)
		if !blockHeaderRegex.MatchString(header) {
			continue
		}

		b := block{start: lines[i].start}
		if m := questionNumberRegex.FindStringSubmatch(header); m != nil {
			b.number = m[1]
		}

		j := i + 1
		for ; j < len(lines); j++ {
			if strings.HasPrefix(lines[j].text, "##") {
				break
			}
		}

		b.lines = lines[i:j]
		b.end = len(content)
		if j < len(lines) {
			b.end = lines[j].start
		}

		blocks = append(blocks, b)
		i = j - 1
	}

	return blocks
}
