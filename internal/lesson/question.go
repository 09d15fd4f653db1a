package lesson

import (
	"fmt"
	"strings"

	"github.com/decentralizedrights/portal/internal/quiz"
)

const MultipleChoice = "multiple-choice"

// ParsedQuestion is a multiple-choice question found in lesson content.
// CorrectAnswer is nil when the marked letter has no matching option.
type ParsedQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	RawText       string   `json:"rawText"`
}

// Answer returns the index of the correct option, if known.
func (q ParsedQuestion) Answer() (int, bool) {
	if q.CorrectAnswer == nil {
		return 0, false
	}

	return *q.CorrectAnswer, true
}

// Shuffle returns a copy of q with its options permuted and CorrectAnswer
// following the correct option. Questions with an unknown answer keep their
// order.
func (q ParsedQuestion) Shuffle(s *quiz.Shuffler) (ParsedQuestion, error) {
	correct, ok := q.Answer()
	if !ok {
		return q, nil
	}

	options, index, err := s.Strings(q.Options, correct)
	if err != nil {
		return ParsedQuestion{}, fmt.Errorf("shuffle %s: %w", q.ID, err)
	}

	q.Options = options
	q.CorrectAnswer = &index
	return q, nil
}

// ParseQuestions extracts the questions of every question or quiz block of
// content. Ids are "q-<block>-<order>" and unique within one call only.
func ParseQuestions(content string) []ParsedQuestion {
	questions := []ParsedQuestion{}
	for blockIndex, b := range scanBlocks(content) {
		for order, q := range parseBlock(content, b) {
			q.ID = fmt.Sprintf("q-%d-%d", blockIndex, order)
			questions = append(questions, q)
		}
	}

	return questions
}

// ParseQuestionsFrom is ParseQuestions with ids prefixed by source, usually
// the lesson id, so that questions of different lessons never collide.
func ParseQuestionsFrom(source, content string) []ParsedQuestion {
	questions := ParseQuestions(content)
	if source == "" {
		return questions
	}

	for i := range questions {
		questions[i].ID = source + "-" + questions[i].ID
	}

	return questions
}

// AnswerKeys maps question ids to their correct option, skipping questions
// whose answer is unknown.
func AnswerKeys(questions []ParsedQuestion) map[string]int {
	keys := make(map[string]int, len(questions))
	for _, q := range questions {
		if answer, ok := q.Answer(); ok {
			keys[q.ID] = answer
		}
	}

	return keys
}

func parseBlock(content string, b block) []ParsedQuestion {
	questions := []ParsedQuestion{}

	// The first line is the block header.
	pos := 1
	for pos < len(b.lines) {
		q, next, ok := parseQuestionAt(content, b.lines, pos)
		if ok {
			// The raw text of a numbered question includes its header.
			if b.number != "" && len(questions) == 0 {
				q.RawText = content[b.start:b.lines[next-1].end]
			}

			questions = append(questions, q)
			pos = next
			continue
		}

		// Not a question: move past the current paragraph and retry.
		pos = skipBlank(b.lines, pos)
		for pos < len(b.lines) && !b.lines[pos].blank() {
			pos++
		}
	}

	return questions
}

func parseQuestionAt(content string, lines []line, pos int) (ParsedQuestion, int, bool) {
	pos = skipBlank(lines, pos)
	first := pos

	text := []string{}
	for pos < len(lines) && !lines[pos].blank() && !optionRegex.MatchString(lines[pos].text) {
		text = append(text, strings.TrimSpace(lines[pos].text))
		pos++
	}

	if len(text) == 0 || pos >= len(lines) || !lines[pos].blank() {
		return ParsedQuestion{}, 0, false
	}

	pos = skipBlank(lines, pos)
	options := []string{}
	optionLines := 0
	for pos < len(lines) {
		m := optionRegex.FindStringSubmatch(strings.TrimRight(lines[pos].text, " \t"))
		if m == nil {
			break
		}

		if opt := strings.TrimSpace(m[2]); opt != "" {
			options = append(options, opt)
		}
		optionLines++
		pos++
	}

	if optionLines == 0 || pos >= len(lines) || !lines[pos].blank() {
		return ParsedQuestion{}, 0, false
	}

	pos = skipBlank(lines, pos)
	if pos >= len(lines) {
		return ParsedQuestion{}, 0, false
	}

	m := answerRegex.FindStringSubmatch(strings.TrimSpace(lines[pos].text))
	if m == nil {
		return ParsedQuestion{}, 0, false
	}
	pos++

	explanation := ""
	if em := explanationRegex.FindStringSubmatch(m[2]); em != nil {
		parts := []string{em[1]}
		for pos < len(lines) && !lines[pos].blank() {
			parts = append(parts, strings.TrimSpace(lines[pos].text))
			pos++
		}
		explanation = strings.TrimSpace(strings.Join(parts, "\n"))
	}

	q := ParsedQuestion{
		Question:    strings.Join(text, "\n"),
		Type:        MultipleChoice,
		Options:     options,
		Explanation: explanation,
		RawText:     content[lines[first].start:lines[pos-1].end],
	}

	// A lowercase letter leaves the answer unknown.
	if letter := m[1][0]; letter >= 'A' && letter <= 'Z' {
		if index := int(letter - 'A'); index < len(options) {
			q.CorrectAnswer = &index
		}
	}

	return q, pos, true
}

func skipBlank(lines []line, pos int) int {
	for pos < len(lines) && lines[pos].blank() {
		pos++
	}

	return pos
}
