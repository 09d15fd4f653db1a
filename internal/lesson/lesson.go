package lesson

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/decentralizedrights/portal/pkg/errorx"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle    = "Untitled Lesson"
	DefaultDuration = 15
	DefaultReward   = 10
	DefaultModule   = "general"
)

var frontmatterRegex = regexp.MustCompile(`(?s)^---[ \t]*\r?\n(.*?)\r?\n---[ \t]*\r?\n(.*)$`)

// Metadata is the YAML frontmatter of a lesson file. Duration is in minutes.
type Metadata struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Duration    int    `yaml:"duration" json:"duration"`
	Reward      int    `yaml:"reward" json:"reward"`
	Level       int    `yaml:"level" json:"level"`
	Module      string `yaml:"module" json:"module"`
}

type Lesson struct {
	ID       string   `json:"id"`
	Metadata Metadata `json:"metadata"`
	Content  string   `json:"content"`
}

func (l Lesson) Questions() []ParsedQuestion {
	return ParseQuestionsFrom(l.ID, l.Content)
}

func (l Lesson) Sections() []Section {
	return ExtractSections(l.Content)
}

// ParseLesson splits raw into its frontmatter and markdown body. Missing
// fields take their defaults; content without frontmatter is all body.
func ParseLesson(id string, raw string) (Lesson, error) {
	lesson := Lesson{ID: id, Content: raw}

	if m := frontmatterRegex.FindStringSubmatch(raw); m != nil {
		if err := yaml.Unmarshal([]byte(m[1]), &lesson.Metadata); err != nil {
			return Lesson{}, errorx.New(errorx.BadRequest, "Invalid frontmatter in lesson %s: %v", id, err)
		}
		lesson.Content = m[2]
	}

	lesson.Content = strings.TrimSpace(lesson.Content)
	lesson.Metadata.withDefaults()
	return lesson, nil
}

func (m *Metadata) withDefaults() {
	if m.Title == "" {
		m.Title = DefaultTitle
	}

	if m.Duration <= 0 {
		m.Duration = DefaultDuration
	}

	if m.Reward <= 0 {
		m.Reward = DefaultReward
	}

	if m.Module == "" {
		m.Module = DefaultModule
	}
}

// LoadDir reads every lesson under root. Lessons live in numbered level
// directories and are identified as "<level>-<n>", n counting the level's
// *.md and *.mdx files in name order from 1.
func LoadDir(root string) ([]Lesson, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	levels := map[int]string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		level, err := strconv.Atoi(entry.Name())
		if err != nil || level <= 0 {
			continue
		}
		levels[level] = filepath.Join(root, entry.Name())
	}

	numbers := maps.Keys(levels)
	slices.Sort(numbers)

	lessons := []Lesson{}
	for _, level := range numbers {
		files, err := lessonFiles(levels[level])
		if err != nil {
			return nil, err
		}

		for i, file := range files {
			raw, err := os.ReadFile(file)
			if err != nil {
				return nil, err
			}

			lesson, err := ParseLesson(fmt.Sprintf("%d-%d", level, i+1), string(raw))
			if err != nil {
				return nil, err
			}

			if lesson.Metadata.Level == 0 {
				lesson.Metadata.Level = level
			}
			lessons = append(lessons, lesson)
		}
	}

	return lessons, nil
}

// Find returns the lesson with id from lessons.
func Find(lessons []Lesson, id string) (Lesson, error) {
	i := slices.IndexFunc(lessons, func(l Lesson) bool { return l.ID == id })
	if i < 0 {
		return Lesson{}, errorx.New(errorx.NotFound, "Lesson %s not found", id)
	}

	return lessons[i], nil
}

func lessonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch filepath.Ext(entry.Name()) {
		case ".md", ".mdx":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}
