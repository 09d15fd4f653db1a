package lesson

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

const (
	SectionDoc  = "section"
	QuestionDoc = "question"
)

type document struct {
	Kind    string `json:"kind"`
	Lesson  string `json:"lesson"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Hit is a search result. ID is "<lesson>#s<order>" for sections and the
// question id for questions.
type Hit struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Lesson string  `json:"lesson"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
}

// Index is an in-memory full-text index over lesson sections and questions.
type Index struct {
	index bleve.Index

	mu sync.Mutex
	// docs holds the document ids indexed for each lesson.
	docs map[string][]string
}

func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}

	return &Index{index: index, docs: map[string][]string{}}, nil
}

// Add indexes the sections and questions of lessons. Re-adding a lesson
// replaces all of its documents, so removed sections and questions stop
// matching.
func (i *Index) Add(lessons ...Lesson) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	docs := make(map[string][]string, len(lessons))
	for _, l := range lessons {
		for _, id := range i.docs[l.ID] {
			batch.Delete(id)
		}

		ids := []string{}
		for _, s := range l.Sections() {
			id := fmt.Sprintf("%s#s%d", l.ID, s.Order)
			ids = append(ids, id)
			err := batch.Index(id, document{
				Kind:    SectionDoc,
				Lesson:  l.ID,
				Title:   s.Title,
				Content: s.Content,
			})
			if err != nil {
				return err
			}
		}

		for _, q := range l.Questions() {
			ids = append(ids, q.ID)
			err := batch.Index(q.ID, document{
				Kind:    QuestionDoc,
				Lesson:  l.ID,
				Title:   q.Question,
				Content: strings.Join(q.Options, "\n") + "\n" + q.Explanation,
			})
			if err != nil {
				return err
			}
		}
		docs[l.ID] = ids
	}

	if err := i.index.Batch(batch); err != nil {
		return err
	}

	for id, ids := range docs {
		i.docs[id] = ids
	}

	return nil
}

func (i *Index) Search(query string, offset, limit int) ([]Hit, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, offset, false)
	req.Fields = []string{"kind", "lesson", "title"}

	result, err := i.index.Search(req)
	if err != nil {
		return nil, err
	}

	hits := []Hit{}
	for _, match := range result.Hits {
		hit := Hit{ID: match.ID, Score: match.Score}
		hit.Kind, _ = match.Fields["kind"].(string)
		hit.Lesson, _ = match.Fields["lesson"].(string)
		hit.Title, _ = match.Fields["title"].(string)
		hits = append(hits, hit)
	}

	return hits, nil
}

func (i *Index) Close() error {
	return i.index.Close()
}
