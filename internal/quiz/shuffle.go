package quiz

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrNoCorrectOption     = errors.New("no option is marked correct")
	ErrMultipleCorrect     = errors.New("more than one option is marked correct")
	ErrInvalidCorrectIndex = errors.New("correct index is out of range")
)

// Option is an answer choice. Exactly one option of a question is Correct.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

// Shuffle returns a uniformly shuffled copy of items (Fisher-Yates).
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// Shuffler permutes answer options and tracks where the correct one lands.
// It is safe for concurrent use.
type Shuffler struct {
	mu  *sync.Mutex
	rng *rand.Rand

	assumeFirst bool
}

// NewShuffler returns a shuffler drawing from src. A nil src is seeded from
// the clock.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Shuffler{mu: &sync.Mutex{}, rng: rand.New(src)}
}

// AssumeFirstCorrect returns a shuffler sharing the same random stream that
// treats the first option as correct when none is marked.
func (s *Shuffler) AssumeFirstCorrect() *Shuffler {
	clone := *s
	clone.assumeFirst = true
	return &clone
}

// Options removes the correct option, shuffles the others and reinserts it
// at a uniformly chosen position. It returns the new slice and the index of
// the correct option in it.
func (s *Shuffler) Options(options []Option) ([]Option, int, error) {
	correct := -1
	for i, opt := range options {
		if !opt.Correct {
			continue
		}

		if correct >= 0 {
			return nil, 0, ErrMultipleCorrect
		}
		correct = i
	}

	if correct < 0 {
		if !s.assumeFirst || len(options) == 0 {
			return nil, 0, ErrNoCorrectOption
		}
		correct = 0
	}

	others := make([]Option, 0, len(options)-1)
	others = append(others, options[:correct]...)
	others = append(others, options[correct+1:]...)

	s.mu.Lock()
	others = Shuffle(s.rng, others)
	at := s.rng.Intn(len(others) + 1)
	s.mu.Unlock()

	shuffled := make([]Option, 0, len(options))
	shuffled = append(shuffled, others[:at]...)
	shuffled = append(shuffled, options[correct])
	shuffled = append(shuffled, others[at:]...)

	return shuffled, at, nil
}

type indexed struct {
	text     string
	original int
}

// Strings shuffles plain options whose correct answer is tracked by index,
// and reports the index the correct answer moved to.
func (s *Shuffler) Strings(options []string, correct int) ([]string, int, error) {
	if correct < 0 || correct >= len(options) {
		return nil, 0, ErrInvalidCorrectIndex
	}

	tagged := make([]indexed, len(options))
	for i, text := range options {
		tagged[i] = indexed{text: text, original: i}
	}

	s.mu.Lock()
	tagged = Shuffle(s.rng, tagged)
	s.mu.Unlock()

	shuffled := make([]string, len(tagged))
	newCorrect := -1
	for i, item := range tagged {
		shuffled[i] = item.text
		if item.original == correct {
			newCorrect = i
		}
	}

	return shuffled, newCorrect, nil
}
