package quiz

// PassingScore is the minimum percentage for a quiz to count as passed.
const PassingScore = 70

// HighScore is the percentage from which a quiz earns the high-score bonus.
const HighScore = 80

type Result struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Passed  bool    `json:"passed"`
}

// Score grades answers against keys, both mapping question id to option
// index. Questions without a known answer must be left out of keys; they do
// not count toward the total.
func Score(keys, answers map[string]int) Result {
	r := Result{Total: len(keys)}
	for id, want := range keys {
		if got, ok := answers[id]; ok && got == want {
			r.Correct++
		}
	}

	if r.Total > 0 {
		r.Percent = float64(r.Correct) * 100 / float64(r.Total)
	}
	r.Passed = r.Total > 0 && r.Percent >= PassingScore

	return r
}

// DuplicateIDs returns every id that repeats an earlier one, in order of
// appearance. An empty result means all ids are unique.
func DuplicateIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var duplicates []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[id] = struct{}{}
	}

	return duplicates
}
