package elder

// Kind is the proof family a verification request belongs to.
type Kind string

const (
	KindActivity Kind = "activity"
	KindStatus   Kind = "status"
)

type Verdict struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
}

// Approved reports whether the AI would let the proof through unflagged.
func (v Verdict) Approved() bool {
	return v.Verdict == "approve"
}

type Reply struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions,omitempty"`
}
