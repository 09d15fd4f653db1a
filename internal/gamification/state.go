package gamification

import (
	"encoding/json"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// XP awarded per activity.
const (
	LessonXP    int64 = 50
	VideoXP     int64 = 20
	HighQuizXP  int64 = 100
	StreakDayXP int64 = 15
	ModuleXP    int64 = 200

	// XPPerLevel is the width of one level band.
	XPPerLevel int64 = 1000

	// HighQuizScore is the quiz percentage earning HighQuizXP.
	HighQuizScore = 80
)

const dateLayout = "2006-01-02"

// State is the progress of one learner. The level is derived from XP and
// never stored.
type State struct {
	XP               int64                `json:"xp"`
	Streak           int                  `json:"streak"`
	Badges           map[string]time.Time `json:"badges"`
	ModulesCompleted []string             `json:"modulesCompleted"`

	// LastActivityDate is the local calendar day of the last award,
	// formatted as 2006-01-02.
	LastActivityDate string `json:"lastActivityDate"`
}

func NewState() State {
	return State{Badges: map[string]time.Time{}, ModulesCompleted: []string{}}
}

// Level returns XP/1000 + 1.
func (s State) Level() int {
	return LevelOf(s.XP)
}

func LevelOf(xp int64) int {
	if xp < 0 {
		xp = 0
	}

	return int(xp/XPPerLevel) + 1
}

// Progress is the percentage of XP earned inside the current level band.
func (s State) Progress() float64 {
	band := s.XP - int64(s.Level()-1)*XPPerLevel
	return float64(band) * 100 / float64(XPPerLevel)
}

// NextLevelXP is the XP at which the next level starts.
func (s State) NextLevelXP() int64 {
	return int64(s.Level()) * XPPerLevel
}

func (s State) HasBadge(id string) bool {
	_, ok := s.Badges[id]
	return ok
}

func (s State) HasModule(id string) bool {
	return slices.Contains(s.ModulesCompleted, id)
}

// BadgeIDs returns the unlocked badges in name order.
func (s State) BadgeIDs() []string {
	ids := maps.Keys(s.Badges)
	slices.Sort(ids)
	return ids
}

func (s State) clone() State {
	c := s
	c.Badges = maps.Clone(s.Badges)
	if c.Badges == nil {
		c.Badges = map[string]time.Time{}
	}

	c.ModulesCompleted = slices.Clone(s.ModulesCompleted)
	if c.ModulesCompleted == nil {
		c.ModulesCompleted = []string{}
	}

	return c
}

// UnmarshalJSON accepts badges either as an object of unlock times or as a
// list of ids. Decoded badges are added to those already in s; a listed id
// keeps the unlock time it already has, or gets the zero time.
func (s *State) UnmarshalJSON(b []byte) error {
	type plain State
	aux := struct {
		*plain
		Badges json.RawMessage `json:"badges"`
	}{plain: (*plain)(s)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if len(aux.Badges) == 0 {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(aux.Badges, &ids); err == nil {
		for _, id := range ids {
			if !s.HasBadge(id) {
				s.setBadge(id, time.Time{})
			}
		}
		return nil
	}

	unlocked := map[string]time.Time{}
	if err := json.Unmarshal(aux.Badges, &unlocked); err != nil {
		return err
	}

	for id, at := range unlocked {
		s.setBadge(id, at)
	}

	return nil
}

func (s *State) setBadge(id string, at time.Time) {
	if s.Badges == nil {
		s.Badges = map[string]time.Time{}
	}
	s.Badges[id] = at
}

// MarshalJSON adds the derived level so that readers of the stored blob do
// not need to recompute it.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	return json.Marshal(struct {
		plain
		Level int `json:"level"`
	}{plain: plain(s), Level: s.Level()})
}
