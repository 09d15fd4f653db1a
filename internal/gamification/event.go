package gamification

import "time"

type EventType string

const (
	XPAwarded       EventType = "xp-awarded"
	LevelUp         EventType = "level-up"
	StreakExtended  EventType = "streak-extended"
	BadgeUnlocked   EventType = "badge-unlocked"
	ModuleCompleted EventType = "module-completed"
	StateRestored   EventType = "state-restored"
	StateReset      EventType = "state-reset"
)

// Event is published after a state change has been persisted. XP and Level
// are the values after the change.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	Amount   int64     `json:"amount,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	BadgeID  string    `json:"badgeId,omitempty"`
	ModuleID string    `json:"moduleId,omitempty"`
	XP       int64     `json:"xp"`
	Level    int       `json:"level"`
	Streak   int       `json:"streak"`
	At       time.Time `json:"at"`
}
