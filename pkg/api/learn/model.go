package learn

type Lesson struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Duration    int            `json:"duration"`
	Reward      int            `json:"reward"`
	Level       int            `json:"level"`
	Module      string         `json:"module"`
	QuizData    map[string]any `json:"quiz_data"`
}

// Completion is the learn backend's answer to a lesson completion.
// RewardAmount is in token wei and may exceed int64.
type Completion struct {
	Success         bool    `json:"success"`
	TransactionHash string  `json:"transaction_hash,omitempty"`
	RewardAmount    float64 `json:"reward_amount,omitempty"`
	Message         string  `json:"message"`
	Error           string  `json:"error,omitempty"`
}

type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Username         string `json:"username"`
	Level            int    `json:"level"`
	LessonsCompleted int    `json:"lessons_completed"`
	TotalRewards     int64  `json:"total_rewards"`
	Streak           int    `json:"streak"`
}

type Progress struct {
	UserID           any              `json:"user_id"`
	TotalLessons     int              `json:"total_lessons"`
	CompletedLessons int              `json:"completed_lessons"`
	TotalRewards     int64            `json:"total_rewards"`
	CurrentLevel     int              `json:"current_level"`
	Streak           int              `json:"streak"`
	Achievements     []map[string]any `json:"achievements"`
}
