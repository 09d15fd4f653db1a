package learn

import "context"

type IEndpoint interface {
	FetchLesson(ctx context.Context, id string) (Lesson, error)
	CompleteLesson(ctx context.Context, wallet, lessonID string, score int) (Completion, error)
	FetchLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	FetchProgress(ctx context.Context, wallet string) (Progress, error)
}
