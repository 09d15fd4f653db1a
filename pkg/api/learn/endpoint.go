package learn

import (
	"context"
	"regexp"
	"strconv"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

const maxLeaderboardLimit = 100

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

var (
	lessonSchema = api.Object("learn_lesson", []string{"id", "title"}, map[string]any{
		"id":       api.TypeString,
		"title":    api.TypeString,
		"content":  api.TypeString,
		"duration": api.TypeInteger,
		"reward":   api.TypeInteger,
		"level":    api.TypeInteger,
		"module":   api.TypeString,
	})

	completionSchema = api.Object("learn_completion", []string{"success"}, map[string]any{
		"success":          api.TypeBool,
		"transaction_hash": map[string]any{"type": []string{"string", "null"}},
		"reward_amount":    map[string]any{"type": []string{"number", "null"}},
		"message":          api.TypeString,
	})

	leaderboardSchema = api.ArrayOf("learn_leaderboard", api.Object("learn_leaderboard_entry", []string{"rank", "username"}, map[string]any{
		"rank":              api.TypeInteger,
		"username":          api.TypeString,
		"level":             api.TypeInteger,
		"lessons_completed": api.TypeInteger,
		"total_rewards":     api.TypeNumber,
		"streak":            api.TypeInteger,
	}))

	progressSchema = api.Object("learn_progress", []string{"user_id"}, map[string]any{
		"user_id":           api.TypeAny,
		"total_lessons":     api.TypeInteger,
		"completed_lessons": api.TypeInteger,
	})
)

// Endpoint is the learning portal backend: lessons, quiz rewards and the
// learner leaderboard.
type Endpoint struct {
	apiGenerator api.Generator
}

func New(cfg config.LearnConfigs) *Endpoint {
	return &Endpoint{apiGenerator: api.NewGenerator(cfg.URL)}
}

func (e *Endpoint) FetchLesson(ctx context.Context, id string) (Lesson, error) {
	if id == "" {
		return Lesson{}, errorx.New(errorx.BadRequest, "Lesson id is required")
	}

	resp, err := e.apiGenerator.New("/lessons/%s", api.PathSegment(id)).GET(ctx)
	if err != nil {
		return Lesson{}, err
	}

	return api.Decode[Lesson](resp, lessonSchema)
}

// CompleteLesson reports a finished lesson and asks for its token reward.
// The wallet format and the score range are checked before the call.
func (e *Endpoint) CompleteLesson(ctx context.Context, wallet, lessonID string, score int) (Completion, error) {
	if wallet == "" || lessonID == "" {
		return Completion{}, errorx.New(errorx.BadRequest, "Missing required fields: wallet_address, lesson_id, score")
	}

	if !walletPattern.MatchString(wallet) {
		return Completion{}, errorx.New(errorx.BadRequest, "Invalid wallet address format")
	}

	if score < 0 || score > 100 {
		return Completion{}, errorx.New(errorx.BadRequest, "Score must be between 0 and 100")
	}

	resp, err := e.apiGenerator.New("/api/reward/lesson-complete").
		Body(api.JSON{
			"wallet_address": wallet,
			"lesson_id":      lessonID,
			"score":          score,
		}).
		POST(ctx)
	if err != nil {
		return Completion{}, err
	}

	return api.Decode[Completion](resp, completionSchema)
}

// FetchLeaderboard returns the top learners. The backend caps limit at 100.
func (e *Endpoint) FetchLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	query := api.Parameter{}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	resp, err := e.apiGenerator.New("/leaderboard").Query(query).GET(ctx)
	if err != nil {
		return nil, err
	}

	return api.Decode[[]LeaderboardEntry](resp, leaderboardSchema)
}

func (e *Endpoint) FetchProgress(ctx context.Context, wallet string) (Progress, error) {
	if !walletPattern.MatchString(wallet) {
		return Progress{}, errorx.New(errorx.BadRequest, "Invalid wallet address format")
	}

	resp, err := e.apiGenerator.New("/progress/%s", wallet).GET(ctx)
	if err != nil {
		return Progress{}, err
	}

	return api.Decode[Progress](resp, progressSchema)
}

var _ IEndpoint = (*Endpoint)(nil)
