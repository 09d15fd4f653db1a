package drp

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

var (
	ErrMissingActor      = errorx.New(errorx.MissingActor, "actor_id is required")
	ErrMissingSubmission = errorx.New(errorx.BadRequest, "submission_id is required")
	ErrMissingID         = errorx.New(errorx.BadRequest, "identifier is required")
)

type Endpoint struct {
	// Token is the session bearer token. Empty means the request relies on
	// session cookies only.
	Token string

	apiGenerator api.Generator
}

func New(cfg config.APIConfigs) *Endpoint {
	return &Endpoint{apiGenerator: api.NewGenerator(cfg.URL)}
}

// WithToken returns a copy of the endpoint authenticating with token.
func (e *Endpoint) WithToken(token string) *Endpoint {
	clone := *e
	clone.Token = token
	return &clone
}

func (e *Endpoint) opts() []api.Opt {
	if e.Token == "" {
		return nil
	}

	return []api.Opt{api.OAuth2("Bearer", e.Token)}
}

func (e *Endpoint) SubmitActivity(ctx context.Context, claim ActivityClaim) (SubmissionResponse, error) {
	if isBlank(claim.ActorID) {
		return SubmissionResponse{}, ErrMissingActor
	}

	resp, err := e.apiGenerator.New("/submit-activity").
		Body(api.Value(claim)).
		POST(ctx, e.opts()...)
	if err != nil {
		return SubmissionResponse{}, err
	}

	return api.Decode[SubmissionResponse](resp, submissionSchema)
}

func (e *Endpoint) SubmitStatus(ctx context.Context, claim StatusClaim) (SubmissionResponse, error) {
	if isBlank(claim.ActorID) {
		return SubmissionResponse{}, ErrMissingActor
	}

	resp, err := e.apiGenerator.New("/submit-status").
		Body(api.Value(claim)).
		POST(ctx, e.opts()...)
	if err != nil {
		return SubmissionResponse{}, err
	}

	return api.Decode[SubmissionResponse](resp, submissionSchema)
}

func (e *Endpoint) GetSubmission(ctx context.Context, id string) (SubmissionResponse, error) {
	if isBlank(id) {
		return SubmissionResponse{}, ErrMissingID
	}

	resp, err := e.apiGenerator.New("/submission/%s", api.PathSegment(id)).GET(ctx, e.opts()...)
	if err != nil {
		return SubmissionResponse{}, err
	}

	return api.Decode[SubmissionResponse](resp, submissionSchema)
}

// RequestReward asks the backend to issue the reward of a submission. The
// assessment is forwarded as is.
func (e *Endpoint) RequestReward(
	ctx context.Context, submissionID, actorID string, assessment map[string]any,
) (RewardResult, error) {
	if isBlank(actorID) {
		return RewardResult{}, ErrMissingActor
	}

	if isBlank(submissionID) {
		return RewardResult{}, ErrMissingSubmission
	}

	if assessment == nil {
		assessment = map[string]any{}
	}

	resp, err := e.apiGenerator.New("/reward").
		Body(api.JSON{
			"submission_id": submissionID,
			"actor_id":      actorID,
			"ai_assessment": assessment,
		}).
		POST(ctx, e.opts()...)
	if err != nil {
		return RewardResult{}, err
	}

	return api.Decode[RewardResult](resp, rewardResultSchema)
}

func (e *Endpoint) FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	resp, err := e.apiGenerator.New("/community/leaderboard").GET(ctx, e.opts()...)
	if err != nil {
		return nil, err
	}

	return api.Decode[[]LeaderboardEntry](resp, leaderboardSchema)
}

func (e *Endpoint) FetchRewardSummary(ctx context.Context) (RewardSummary, error) {
	resp, err := e.apiGenerator.New("/rewards/summary").GET(ctx, e.opts()...)
	if err != nil {
		return RewardSummary{}, err
	}

	return api.Decode[RewardSummary](resp, rewardSummarySchema)
}

func (e *Endpoint) FetchRewardHistory(ctx context.Context) ([]RewardLog, error) {
	resp, err := e.apiGenerator.New("/rewards/history").GET(ctx, e.opts()...)
	if err != nil {
		return nil, err
	}

	return api.Decode[[]RewardLog](resp, rewardHistorySchema)
}

// UploadActivityMedia uploads activity evidence and returns its content id.
func (e *Endpoint) UploadActivityMedia(ctx context.Context, name string, r io.Reader) (string, error) {
	return e.upload(ctx, "/verify/activity/media", name, r)
}

// UploadStatusCredential uploads a status credential and returns its content
// id.
func (e *Endpoint) UploadStatusCredential(ctx context.Context, name string, r io.Reader) (string, error) {
	return e.upload(ctx, "/verify/status/credential", name, r)
}

func (e *Endpoint) upload(ctx context.Context, path, name string, r io.Reader) (string, error) {
	resp, err := e.apiGenerator.New(path).
		Body(api.FormData{
			Files: map[string]api.FormDataFile{
				"file": {Name: name, Content: r},
			},
		}).
		POST(ctx, e.opts()...)
	if err != nil {
		return "", err
	}

	out, err := api.Decode[struct {
		CID string `json:"cid"`
	}](resp, cidSchema)
	if err != nil {
		return "", err
	}

	return out.CID, nil
}

func (e *Endpoint) VerifyActivity(ctx context.Context, proof ActivityProof) (VerificationResult, error) {
	resp, err := e.apiGenerator.New("/verify/activity").
		Body(api.Value(proof)).
		POST(ctx, e.opts()...)
	if err != nil {
		return VerificationResult{}, err
	}

	return api.Decode[VerificationResult](resp, verificationSchema)
}

func (e *Endpoint) VerifyStatus(ctx context.Context, proof StatusProof) (VerificationResult, error) {
	resp, err := e.apiGenerator.New("/verify/status").
		Body(api.Value(proof)).
		POST(ctx, e.opts()...)
	if err != nil {
		return VerificationResult{}, err
	}

	return api.Decode[VerificationResult](resp, verificationSchema)
}

func (e *Endpoint) GetStatusProfile(ctx context.Context, userID string) (StatusProfile, error) {
	if isBlank(userID) {
		return StatusProfile{}, ErrMissingID
	}

	resp, err := e.apiGenerator.New("/api/status/profile").
		Query(api.Parameter{"id": userID}).
		GET(ctx, e.opts()...)
	if err != nil {
		return StatusProfile{}, err
	}

	return api.Decode[StatusProfile](resp, statusProfileSchema)
}

func (e *Endpoint) GetTransactions(ctx context.Context, filter TransactionFilter) (TransactionsResponse, error) {
	resp, err := e.apiGenerator.New("/api/transactions").
		Query(api.Parameter{
			"page":      positive(filter.Page),
			"page_size": positive(filter.PageSize),
			"type":      filter.Type,
			"status":    filter.Status,
		}).
		GET(ctx, e.opts()...)
	if err != nil {
		return TransactionsResponse{}, err
	}

	return api.Decode[TransactionsResponse](resp, transactionsSchema)
}

func (e *Endpoint) GetActivityFeed(ctx context.Context, filter FeedFilter) (ActivityFeedResponse, error) {
	resp, err := e.apiGenerator.New("/api/activity/feed").
		Query(api.Parameter{
			"page":      positive(filter.Page),
			"page_size": positive(filter.PageSize),
			"actor_id":  filter.ActorID,
		}).
		GET(ctx, e.opts()...)
	if err != nil {
		return ActivityFeedResponse{}, err
	}

	return api.Decode[ActivityFeedResponse](resp, activityFeedSchema)
}

func (e *Endpoint) GetAISummary(ctx context.Context, activityID string) (AISummary, error) {
	if isBlank(activityID) {
		return AISummary{}, ErrMissingID
	}

	resp, err := e.apiGenerator.New("/api/ai/summary").
		Query(api.Parameter{"activity_id": activityID}).
		GET(ctx, e.opts()...)
	if err != nil {
		return AISummary{}, err
	}

	return api.Decode[AISummary](resp, aiSummarySchema)
}

func (e *Endpoint) ClaimRewards(ctx context.Context, userID, submissionID string) (RewardClaim, error) {
	if isBlank(userID) {
		return RewardClaim{}, ErrMissingActor
	}

	if isBlank(submissionID) {
		return RewardClaim{}, ErrMissingSubmission
	}

	resp, err := e.apiGenerator.New("/api/rewards/claim").
		Query(api.Parameter{"user_id": userID, "submission_id": submissionID}).
		GET(ctx, e.opts()...)
	if err != nil {
		return RewardClaim{}, err
	}

	return api.Decode[RewardClaim](resp, rewardClaimSchema)
}

// BeginOAuth returns the provider URL the user must visit to sign in.
func (e *Endpoint) BeginOAuth(ctx context.Context, provider string) (string, error) {
	if isBlank(provider) {
		return "", ErrMissingID
	}

	resp, err := e.apiGenerator.New("/auth/oauth/%s", api.PathSegment(provider)).POST(ctx)
	if err != nil {
		return "", err
	}

	out, err := api.Decode[struct {
		URL string `json:"url"`
	}](resp, oauthSchema)
	if err != nil {
		return "", err
	}

	return out.URL, nil
}

// VerifyToken asks the backend whether token is a valid session token.
func (e *Endpoint) VerifyToken(ctx context.Context, token string) (TokenVerification, error) {
	if isBlank(token) {
		return TokenVerification{}, errorx.ErrNotLoggedIn
	}

	resp, err := e.apiGenerator.New("/auth/verify").
		Body(api.JSON{"token": token}).
		POST(ctx)
	if err != nil {
		return TokenVerification{}, err
	}

	return api.Decode[TokenVerification](resp, tokenVerificationSchema)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

var _ IEndpoint = (*Endpoint)(nil)
