package drp

import (
	"context"
	"io"
)

type IEndpoint interface {
	SubmitActivity(ctx context.Context, claim ActivityClaim) (SubmissionResponse, error)
	SubmitStatus(ctx context.Context, claim StatusClaim) (SubmissionResponse, error)
	GetSubmission(ctx context.Context, id string) (SubmissionResponse, error)
	RequestReward(ctx context.Context, submissionID, actorID string, assessment map[string]any) (RewardResult, error)
	FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	FetchRewardSummary(ctx context.Context) (RewardSummary, error)
	FetchRewardHistory(ctx context.Context) ([]RewardLog, error)

	UploadActivityMedia(ctx context.Context, name string, r io.Reader) (string, error)
	UploadStatusCredential(ctx context.Context, name string, r io.Reader) (string, error)
	VerifyActivity(ctx context.Context, proof ActivityProof) (VerificationResult, error)
	VerifyStatus(ctx context.Context, proof StatusProof) (VerificationResult, error)
	GetStatusProfile(ctx context.Context, userID string) (StatusProfile, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) (TransactionsResponse, error)
	GetActivityFeed(ctx context.Context, filter FeedFilter) (ActivityFeedResponse, error)
	GetAISummary(ctx context.Context, activityID string) (AISummary, error)
	ClaimRewards(ctx context.Context, userID, submissionID string) (RewardClaim, error)
	BeginOAuth(ctx context.Context, provider string) (string, error)
	VerifyToken(ctx context.Context, token string) (TokenVerification, error)
}
