package drp

import "github.com/decentralizedrights/portal/pkg/api"

var (
	submissionSchema = api.Object("drp_submission", []string{"submission_id", "status"}, map[string]any{
		"submission_id": api.TypeString,
		"cid":           api.TypeString,
		"ipfs_cid":      api.TypeString,
		"status":        api.TypeString,
		"timestamp":     api.TypeString,
	})

	rewardResultSchema = api.Object("drp_reward_result", []string{"success"}, map[string]any{
		"success":       api.TypeBool,
		"tx_hash":       api.TypeString,
		"reward_amount": api.TypeNumber,
		"message":       api.TypeString,
	})

	leaderboardEntrySchema = api.Object("drp_leaderboard_entry", []string{"address", "rank"}, map[string]any{
		"address":      api.TypeString,
		"displayName":  api.TypeString,
		"totalRewards": api.TypeNumber,
		"impactScore":  api.TypeNumber,
		"rank":         api.TypeInteger,
	})
	leaderboardSchema = api.ArrayOf("drp_leaderboard", leaderboardEntrySchema)

	rewardSummarySchema = api.Object("drp_reward_summary", []string{"deri", "rights"}, map[string]any{
		"deri":        api.TypeNumber,
		"rights":      api.TypeNumber,
		"boosts":      api.TypeNumber,
		"lastUpdated": api.TypeString,
	})

	rewardLogSchema = api.Object("drp_reward_log", []string{"id", "token", "amount"}, map[string]any{
		"id":        api.TypeString,
		"type":      map[string]any{"enum": []string{"activity", "status", "boost"}},
		"token":     api.TypeString,
		"amount":    api.TypeNumber,
		"createdAt": api.TypeString,
		"txHash":    api.TypeString,
	})
	rewardHistorySchema = api.ArrayOf("drp_reward_history", rewardLogSchema)

	cidSchema = api.Object("drp_cid", []string{"cid"}, map[string]any{
		"cid": api.TypeString,
	})

	verificationSchema = api.Object("drp_verification", []string{"status"}, map[string]any{
		"status": api.TypeString,
		"reward": api.Object("drp_verification_reward", nil, map[string]any{
			"token":  api.TypeString,
			"amount": api.TypeNumber,
		}).Definition,
	})

	statusProfileSchema = api.Object("drp_status_profile", []string{"user_id"}, map[string]any{
		"user_id":         api.TypeString,
		"post_score":      api.TypeNumber,
		"verified_status": api.TypeBool,
		"attestations":    map[string]any{"type": "array"},
		"last_updated":    api.TypeString,
	})

	transactionsSchema = api.Object("drp_transactions", []string{"transactions"}, map[string]any{
		"transactions": map[string]any{"type": "array"},
		"total":        api.TypeInteger,
		"page":         api.TypeInteger,
		"page_size":    api.TypeInteger,
	})

	activityFeedSchema = api.Object("drp_activity_feed", []string{"activities"}, map[string]any{
		"activities": map[string]any{"type": "array"},
		"total":      api.TypeInteger,
		"page":       api.TypeInteger,
		"page_size":  api.TypeInteger,
	})

	aiSummarySchema = api.Object("drp_ai_summary", []string{"activity_id", "summary"}, map[string]any{
		"activity_id":      api.TypeString,
		"summary":          api.TypeString,
		"confidence_score": api.TypeNumber,
		"key_points":       map[string]any{"type": "array", "items": api.TypeString},
	})

	rewardClaimSchema = api.Object("drp_reward_claim", []string{"user_id", "submission_id"}, map[string]any{
		"user_id":       api.TypeString,
		"submission_id": api.TypeString,
		"deri_amount":   api.TypeNumber,
		"rights_amount": api.TypeNumber,
	})

	oauthSchema = api.Object("drp_oauth", []string{"url"}, map[string]any{
		"url": api.TypeString,
	})

	tokenVerificationSchema = api.Object("drp_token_verification", []string{"valid"}, map[string]any{
		"valid": api.TypeBool,
		"roles": map[string]any{"type": "array", "items": api.TypeString},
	})
)
