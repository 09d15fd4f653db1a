package main

import (
	"encoding/json"

	"github.com/decentralizedrights/portal/pkg/api/drp"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/urfave/cli/v2"
)

func (s *srv) requestReward(ct *cli.Context) error {
	submissionID, err := arg(ct, 0, "submission id")
	if err != nil {
		return err
	}

	var assessment map[string]any
	if raw := ct.String("assessment"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
			return errorx.New(errorx.BadRequest, "Assessment must be a JSON object: %v", err)
		}
	}

	actorID, err := s.currentAddress()
	if err != nil {
		return err
	}

	result, err := s.drpEndpoint.RequestReward(s.ctx, submissionID, actorID, assessment)
	if err != nil {
		return err
	}

	return s.print(ct, result)
}

func (s *srv) rewardSummary(ct *cli.Context) error {
	summary, err := s.drpEndpoint.FetchRewardSummary(s.ctx)
	if err != nil {
		return err
	}

	return s.print(ct, summary)
}

func (s *srv) rewardHistory(ct *cli.Context) error {
	history, err := s.drpEndpoint.FetchRewardHistory(s.ctx)
	if err != nil {
		return err
	}

	return s.print(ct, history)
}

func (s *srv) rewardOverview(ct *cli.Context) error {
	overview, err := s.rewardDomain.Overview(s.ctx)
	if err != nil {
		return err
	}

	return s.print(ct, overview)
}

func (s *srv) claimReward(ct *cli.Context) error {
	submissionID, err := arg(ct, 0, "submission id")
	if err != nil {
		return err
	}

	userID, err := s.currentAddress()
	if err != nil {
		return err
	}

	claim, err := s.drpEndpoint.ClaimRewards(s.ctx, userID, submissionID)
	if err != nil {
		return err
	}

	return s.print(ct, claim)
}

func (s *srv) leaderboard(ct *cli.Context) error {
	if ct.Bool("learn") {
		entries, err := s.learnEndpoint.FetchLeaderboard(s.ctx, ct.Int("limit"))
		if err != nil {
			return err
		}

		return s.print(ct, entries)
	}

	entries, err := s.drpEndpoint.FetchLeaderboard(s.ctx)
	if err != nil {
		return err
	}

	return s.print(ct, entries)
}

func (s *srv) transactions(ct *cli.Context) error {
	resp, err := s.drpEndpoint.GetTransactions(s.ctx, drp.TransactionFilter{
		Page:     ct.Int("page"),
		PageSize: ct.Int("page-size"),
		Type:     ct.String("type"),
		Status:   ct.String("status"),
	})
	if err != nil {
		return err
	}

	return s.print(ct, resp)
}

func (s *srv) feed(ct *cli.Context) error {
	resp, err := s.drpEndpoint.GetActivityFeed(s.ctx, drp.FeedFilter{
		Page:     ct.Int("page"),
		PageSize: ct.Int("page-size"),
		ActorID:  ct.String("actor"),
	})
	if err != nil {
		return err
	}

	return s.print(ct, resp)
}

func (s *srv) aiSummary(ct *cli.Context) error {
	id, err := arg(ct, 0, "activity id")
	if err != nil {
		return err
	}

	summary, err := s.drpEndpoint.GetAISummary(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, summary)
}

func (s *srv) askElder(ct *cli.Context) error {
	prompt, err := arg(ct, 0, "prompt")
	if err != nil {
		return err
	}

	reply, err := s.elderEndpoint.Ask(s.ctx, prompt, nil)
	if err != nil {
		return err
	}

	return s.print(ct, reply)
}
