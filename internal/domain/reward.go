package domain

import (
	"context"

	"github.com/decentralizedrights/portal/pkg/api/drp"
	"golang.org/x/sync/errgroup"
)

type RewardOverview struct {
	Summary drp.RewardSummary `json:"summary"`
	History []drp.RewardLog   `json:"history"`
}

type RewardDomain interface {
	Overview(context.Context) (*RewardOverview, error)
}

type rewardDomain struct {
	drpEndpoint drp.IEndpoint
}

func NewRewardDomain(drpEndpoint drp.IEndpoint) *rewardDomain {
	return &rewardDomain{drpEndpoint: drpEndpoint}
}

// Overview fetches the reward summary and history concurrently. The first
// failure cancels the other request.
func (d *rewardDomain) Overview(ctx context.Context) (*RewardOverview, error) {
	overview := &RewardOverview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := d.drpEndpoint.FetchRewardSummary(gctx)
		if err != nil {
			return err
		}
		overview.Summary = summary
		return nil
	})

	g.Go(func() error {
		history, err := d.drpEndpoint.FetchRewardHistory(gctx)
		if err != nil {
			return err
		}
		overview.History = history
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return overview, nil
}
