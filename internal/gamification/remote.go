package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

var remoteStateSchema = api.Object("gamification_state", nil, map[string]any{
	"xp":               map[string]any{"type": "integer", "minimum": 0},
	"streak":           map[string]any{"type": "integer", "minimum": 0},
	"badges":           map[string]any{"type": []string{"object", "array"}},
	"modulesCompleted": map[string]any{"type": "array", "items": api.TypeString},
	"lastActivityDate": api.TypeString,
})

// Remote mirrors learner progress on the backend.
type Remote struct {
	Token string

	apiGenerator api.Generator
}

func NewRemote(cfg config.APIConfigs) *Remote {
	return &Remote{apiGenerator: api.NewGenerator(cfg.URL)}
}

func (r *Remote) opts() []api.Opt {
	if r.Token == "" {
		return nil
	}

	return []api.Opt{api.OAuth2("Bearer", r.Token)}
}

func (r *Remote) Push(ctx context.Context, userID string, s State) error {
	if strings.TrimSpace(userID) == "" {
		return errorx.New(errorx.BadRequest, "user id is required")
	}

	_, err := r.apiGenerator.New("/api/v1/users/%s/gamification", api.PathSegment(userID)).
		Body(api.Value(s)).
		POST(ctx, r.opts()...)
	return err
}

// Pull returns the raw stored state of userID after checking its shape.
func (r *Remote) Pull(ctx context.Context, userID string) (json.RawMessage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errorx.New(errorx.BadRequest, "user id is required")
	}

	resp, err := r.apiGenerator.New("/api/v1/users/%s/gamification", api.PathSegment(userID)).
		GET(ctx, r.opts()...)
	if err != nil {
		return nil, err
	}

	if _, err := api.Decode[map[string]any](resp, remoteStateSchema); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(resp.Body)
	if err != nil {
		return nil, err
	}

	return raw, nil
}

// Sync pushes the current state to the backend.
func (e *Engine) Sync(ctx context.Context, remote *Remote, userID string) error {
	return remote.Push(ctx, userID, e.State())
}

// Pull overlays the backend state of userID on the local one; fields the
// backend leaves out keep their local value. The overlay starts from the
// state current when the response arrives, not when the request was sent.
func (e *Engine) Pull(ctx context.Context, remote *Remote, userID string) (State, error) {
	raw, err := remote.Pull(ctx, userID)
	if err != nil {
		return State{}, err
	}

	s, err := e.restore(ctx, func(current State) (State, error) {
		if err := json.Unmarshal(raw, &current); err != nil {
			return State{}, errorx.New(errorx.BadResponse, "Invalid gamification state: %v", err)
		}
		return current, nil
	})
	if err != nil {
		return State{}, fmt.Errorf("restore pulled state: %w", err)
	}

	return s, nil
}
