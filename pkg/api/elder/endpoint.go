package elder

import (
	"context"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

var (
	verdictSchema = api.Object("elder_verdict", []string{"verdict", "confidence"}, map[string]any{
		"verdict":    map[string]any{"enum": []string{"approve", "flag", "reject"}},
		"confidence": api.TypeNumber,
		"notes":      api.TypeString,
	})

	replySchema = api.Object("elder_reply", []string{"reply"}, map[string]any{
		"reply":       api.TypeString,
		"suggestions": map[string]any{"type": "array", "items": api.TypeString},
	})
)

// Endpoint talks to the Elder AI service used for proof pre-checks and the
// assistant.
type Endpoint struct {
	apiGenerator api.Generator
}

func New(cfg config.AIConfigs) *Endpoint {
	return &Endpoint{apiGenerator: api.NewGenerator(cfg.URL)}
}

func (e *Endpoint) Verify(ctx context.Context, kind Kind, input map[string]any) (Verdict, error) {
	if kind != KindActivity && kind != KindStatus {
		return Verdict{}, errorx.New(errorx.BadRequest, "Unknown verification kind %q", kind)
	}

	resp, err := e.apiGenerator.New("/verify").
		Body(api.JSON{"type": string(kind), "input": input}).
		POST(ctx)
	if err != nil {
		return Verdict{}, err
	}

	return api.Decode[Verdict](resp, verdictSchema)
}

func (e *Endpoint) Ask(ctx context.Context, prompt string, hints map[string]any) (Reply, error) {
	if prompt == "" {
		return Reply{}, errorx.New(errorx.BadRequest, "Prompt is empty")
	}

	body := api.JSON{"prompt": prompt}
	if hints != nil {
		body["context"] = hints
	}

	resp, err := e.apiGenerator.New("/assistant").Body(body).POST(ctx)
	if err != nil {
		return Reply{}, err
	}

	return api.Decode[Reply](resp, replySchema)
}

var _ IEndpoint = (*Endpoint)(nil)
