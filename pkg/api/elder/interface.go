package elder

import "context"

type IEndpoint interface {
	Verify(ctx context.Context, kind Kind, input map[string]any) (Verdict, error)
	Ask(ctx context.Context, prompt string, hints map[string]any) (Reply, error)
}
