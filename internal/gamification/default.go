package gamification

import (
	"context"
	"sync"

	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/decentralizedrights/portal/pkg/xcontext"
)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Default returns the process-wide engine, built on first use from the
// client-local store of the configs carried by ctx. Later calls ignore ctx.
func Default(ctx context.Context) (*Engine, error) {
	defaultOnce.Do(func() {
		cfg := xcontext.Configs(ctx)
		dir, err := cfg.StateDir()
		if err != nil {
			defaultErr = err
			return
		}

		defaultEngine, defaultErr = NewEngine(ctx, NewLocalStore(localstore.New(dir)))
	})

	return defaultEngine, defaultErr
}
