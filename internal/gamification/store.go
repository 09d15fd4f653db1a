package gamification

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/decentralizedrights/portal/pkg/xredis"
)

// Store persists a learner's state. Load returns NewState when nothing
// usable is stored; a corrupted blob is not an error.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Clear(ctx context.Context) error
}

type localStore struct {
	store *localstore.Store
}

// NewLocalStore keeps the state under the drp_gamification key of the
// client-local store.
func NewLocalStore(store *localstore.Store) *localStore {
	return &localStore{store: store}
}

func (l *localStore) Load(ctx context.Context) (State, error) {
	var stored State
	found, err := l.store.Get(ctx, localstore.KeyGamification, &stored)
	if err != nil {
		return State{}, err
	}

	if !found {
		return NewState(), nil
	}

	return hydrate(stored), nil
}

func (l *localStore) Save(ctx context.Context, s State) error {
	return l.store.Set(ctx, localstore.KeyGamification, s)
}

func (l *localStore) Clear(ctx context.Context) error {
	return l.store.Delete(ctx, localstore.KeyGamification)
}

type redisStore struct {
	client xredis.Client
	key    string
}

// NewRedisStore keeps the state of userID under prefix+userID.
func NewRedisStore(client xredis.Client, prefix, userID string) *redisStore {
	return &redisStore{client: client, key: prefix + userID}
}

func (r *redisStore) Load(ctx context.Context) (State, error) {
	exists, err := r.client.Exist(ctx, r.key)
	if err != nil {
		return State{}, err
	}

	if !exists {
		return NewState(), nil
	}

	raw, err := r.client.Get(ctx, r.key)
	if err != nil {
		// Deleted since the existence check.
		if xredis.IsNil(err) {
			return NewState(), nil
		}
		return State{}, err
	}

	var stored State
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		xcontext.Logger(ctx).Warnf("Ignore corrupted gamification state %s: %v", r.key, err)
		return NewState(), nil
	}

	return hydrate(stored), nil
}

func (r *redisStore) Save(ctx context.Context, s State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key, string(b))
}

func (r *redisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key)
}

// MemoryStore keeps the state in memory. Err, when set, fails every Save.
type MemoryStore struct {
	mu    sync.Mutex
	state *State
	saves int

	Err error
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return NewState(), nil
	}

	return m.state.clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	c := s.clone()
	m.state = &c
	m.saves++
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.state = nil
	return nil
}

// Saves returns how many saves succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// hydrate fills what a partial blob left out.
func hydrate(s State) State {
	if s.XP < 0 {
		s.XP = 0
	}

	if s.Streak < 0 {
		s.Streak = 0
	}

	return s.clone()
}
