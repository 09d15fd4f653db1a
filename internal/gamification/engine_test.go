package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/decentralizedrights/portal/pkg/pubsub"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) addDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func newTestEngine(t *testing.T, store Store, opts ...Option) (*Engine, *clock) {
	t.Helper()
	c := newClock()
	engine, err := NewEngine(context.Background(), store, append([]Option{WithClock(c.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine, c
}

func Test_State_Level(t *testing.T) {
	testCases := []struct {
		xp       int64
		level    int
		progress float64
	}{
		{xp: 0, level: 1, progress: 0},
		{xp: 999, level: 1, progress: 99.9},
		{xp: 1000, level: 2, progress: 0},
		{xp: 1250, level: 2, progress: 25},
		{xp: 5500, level: 6, progress: 50},
	}

	for _, tc := range testCases {
		s := State{XP: tc.xp}
		require.Equal(t, tc.level, s.Level())
		require.InDelta(t, tc.progress, s.Progress(), 1e-9)
		require.Equal(t, int64(tc.level)*XPPerLevel, s.NextLevelXP())
	}
}

func Test_State_MarshalJSON(t *testing.T) {
	s := NewState()
	s.XP = 2100

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, float64(3), out["level"])
	require.Equal(t, float64(2100), out["xp"])

	var back State
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, int64(2100), back.XP)
}

func Test_Engine_AwardXP(t *testing.T) {
	store := &MemoryStore{}
	engine, _ := newTestEngine(t, store)
	ctx := context.Background()

	award, err := engine.AwardXP(ctx, 50, "lesson")
	require.NoError(t, err)
	require.Equal(t, Award{XP: 50, Level: 1}, award)

	award, err = engine.AwardXP(ctx, 30, "video")
	require.NoError(t, err)
	require.Equal(t, Award{XP: 80, Level: 1}, award)

	award, err = engine.AwardXP(ctx, 1000, "bonus")
	require.NoError(t, err)
	require.Equal(t, Award{XP: 1080, Level: 2, LevelUp: true}, award)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1080), stored.XP)
	require.Equal(t, 3, store.Saves())

	_, err = engine.AwardXP(ctx, -1, "cheat")
	require.True(t, errorx.Is(err, errorx.BadRequest))
	require.Equal(t, int64(1080), engine.State().XP)
}

func Test_Engine_ConcurrentAwards(t *testing.T) {
	store := &MemoryStore{}
	engine, _ := newTestEngine(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			award, err := engine.AwardXP(context.Background(), 10, "tick")
			require.NoError(t, err)
			require.Equal(t, LevelOf(award.XP), award.Level)
		}()
	}
	wg.Wait()

	s := engine.State()
	require.Equal(t, int64(1000), s.XP)
	require.Equal(t, 2, s.Level())
	require.Equal(t, 100, store.Saves())
}

func Test_Engine_Streak(t *testing.T) {
	engine, c := newTestEngine(t, &MemoryStore{})
	ctx := context.Background()

	_, err := engine.CompleteLesson(ctx, "1-1")
	require.NoError(t, err)
	require.Equal(t, 1, engine.State().Streak)

	_, err = engine.CompleteLesson(ctx, "1-2")
	require.NoError(t, err)
	require.Equal(t, 1, engine.State().Streak)
	require.Equal(t, int64(100), engine.State().XP)

	c.addDays(1)
	award, err := engine.CompleteLesson(ctx, "1-3")
	require.NoError(t, err)
	require.Equal(t, 2, engine.State().Streak)
	require.Equal(t, int64(100+LessonXP+StreakDayXP), award.XP)

	_, err = engine.WatchVideo(ctx, "intro")
	require.NoError(t, err)
	require.Equal(t, int64(100+LessonXP+StreakDayXP+VideoXP), engine.State().XP)

	c.addDays(2)
	_, err = engine.CompleteLesson(ctx, "1-4")
	require.NoError(t, err)
	require.Equal(t, 1, engine.State().Streak)
	require.Equal(t, int64(100+2*LessonXP+StreakDayXP+VideoXP), engine.State().XP)
	require.Equal(t, c.Now().Format(dateLayout), engine.State().LastActivityDate)
}

func Test_Engine_CompleteQuiz(t *testing.T) {
	engine, _ := newTestEngine(t, &MemoryStore{})
	ctx := context.Background()

	award, err := engine.CompleteQuiz(ctx, "1-1", 79.9)
	require.NoError(t, err)
	require.Equal(t, Award{XP: 0, Level: 1}, award)

	award, err = engine.CompleteQuiz(ctx, "1-1", 80)
	require.NoError(t, err)
	require.Equal(t, HighQuizXP, award.XP)

	for _, score := range []float64{-1, 101, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = engine.CompleteQuiz(ctx, "1-1", score)
		require.True(t, errorx.Is(err, errorx.BadRequest), "score %v", score)
	}
	require.Equal(t, HighQuizXP, engine.State().XP)
}

func Test_Engine_AwardXP_Overflow(t *testing.T) {
	store := &MemoryStore{}
	engine, _ := newTestEngine(t, store)
	ctx := context.Background()

	_, err := engine.AwardXP(ctx, math.MaxInt64, "jackpot")
	require.True(t, errorx.Is(err, errorx.BadRequest))
	require.Equal(t, NewState(), engine.State())
	require.Equal(t, 0, store.Saves())

	limit := math.MaxInt64 - StreakDayXP
	award, err := engine.AwardXP(ctx, limit, "jackpot")
	require.NoError(t, err)
	require.Equal(t, limit, award.XP)

	_, err = engine.AwardXP(ctx, 10, "tick")
	require.True(t, errorx.Is(err, errorx.BadRequest))
	require.Equal(t, limit, engine.State().XP)
	require.Equal(t, 1, store.Saves())
}

func Test_Engine_Reset(t *testing.T) {
	store := &MemoryStore{}
	engine, _ := newTestEngine(t, store)
	ctx := context.Background()

	_, err := engine.CompleteModule(ctx, "intro-post")
	require.NoError(t, err)

	events, err := engine.Subscribe("ui")
	require.NoError(t, err)

	require.NoError(t, engine.Reset(ctx))
	require.Equal(t, NewState(), engine.State())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, NewState(), loaded)

	ev := <-events
	require.Equal(t, StateReset, ev.Type)
	require.Equal(t, int64(0), ev.XP)

	award, err := engine.CompleteModule(ctx, "intro-post")
	require.NoError(t, err)
	require.Equal(t, ModuleXP, award.XP)

	store.Err = errors.New("disk full")
	require.EqualError(t, engine.Reset(ctx), "disk full")
	require.Equal(t, ModuleXP, engine.State().XP)
}

func Test_Engine_CompleteModule(t *testing.T) {
	engine, _ := newTestEngine(t, &MemoryStore{})
	ctx := context.Background()

	award, err := engine.CompleteModule(ctx, "intro-post")
	require.NoError(t, err)
	require.Equal(t, ModuleXP, award.XP)
	require.Equal(t, []string{RightsGuardianBadge}, engine.State().BadgeIDs())

	award, err = engine.CompleteModule(ctx, "intro-post")
	require.NoError(t, err)
	require.Equal(t, ModuleXP, award.XP)
	require.Equal(t, []string{"intro-post"}, engine.State().ModulesCompleted)

	_, err = engine.CompleteModule(ctx, "m2-poat")
	require.NoError(t, err)
	require.NotContains(t, engine.State().BadgeIDs(), ExplorerBadge)

	award, err = engine.CompleteModule(ctx, "m3-sdg")
	require.NoError(t, err)
	require.Equal(t, 3*ModuleXP, award.XP)
	require.Equal(t, []string{
		ActivityHeroBadge, ExplorerBadge, RightsGuardianBadge, SustainabilityStewardBadge,
	}, engine.State().BadgeIDs())

	_, err = engine.CompleteModule(ctx, " ")
	require.True(t, errorx.Is(err, errorx.BadRequest))

	statuses := engine.Badges()
	require.Len(t, statuses, 6)
	require.Equal(t, ExplorerBadge, statuses[0].ID)
	require.True(t, statuses[0].Unlocked)
	require.NotNil(t, statuses[0].UnlockedAt)
	require.Equal(t, QuantumDefenderBadge, statuses[5].ID)
	require.False(t, statuses[5].Unlocked)
	require.Nil(t, statuses[5].UnlockedAt)
}

func Test_Engine_UnlockBadge_Idempotent(t *testing.T) {
	store := &MemoryStore{}
	engine, _ := newTestEngine(t, store)
	ctx := context.Background()

	events, err := engine.Subscribe("ui")
	require.NoError(t, err)

	unlocked, err := engine.UnlockBadge(ctx, QuantumDefenderBadge)
	require.NoError(t, err)
	require.True(t, unlocked)
	before := engine.State()

	for i := 0; i < 3; i++ {
		unlocked, err = engine.UnlockBadge(ctx, QuantumDefenderBadge)
		require.NoError(t, err)
		require.False(t, unlocked)
	}
	require.Equal(t, before, engine.State())
	require.Equal(t, 1, store.Saves())

	require.Len(t, events, 1)
	ev := <-events
	require.Equal(t, BadgeUnlocked, ev.Type)
	require.Equal(t, QuantumDefenderBadge, ev.BadgeID)
	require.NotEmpty(t, ev.ID)

	_, err = engine.UnlockBadge(ctx, "golden-goose")
	require.True(t, errorx.Is(err, errorx.NotFound))
	require.Contains(t, err.Error(), QuantumDefenderBadge)
}

func Test_Engine_SaveFailureRollsBack(t *testing.T) {
	store := &MemoryStore{Err: errors.New("disk full")}
	engine, _ := newTestEngine(t, store)
	ctx := context.Background()

	events, err := engine.Subscribe("ui")
	require.NoError(t, err)

	_, err = engine.CompleteModule(ctx, "quantum-101")
	require.EqualError(t, err, "disk full")
	require.Equal(t, NewState(), engine.State())
	require.Len(t, events, 0)

	store.Err = nil
	_, err = engine.CompleteModule(ctx, "quantum-101")
	require.NoError(t, err)
	require.True(t, engine.State().HasBadge(QuantumDefenderBadge))
}

func Test_Engine_Subscribers(t *testing.T) {
	engine, _ := newTestEngine(t, &MemoryStore{})
	ctx := context.Background()

	slow, err := engine.Subscribe("slow")
	require.NoError(t, err)

	_, err = engine.Subscribe("slow")
	require.True(t, errorx.Is(err, errorx.AlreadyExists))

	for i := 0; i < SubscriberBuffer+6; i++ {
		_, err := engine.AwardXP(ctx, 1, "tick")
		require.NoError(t, err)
	}
	require.Len(t, slow, SubscriberBuffer)

	engine.Unsubscribe("slow")
	count := 0
	for range slow {
		count++
	}
	require.Equal(t, SubscriberBuffer, count)

	// Unsubscribing twice is harmless.
	engine.Unsubscribe("slow")

	fresh, err := engine.Subscribe("slow")
	require.NoError(t, err)
	engine.Close()
	_, ok := <-fresh
	require.False(t, ok)
}

type recordPublisher struct {
	mu    sync.Mutex
	topic string
	packs []*pubsub.Pack
	err   error
}

func (p *recordPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.packs = append(p.packs, pack)
	return p.err
}

func Test_Engine_Publisher(t *testing.T) {
	publisher := &recordPublisher{}
	engine, _ := newTestEngine(t, &MemoryStore{}, WithPublisher(publisher, "drp.gamification"))
	ctx := context.Background()

	_, err := engine.AwardXP(ctx, 1000, "bonus")
	require.NoError(t, err)

	require.Equal(t, "drp.gamification", publisher.topic)
	require.Len(t, publisher.packs, 2)

	var ev Event
	require.NoError(t, json.Unmarshal(publisher.packs[0].Msg, &ev))
	require.Equal(t, XPAwarded, ev.Type)
	require.Equal(t, int64(1000), ev.Amount)
	require.Equal(t, "bonus", ev.Reason)
	require.Equal(t, ev.ID, string(publisher.packs[0].Key))

	require.NoError(t, json.Unmarshal(publisher.packs[1].Msg, &ev))
	require.Equal(t, LevelUp, ev.Type)
	require.Equal(t, 2, ev.Level)

	// Publishing failures do not undo the award.
	publisher.err = errors.New("broker down")
	award, err := engine.AwardXP(ctx, 5, "tick")
	require.NoError(t, err)
	require.Equal(t, int64(1005), award.XP)
}

func Test_LocalStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := NewLocalStore(localstore.New(dir))

	s, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, NewState(), s)

	engine, _ := newTestEngine(t, store)
	_, err = engine.CompleteModule(ctx, "ai-basics")
	require.NoError(t, err)

	reloaded, err := NewEngine(ctx, store)
	require.NoError(t, err)
	defer reloaded.Close()
	require.Equal(t, ModuleXP, reloaded.State().XP)
	require.True(t, reloaded.State().HasBadge(AIElderApprenticeBadge))

	path := filepath.Join(dir, localstore.KeyGamification+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, NewState(), s)

	require.NoError(t, os.WriteFile(path, []byte(`{"xp":120}`), 0o600))
	s, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(120), s.XP)
	require.NotNil(t, s.Badges)
	require.NotNil(t, s.ModulesCompleted)

	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func Test_State_UnmarshalJSON_Badges(t *testing.T) {
	unlockedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var s State
	require.NoError(t, json.Unmarshal([]byte(`{"xp":10,"badges":{"explorer":"2024-05-01T10:00:00Z"}}`), &s))
	require.Equal(t, map[string]time.Time{ExplorerBadge: unlockedAt}, s.Badges)

	require.NoError(t, json.Unmarshal([]byte(`{"badges":["explorer","activity-hero"]}`), &s))
	require.Equal(t, int64(10), s.XP)
	require.Equal(t, map[string]time.Time{
		ExplorerBadge:     unlockedAt,
		ActivityHeroBadge: {},
	}, s.Badges)

	require.Error(t, json.Unmarshal([]byte(`{"badges":"explorer"}`), &s))
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeRedis) Exist(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error {
	return nil
}

func Test_RedisStore(t *testing.T) {
	client := &fakeRedis{data: map[string]string{}}
	ctx := context.Background()
	store := NewRedisStore(client, "drp:gamification:", "0xabc")

	s, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, NewState(), s)

	engine, _ := newTestEngine(t, store)
	_, err = engine.AwardXP(ctx, 70, "lesson")
	require.NoError(t, err)

	raw, ok := client.data["drp:gamification:0xabc"]
	require.True(t, ok)
	require.Contains(t, raw, `"xp":70`)

	client.data["drp:gamification:0xabc"] = "corrupted"
	s, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, NewState(), s)

	require.NoError(t, engine.Reset(ctx))
	_, ok = client.data["drp:gamification:0xabc"]
	require.False(t, ok)
	s, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, NewState(), s)
}

func Test_Default(t *testing.T) {
	cfg := config.Default()
	cfg.State.Dir = t.TempDir()
	ctx := xcontext.WithConfigs(context.Background(), cfg)

	first, err := Default(ctx)
	require.NoError(t, err)
	second, err := Default(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
}
