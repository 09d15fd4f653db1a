package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/logger"
	"github.com/decentralizedrights/portal/pkg/pubsub"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
)

// SubscriberBuffer is the capacity of a subscriber channel. Events to a full
// subscriber are dropped.
const SubscriberBuffer = 64

// Award is the outcome of an XP-granting call.
type Award struct {
	XP      int64 `json:"xp"`
	Level   int   `json:"level"`
	LevelUp bool  `json:"levelUp"`
}

type Option func(*Engine)

// WithPublisher forwards every event to topic.
func WithPublisher(publisher pubsub.Publisher, topic string) Option {
	return func(e *Engine) {
		e.publisher = publisher
		e.topic = topic
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithBadges(manager *BadgeManager) Option {
	return func(e *Engine) {
		e.badges = manager
	}
}

// Engine owns the progress of one learner. Every mutation copies the state,
// changes the copy, persists it and only then makes it current, all under
// one lock, so concurrent awards never lose an update and a failed save
// changes nothing.
type Engine struct {
	mu    sync.Mutex
	state State

	store  Store
	badges *BadgeManager
	now    func() time.Time
	logger logger.Logger

	publisher   pubsub.Publisher
	topic       string
	subscribers *xsync.MapOf[string, chan Event]
}

// NewEngine hydrates the state from store.
func NewEngine(ctx context.Context, store Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:       store,
		badges:      NewBadgeManager(DefaultScanners()...),
		now:         time.Now,
		logger:      xcontext.Logger(ctx),
		subscribers: xsync.NewMapOf[chan Event](),
	}

	for _, opt := range opts {
		opt(e)
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gamification state: %w", err)
	}
	e.state = state

	return e, nil
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (e *Engine) Badges() []BadgeStatus {
	return e.badges.Statuses(e.State())
}

// AwardXP adds amount to the XP, extends the daily streak and unlocks the
// badges the new state earns.
func (e *Engine) AwardXP(ctx context.Context, amount int64, reason string) (Award, error) {
	if amount < 0 {
		return Award{}, errorx.New(errorx.BadRequest, "XP amount must not be negative")
	}

	return e.award(ctx, func(s *State, events *[]Event) error {
		return e.addXP(s, events, amount, reason)
	})
}

func (e *Engine) CompleteLesson(ctx context.Context, lessonID string) (Award, error) {
	return e.AwardXP(ctx, LessonXP, "Completed lesson: "+lessonID)
}

func (e *Engine) WatchVideo(ctx context.Context, videoID string) (Award, error) {
	return e.AwardXP(ctx, VideoXP, "Watched video: "+videoID)
}

// CompleteQuiz awards HighQuizXP when score, a percentage, reaches
// HighQuizScore. Lower scores change nothing.
func (e *Engine) CompleteQuiz(ctx context.Context, lessonID string, score float64) (Award, error) {
	// NaN fails this check too.
	if !(score >= 0 && score <= 100) {
		return Award{}, errorx.New(errorx.BadRequest, "Score must be between 0 and 100")
	}

	if score < HighQuizScore {
		s := e.State()
		return Award{XP: s.XP, Level: s.Level()}, nil
	}

	return e.AwardXP(ctx, HighQuizXP, "Quiz passed: "+lessonID)
}

// CompleteModule records moduleID and awards ModuleXP the first time only.
func (e *Engine) CompleteModule(ctx context.Context, moduleID string) (Award, error) {
	if strings.TrimSpace(moduleID) == "" {
		return Award{}, errorx.New(errorx.BadRequest, "module id is required")
	}

	return e.award(ctx, func(s *State, events *[]Event) error {
		if s.HasModule(moduleID) {
			return nil
		}

		s.ModulesCompleted = append(s.ModulesCompleted, moduleID)
		if err := e.addXP(s, events, ModuleXP, "Completed module: "+moduleID); err != nil {
			return err
		}

		*events = append(*events, e.event(*s, Event{Type: ModuleCompleted, ModuleID: moduleID}))
		return nil
	})
}

// UnlockBadge unlocks a registered badge. It returns false, and notifies
// nobody, when the badge was already unlocked.
func (e *Engine) UnlockBadge(ctx context.Context, id string) (bool, error) {
	if !e.badges.Has(id) {
		return false, errorx.New(errorx.NotFound, "Badge %s not found, known badges: %s",
			id, strings.Join(e.badges.Names(), ", "))
	}

	unlocked := false
	_, err := e.update(ctx, func(s *State) ([]Event, error) {
		if s.HasBadge(id) {
			return nil, nil
		}

		unlocked = true
		events := []Event{}
		e.unlock(s, &events, id)
		return events, nil
	})
	if err != nil {
		return false, err
	}

	return unlocked, nil
}

// restore replaces the state with what overlay derives from the current
// one. overlay runs under the engine lock.
func (e *Engine) restore(ctx context.Context, overlay func(current State) (State, error)) (State, error) {
	return e.update(ctx, func(current *State) ([]Event, error) {
		next, err := overlay(current.clone())
		if err != nil {
			return nil, err
		}

		*current = hydrate(next)
		return []Event{e.event(*current, Event{Type: StateRestored})}, nil
	})
}

// Reset forgets all progress and removes the stored state.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()

	if err := e.store.Clear(ctx); err != nil {
		e.mu.Unlock()
		e.logger.Errorf("Cannot clear gamification state: %v", err)
		return err
	}

	e.state = NewState()
	events := []Event{e.event(e.state, Event{Type: StateReset})}
	e.notify(events)
	e.mu.Unlock()

	e.publish(ctx, events)
	return nil
}

// Subscribe registers a listener under id. The channel is closed by
// Unsubscribe or Close.
func (e *Engine) Subscribe(id string) (<-chan Event, error) {
	ch := make(chan Event, SubscriberBuffer)
	if _, loaded := e.subscribers.LoadOrStore(id, ch); loaded {
		return nil, errorx.New(errorx.AlreadyExists, "Subscriber %s already exists", id)
	}

	return ch, nil
}

func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch, ok := e.subscribers.LoadAndDelete(id); ok {
		close(ch)
	}
}

// Close unsubscribes every listener.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscribers.Range(func(id string, ch chan Event) bool {
		e.subscribers.Delete(id)
		close(ch)
		return true
	})
}

func (e *Engine) award(ctx context.Context, mutate func(*State, *[]Event) error) (Award, error) {
	var before State
	after, err := e.update(ctx, func(s *State) ([]Event, error) {
		before = *s
		events := []Event{}
		if err := mutate(s, &events); err != nil {
			return nil, err
		}
		return events, nil
	})
	if err != nil {
		return Award{}, err
	}

	return Award{XP: after.XP, Level: after.Level(), LevelUp: after.Level() > before.Level()}, nil
}

// update runs mutate on a copy of the state. When mutate reports events the
// copy is saved and becomes current; otherwise, or when mutate fails, nothing
// is written.
func (e *Engine) update(ctx context.Context, mutate func(*State) ([]Event, error)) (State, error) {
	e.mu.Lock()

	next := e.state.clone()
	events, err := mutate(&next)
	if err != nil {
		e.mu.Unlock()
		return State{}, err
	}

	if len(events) == 0 {
		e.mu.Unlock()
		return next, nil
	}

	if err := e.store.Save(ctx, next); err != nil {
		e.mu.Unlock()
		e.logger.Errorf("Cannot save gamification state: %v", err)
		return State{}, err
	}

	e.state = next
	e.notify(events)
	e.mu.Unlock()

	e.publish(ctx, events)
	return next.clone(), nil
}

// addXP refuses amounts that could overflow the XP counter, counting a
// possible streak bonus.
func (e *Engine) addXP(s *State, events *[]Event, amount int64, reason string) error {
	if amount > math.MaxInt64-StreakDayXP-s.XP {
		return errorx.New(errorx.BadRequest, "XP amount %d exceeds the XP limit", amount)
	}

	oldLevel := s.Level()
	s.XP += amount
	*events = append(*events, e.event(*s, Event{Type: XPAwarded, Amount: amount, Reason: reason}))

	e.extendStreak(s, events)

	if s.Level() > oldLevel {
		*events = append(*events, e.event(*s, Event{Type: LevelUp}))
	}

	for _, id := range e.badges.Earned(*s) {
		e.unlock(s, events, id)
	}

	return nil
}

// extendStreak counts consecutive active days. The first award of a day
// following an active day grants StreakDayXP once; a gap restarts at 1.
func (e *Engine) extendStreak(s *State, events *[]Event) {
	now := e.now()
	today := now.Format(dateLayout)
	if s.LastActivityDate == today {
		return
	}

	if s.LastActivityDate == now.AddDate(0, 0, -1).Format(dateLayout) {
		s.Streak++
		s.XP += StreakDayXP
		*events = append(*events, e.event(*s, Event{
			Type:   StreakExtended,
			Amount: StreakDayXP,
			Reason: "Daily streak bonus",
		}))
	} else {
		s.Streak = 1
	}

	s.LastActivityDate = today
}

func (e *Engine) unlock(s *State, events *[]Event, id string) {
	s.Badges[id] = e.now().UTC()
	*events = append(*events, e.event(*s, Event{Type: BadgeUnlocked, BadgeID: id}))
}

func (e *Engine) event(s State, ev Event) Event {
	ev.ID = uuid.NewString()
	ev.XP = s.XP
	ev.Level = s.Level()
	ev.Streak = s.Streak
	ev.At = e.now().UTC()
	return ev
}

// notify must be called with e.mu held.
func (e *Engine) notify(events []Event) {
	e.subscribers.Range(func(id string, ch chan Event) bool {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				e.logger.Warnf("Drop %s event for slow subscriber %s", ev.Type, id)
			}
		}
		return true
	})
}

func (e *Engine) publish(ctx context.Context, events []Event) {
	if e.publisher == nil {
		return
	}

	for _, ev := range events {
		msg, err := json.Marshal(ev)
		if err != nil {
			e.logger.Errorf("Cannot marshal %s event: %v", ev.Type, err)
			continue
		}

		if err := e.publisher.Publish(ctx, e.topic, &pubsub.Pack{Key: []byte(ev.ID), Msg: msg}); err != nil {
			e.logger.Warnf("Cannot publish %s event: %v", ev.Type, err)
		}
	}
}
