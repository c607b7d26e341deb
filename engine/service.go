package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arcadekit/core"
	"arcadekit/leaderboard"
)

// Service wires the data provider, event bus, and progress rules into the
// platform's achievement engine. All activity-recording operations funnel into
// Evaluate, which recomputes the caller's achievement set.
type Service struct {
	storage Storage
	bus     *EventBus
	rules   []core.Rule
	board   leaderboard.Board

	// Serializes Evaluate per user so two rapid submissions cannot both
	// observe "no existing record" and create duplicates.
	locks sync.Map // map[core.UserID]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithRules overrides the activity-derived rule set.
func WithRules(rules []core.Rule) Option {
	return func(s *Service) {
		if len(rules) > 0 {
			s.rules = rules
		}
	}
}

// WithBoard attaches a leaderboard updated on every score submission.
func WithBoard(b leaderboard.Board) Option {
	return func(s *Service) { s.board = b }
}

func NewService(storage Storage, bus *EventBus, opts ...Option) *Service {
	if storage == nil || bus == nil {
		panic("NewService requires non-nil storage and bus")
	}
	s := &Service{storage: storage, bus: bus, rules: core.DefaultRules()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe convenience method.
func (s *Service) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *Service) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

func (s *Service) Close() { s.bus.Close() }

func (s *Service) lockUser(user core.UserID) func() {
	v, _ := s.locks.LoadOrStore(user, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// SubmitScore records one score submission, refreshes the leaderboard, and
// returns the saved score together with the achievements that changed.
func (s *Service) SubmitScore(ctx context.Context, user core.UserID, game core.GameID, value int64) (core.Score, []core.Achievement, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.Score{}, nil, err
	}
	if err := core.ValidateGameID(game); err != nil {
		return core.Score{}, nil, err
	}
	if value < 0 {
		return core.Score{}, nil, errors.New("score value cannot be negative")
	}
	saved, err := s.storage.SaveScore(ctx, core.Score{UserID: normalized, GameID: game, Value: value})
	if err != nil {
		return core.Score{}, nil, err
	}
	s.bus.Publish(ctx, core.NewScoreSubmitted(normalized, game, value))
	if s.board != nil {
		if scores, err := s.storage.ScoresByUser(ctx, normalized); err == nil {
			s.board.Update(normalized, core.Activity{Scores: scores}.TotalScore())
		}
	}
	changed, err := s.Evaluate(ctx, normalized)
	if err != nil {
		return saved, nil, err
	}
	return saved, changed, nil
}

// CreateGame records a game created by the user and re-evaluates achievements.
func (s *Service) CreateGame(ctx context.Context, user core.UserID, title string) (core.Game, []core.Achievement, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.Game{}, nil, err
	}
	saved, err := s.storage.SaveGame(ctx, core.Game{UserID: normalized, Title: title})
	if err != nil {
		return core.Game{}, nil, err
	}
	s.bus.Publish(ctx, core.NewGameCreated(normalized, saved.ID))
	changed, err := s.Evaluate(ctx, normalized)
	if err != nil {
		return saved, nil, err
	}
	return saved, changed, nil
}

// AddCredits adjusts the user's credit balance and re-evaluates achievements.
func (s *Service) AddCredits(ctx context.Context, user core.UserID, delta int64) (int64, []core.Achievement, error) {
	if delta == 0 {
		return 0, nil, errors.New("delta cannot be zero")
	}
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return 0, nil, err
	}
	total, err := s.storage.AddCredits(ctx, normalized, delta)
	if err != nil {
		return 0, nil, err
	}
	s.bus.Publish(ctx, core.NewCreditsAdded(normalized, delta, total))
	changed, err := s.Evaluate(ctx, normalized)
	if err != nil {
		return total, nil, err
	}
	return total, changed, nil
}

// Evaluate recomputes the user's achievement progress from the full activity
// history and persists every created or updated record. It returns only the
// records that changed in this invocation, in evaluation order, never nil.
//
// A data provider failure aborts the evaluation; records persisted before the
// failure stay persisted. Monotonicity holds regardless: a stored record is
// touched only when the recomputed progress is strictly greater.
func (s *Service) Evaluate(ctx context.Context, user core.UserID) ([]core.Achievement, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return nil, err
	}
	unlock := s.lockUser(normalized)
	defer unlock()

	existing, err := s.storage.AchievementsByUser(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	byType := make(map[core.AchievementType]core.Achievement, len(existing))
	for _, a := range existing {
		byType[a.Type] = a
	}

	act, err := s.loadActivity(ctx, normalized)
	if err != nil {
		return nil, err
	}

	changed := make([]core.Achievement, 0, len(s.rules)+1)
	for _, rule := range s.rules {
		rec, ok, err := s.apply(ctx, normalized, rule.Type(), core.ClampProgress(rule.Progress(act)), byType)
		if err != nil {
			return nil, err
		}
		if ok {
			changed = append(changed, rec)
		}
	}

	// Hunter runs last against the completed count after the updates above,
	// so unlocks from this very call count toward its threshold.
	completed := 0
	for typ, a := range byType {
		if typ != core.TypeAchievementHunter && a.Completed {
			completed++
		}
	}
	rec, ok, err := s.apply(ctx, normalized, core.TypeAchievementHunter, core.HunterProgress(completed), byType)
	if err != nil {
		return nil, err
	}
	if ok {
		changed = append(changed, rec)
	}
	return changed, nil
}

func (s *Service) loadActivity(ctx context.Context, user core.UserID) (core.Activity, error) {
	scores, err := s.storage.ScoresByUser(ctx, user)
	if err != nil {
		return core.Activity{}, fmt.Errorf("load scores: %w", err)
	}
	games, err := s.storage.GamesByUser(ctx, user)
	if err != nil {
		return core.Activity{}, fmt.Errorf("load games: %w", err)
	}
	credits, err := s.storage.Credits(ctx, user)
	if err != nil {
		return core.Activity{}, fmt.Errorf("load credits: %w", err)
	}
	return core.Activity{Scores: scores, Games: games, Credits: credits}, nil
}

// apply reconciles one type's computed progress against the stored record.
// It creates lazily on first nonzero progress, updates on strict increase,
// and otherwise leaves the record untouched. A completed record is never
// modified even if the recomputed progress regressed.
func (s *Service) apply(ctx context.Context, user core.UserID, typ core.AchievementType, progress float64, byType map[core.AchievementType]core.Achievement) (core.Achievement, bool, error) {
	cur, exists := byType[typ]
	if !exists {
		if progress <= 0 {
			return core.Achievement{}, false, nil
		}
		def, ok := core.DefinitionFor(typ)
		if !ok {
			return core.Achievement{}, false, fmt.Errorf("no definition for achievement type %q", typ)
		}
		rec := core.Achievement{
			UserID:      user,
			Type:        typ,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Progress:    progress,
			Completed:   progress >= 100,
		}
		if rec.Completed {
			now := time.Now().UTC()
			rec.CompletedAt = &now
		}
		created, err := s.storage.CreateAchievement(ctx, rec)
		if err != nil {
			return core.Achievement{}, false, fmt.Errorf("create %s: %w", typ, err)
		}
		byType[typ] = created
		s.publishChange(ctx, created, rec.Completed)
		return created, true, nil
	}

	if cur.Completed || progress <= cur.Progress {
		return cur, false, nil
	}
	nowCompleted := progress >= 100
	completedAt := cur.CompletedAt
	if nowCompleted && completedAt == nil {
		now := time.Now().UTC()
		completedAt = &now
	}
	updated, err := s.storage.UpdateAchievement(ctx, cur.ID, progress, nowCompleted, completedAt)
	if err != nil {
		return core.Achievement{}, false, fmt.Errorf("update %s: %w", typ, err)
	}
	byType[typ] = updated
	s.publishChange(ctx, updated, nowCompleted && !cur.Completed)
	return updated, true, nil
}

func (s *Service) publishChange(ctx context.Context, rec core.Achievement, unlocked bool) {
	if unlocked {
		s.bus.Publish(ctx, core.NewAchievementUnlocked(rec.UserID, rec.Type))
		return
	}
	s.bus.Publish(ctx, core.NewAchievementProgress(rec.UserID, rec.Type, rec.Progress))
}

// Achievements returns every achievement record the user holds.
func (s *Service) Achievements(ctx context.Context, user core.UserID) ([]core.Achievement, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return nil, err
	}
	return s.storage.AchievementsByUser(ctx, normalized)
}

// Profile assembles the user-facing activity summary.
func (s *Service) Profile(ctx context.Context, user core.UserID) (core.Profile, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.Profile{}, err
	}
	act, err := s.loadActivity(ctx, normalized)
	if err != nil {
		return core.Profile{}, err
	}
	achievements, err := s.storage.AchievementsByUser(ctx, normalized)
	if err != nil {
		return core.Profile{}, err
	}
	return core.Profile{
		UserID:       normalized,
		TotalScore:   act.TotalScore(),
		GamesPlayed:  act.DistinctGames(),
		GamesCreated: len(act.Games),
		Credits:      act.Credits,
		Achievements: achievements,
	}, nil
}
