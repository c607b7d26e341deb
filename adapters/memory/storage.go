package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"arcadekit/core"
	"arcadekit/engine"
)

// Store is a concurrent in-memory data provider. Achievements are keyed by
// type per user, which enforces the one-record-per-(user,type) invariant at
// the storage layer.
type Store struct {
	users sync.Map // map[core.UserID]*userRecord
}

type userRecord struct {
	mu           sync.Mutex
	achievements map[core.AchievementType]core.Achievement
	byID         map[string]core.AchievementType
	scores       []core.Score
	games        []core.Game
	credits      int64
}

func New() *Store { return &Store{} }

func (s *Store) getOrCreate(user core.UserID) *userRecord {
	if v, ok := s.users.Load(user); ok {
		return v.(*userRecord)
	}
	rec := &userRecord{
		achievements: map[core.AchievementType]core.Achievement{},
		byID:         map[string]core.AchievementType{},
	}
	actual, _ := s.users.LoadOrStore(user, rec)
	return actual.(*userRecord)
}

func (s *Store) AchievementsByUser(_ context.Context, user core.UserID) ([]core.Achievement, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]core.Achievement, 0, len(rec.achievements))
	for _, d := range core.Definitions() {
		if a, ok := rec.achievements[d.Type]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateAchievement(_ context.Context, a core.Achievement) (core.Achievement, error) {
	rec := s.getOrCreate(a.UserID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, exists := rec.achievements[a.Type]; exists {
		return core.Achievement{}, engine.ErrDuplicate
	}
	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	rec.achievements[a.Type] = a
	rec.byID[a.ID] = a.Type
	return a, nil
}

func (s *Store) UpdateAchievement(_ context.Context, id string, progress float64, completed bool, completedAt *time.Time) (core.Achievement, error) {
	var found *userRecord
	var typ core.AchievementType
	s.users.Range(func(_, v any) bool {
		rec := v.(*userRecord)
		rec.mu.Lock()
		t, ok := rec.byID[id]
		rec.mu.Unlock()
		if ok {
			found, typ = rec, t
			return false
		}
		return true
	})
	if found == nil {
		return core.Achievement{}, engine.ErrNotFound
	}
	found.mu.Lock()
	defer found.mu.Unlock()
	a := found.achievements[typ]
	a.Progress = progress
	a.Completed = completed
	a.CompletedAt = completedAt
	a.UpdatedAt = time.Now().UTC()
	found.achievements[typ] = a
	return a, nil
}

func (s *Store) ScoresByUser(_ context.Context, user core.UserID) ([]core.Score, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]core.Score, len(rec.scores))
	copy(out, rec.scores)
	return out, nil
}

func (s *Store) SaveScore(_ context.Context, score core.Score) (core.Score, error) {
	rec := s.getOrCreate(score.UserID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	score.ID = uuid.NewString()
	score.CreatedAt = time.Now().UTC()
	rec.scores = append(rec.scores, score)
	return score, nil
}

func (s *Store) GamesByUser(_ context.Context, user core.UserID) ([]core.Game, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]core.Game, len(rec.games))
	copy(out, rec.games)
	return out, nil
}

func (s *Store) SaveGame(_ context.Context, game core.Game) (core.Game, error) {
	rec := s.getOrCreate(game.UserID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if game.ID == "" {
		game.ID = core.GameID(uuid.NewString())
	}
	game.CreatedAt = time.Now().UTC()
	rec.games = append(rec.games, game)
	return game, nil
}

func (s *Store) Credits(_ context.Context, user core.UserID) (int64, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.credits, nil
}

func (s *Store) AddCredits(_ context.Context, user core.UserID, delta int64) (int64, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	next, err := core.AddSafe(rec.credits, delta)
	if err != nil {
		return 0, err
	}
	rec.credits = next
	return next, nil
}

var _ engine.Storage = (*Store)(nil)
