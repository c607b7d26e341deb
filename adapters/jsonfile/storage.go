package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"arcadekit/core"
	"arcadekit/engine"
)

// Store persists the whole platform state to a single JSON file.
// Suitable for demos and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[core.UserID]*userData
}

type userData struct {
	Achievements map[core.AchievementType]core.Achievement `json:"achievements"`
	Scores       []core.Score                              `json:"scores"`
	Games        []core.Game                               `json:"games"`
	Credits      int64                                     `json:"credits"`
}

func newUserData() *userData {
	return &userData{Achievements: map[core.AchievementType]core.Achievement{}}
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.UserID]*userData{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]*userData
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if v.Achievements == nil {
			v.Achievements = map[core.AchievementType]core.Achievement{}
		}
		s.data[core.UserID(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	raw := make(map[string]*userData, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) get(user core.UserID) *userData {
	if d, ok := s.data[user]; ok {
		return d
	}
	d := newUserData()
	s.data[user] = d
	return d
}

func (s *Store) AchievementsByUser(_ context.Context, user core.UserID) ([]core.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(user)
	out := make([]core.Achievement, 0, len(d.Achievements))
	for _, def := range core.Definitions() {
		if a, ok := d.Achievements[def.Type]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateAchievement(_ context.Context, a core.Achievement) (core.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(a.UserID)
	if _, exists := d.Achievements[a.Type]; exists {
		return core.Achievement{}, engine.ErrDuplicate
	}
	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	d.Achievements[a.Type] = a
	if err := s.persist(); err != nil {
		return core.Achievement{}, err
	}
	return a, nil
}

func (s *Store) UpdateAchievement(_ context.Context, id string, progress float64, completed bool, completedAt *time.Time) (core.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.data {
		for typ, a := range d.Achievements {
			if a.ID != id {
				continue
			}
			a.Progress = progress
			a.Completed = completed
			a.CompletedAt = completedAt
			a.UpdatedAt = time.Now().UTC()
			d.Achievements[typ] = a
			if err := s.persist(); err != nil {
				return core.Achievement{}, err
			}
			return a, nil
		}
	}
	return core.Achievement{}, engine.ErrNotFound
}

func (s *Store) ScoresByUser(_ context.Context, user core.UserID) ([]core.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(user)
	out := make([]core.Score, len(d.Scores))
	copy(out, d.Scores)
	return out, nil
}

func (s *Store) SaveScore(_ context.Context, score core.Score) (core.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(score.UserID)
	score.ID = uuid.NewString()
	score.CreatedAt = time.Now().UTC()
	d.Scores = append(d.Scores, score)
	if err := s.persist(); err != nil {
		return core.Score{}, err
	}
	return score, nil
}

func (s *Store) GamesByUser(_ context.Context, user core.UserID) ([]core.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(user)
	out := make([]core.Game, len(d.Games))
	copy(out, d.Games)
	return out, nil
}

func (s *Store) SaveGame(_ context.Context, game core.Game) (core.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(game.UserID)
	if game.ID == "" {
		game.ID = core.GameID(uuid.NewString())
	}
	game.CreatedAt = time.Now().UTC()
	d.Games = append(d.Games, game)
	if err := s.persist(); err != nil {
		return core.Game{}, err
	}
	return game, nil
}

func (s *Store) Credits(_ context.Context, user core.UserID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(user).Credits, nil
}

func (s *Store) AddCredits(_ context.Context, user core.UserID, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(user)
	next, err := core.AddSafe(d.Credits, delta)
	if err != nil {
		return 0, err
	}
	d.Credits = next
	if err := s.persist(); err != nil {
		return 0, err
	}
	return next, nil
}

var _ engine.Storage = (*Store)(nil)
