package engine

import (
	"context"
	"errors"
	"time"

	"arcadekit/core"
)

// Storage is the data provider backing the achievement engine. Adapters must
// enforce at most one achievement per (user, type): CreateAchievement returns
// ErrDuplicate when a record for the pair already exists, and UpdateAchievement
// returns ErrNotFound for an unknown id.
type Storage interface {
	AchievementsByUser(ctx context.Context, user core.UserID) ([]core.Achievement, error)
	CreateAchievement(ctx context.Context, rec core.Achievement) (core.Achievement, error)
	UpdateAchievement(ctx context.Context, id string, progress float64, completed bool, completedAt *time.Time) (core.Achievement, error)

	ScoresByUser(ctx context.Context, user core.UserID) ([]core.Score, error)
	SaveScore(ctx context.Context, score core.Score) (core.Score, error)

	GamesByUser(ctx context.Context, user core.UserID) ([]core.Game, error)
	SaveGame(ctx context.Context, game core.Game) (core.Game, error)

	Credits(ctx context.Context, user core.UserID) (int64, error)
	AddCredits(ctx context.Context, user core.UserID, delta int64) (newTotal int64, err error)
}

var (
	// ErrNotFound reports an achievement id unknown to the storage.
	ErrNotFound = errors.New("achievement not found")
	// ErrDuplicate reports a second achievement record for the same (user, type).
	ErrDuplicate = errors.New("achievement already exists for user and type")
)
