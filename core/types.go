package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// UserID uniquely identifies a platform user.
type UserID string

// GameID uniquely identifies a game on the platform.
type GameID string

// Score is one score submission by a user on a game.
type Score struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"user_id"`
	GameID    GameID    `json:"game_id"`
	Value     int64     `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Game is a game created (published) by a user.
type Game struct {
	ID        GameID    `json:"id"`
	UserID    UserID    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity is a snapshot of everything a user has done on the platform.
// The engine derives all achievement progress from it.
type Activity struct {
	Scores  []Score `json:"scores"`
	Games   []Game  `json:"games"`
	Credits int64   `json:"credits"`
}

// MaxScore returns the highest single score value in the snapshot.
func (a Activity) MaxScore() int64 {
	var max int64
	for _, s := range a.Scores {
		if s.Value > max {
			max = s.Value
		}
	}
	return max
}

// TotalScore returns the cumulative score across all submissions.
func (a Activity) TotalScore() int64 {
	var sum int64
	for _, s := range a.Scores {
		sum += s.Value
	}
	return sum
}

// DistinctGames returns the number of distinct games the user scored on.
func (a Activity) DistinctGames() int {
	seen := make(map[GameID]struct{}, len(a.Scores))
	for _, s := range a.Scores {
		seen[s.GameID] = struct{}{}
	}
	return len(seen)
}

// Achievement is a per-user, per-type progress record. Title, description,
// and icon are copied from the definition at creation time and never re-synced.
type Achievement struct {
	ID          string          `json:"id"`
	UserID      UserID          `json:"user_id"`
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Progress    float64         `json:"progress"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Profile is the read model served to the SPA for a single user.
type Profile struct {
	UserID       UserID        `json:"user_id"`
	TotalScore   int64         `json:"total_score"`
	GamesPlayed  int           `json:"games_played"`
	GamesCreated int           `json:"games_created"`
	Credits      int64         `json:"credits"`
	Achievements []Achievement `json:"achievements"`
}

// AddSafe adds delta to base ensuring no signed overflow occurs.
func AddSafe(base int64, delta int64) (int64, error) {
	if (delta > 0 && base > math.MaxInt64-delta) || (delta < 0 && base < math.MinInt64-delta) {
		return 0, errors.New("integer overflow in AddSafe")
	}
	return base + delta, nil
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateGameID ensures non-empty game id with simple charset check.
func ValidateGameID(g GameID) error {
	s := strings.TrimSpace(string(g))
	if s == "" {
		return errors.New("empty game id")
	}
	// simple check: alnum, dash, underscore
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return errors.New("invalid game id")
	}
	return nil
}

// ClampProgress bounds a percent-complete value to [0,100].
func ClampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Ratio converts count-toward-threshold into a clamped percentage.
func Ratio(count, threshold int64) float64 {
	if threshold <= 0 {
		return 0
	}
	return ClampProgress(100 * float64(count) / float64(threshold))
}
