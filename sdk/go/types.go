package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Achievement mirrors the public JSON surface of core.Achievement.
type Achievement struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Progress    float64    `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Score mirrors core.Score.
type Score struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	Value     int64     `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Game mirrors core.Game.
type Game struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile mirrors core.Profile.
type Profile struct {
	UserID       string        `json:"user_id"`
	TotalScore   int64         `json:"total_score"`
	GamesPlayed  int           `json:"games_played"`
	GamesCreated int           `json:"games_created"`
	Credits      int64         `json:"credits"`
	Achievements []Achievement `json:"achievements"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	User  string `json:"user_id"`
	Score int64  `json:"score"`
}

// Leaderboard is the /leaderboard response.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int                `json:"total"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// Event is a domain event received over the WebSocket stream.
type Event struct {
	Type        string                 `json:"type"`
	Time        time.Time              `json:"time"`
	UserID      string                 `json:"user_id"`
	GameID      string                 `json:"game_id,omitempty"`
	Value       int64                  `json:"value,omitempty"`
	Total       int64                  `json:"total,omitempty"`
	Achievement string                 `json:"achievement,omitempty"`
	Progress    float64                `json:"progress,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("request failed: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
