package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventScoreSubmitted      EventType = "score_submitted"
	EventGameCreated         EventType = "game_created"
	EventCreditsAdded        EventType = "credits_added"
	EventAchievementProgress EventType = "achievement_progress"
	EventAchievementUnlocked EventType = "achievement_unlocked"
)

// Event represents an immutable domain event.
type Event struct {
	Type        EventType       `json:"type"`
	Time        time.Time       `json:"time"`
	UserID      UserID          `json:"user_id"`
	GameID      GameID          `json:"game_id,omitempty"`
	Value       int64           `json:"value,omitempty"`
	Total       int64           `json:"total,omitempty"`
	Achievement AchievementType `json:"achievement,omitempty"`
	Progress    float64         `json:"progress,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

func NewScoreSubmitted(user UserID, game GameID, value int64) Event {
	return Event{Type: EventScoreSubmitted, Time: time.Now().UTC(), UserID: user, GameID: game, Value: value}
}

func NewGameCreated(user UserID, game GameID) Event {
	return Event{Type: EventGameCreated, Time: time.Now().UTC(), UserID: user, GameID: game}
}

func NewCreditsAdded(user UserID, delta int64, total int64) Event {
	return Event{Type: EventCreditsAdded, Time: time.Now().UTC(), UserID: user, Value: delta, Total: total}
}

func NewAchievementProgress(user UserID, typ AchievementType, progress float64) Event {
	return Event{Type: EventAchievementProgress, Time: time.Now().UTC(), UserID: user, Achievement: typ, Progress: progress}
}

func NewAchievementUnlocked(user UserID, typ AchievementType) Event {
	return Event{Type: EventAchievementUnlocked, Time: time.Now().UTC(), UserID: user, Achievement: typ, Progress: 100}
}
