package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcadekit/core"
)

func TestPlatformMetrics_OnEvent(t *testing.T) {
	metrics := NewPlatformMetrics()

	userID := core.UserID("user123")
	now := time.Now().UTC()

	metrics.OnEvent(core.Event{
		Type:   core.EventScoreSubmitted,
		UserID: userID,
		Time:   now,
		GameID: core.GameID("g1"),
		Value:  500,
	})
	metrics.OnEvent(core.Event{
		Type:   core.EventGameCreated,
		UserID: userID,
		Time:   now,
		GameID: core.GameID("g2"),
	})
	metrics.OnEvent(core.Event{
		Type:        core.EventAchievementUnlocked,
		UserID:      userID,
		Time:        now,
		Achievement: core.TypeFirstGame,
		Progress:    100,
	})

	dayKey := now.Format("2006-01-02")
	assert.Equal(t, int64(1), metrics.GetScoresByDay(dayKey))
	assert.Equal(t, int64(500), metrics.GetScoreTotalByGame("g1"))
	assert.Equal(t, int64(1), metrics.GetGamesCreatedByDay(dayKey))
	assert.Equal(t, 1, metrics.GetDailyActiveUsers(dayKey))
	assert.Equal(t, int64(1), metrics.GetUnlocksByType(core.TypeFirstGame))
	assert.Equal(t, 1, metrics.GetUniqueHolders(core.TypeFirstGame))

	scores, games, unlocks := metrics.GetRealtimeStats()
	assert.Equal(t, int64(1), scores)
	assert.Equal(t, int64(1), games)
	assert.Equal(t, int64(1), unlocks)
}

func TestPlatformMetrics_Credits(t *testing.T) {
	metrics := NewPlatformMetrics()
	now := time.Now().UTC()
	dayKey := now.Format("2006-01-02")

	metrics.OnEvent(core.Event{Type: core.EventCreditsAdded, UserID: "u", Time: now, Value: 10, Total: 10})
	metrics.OnEvent(core.Event{Type: core.EventCreditsAdded, UserID: "u", Time: now, Value: -4, Total: 6})

	assert.Equal(t, int64(10), metrics.GetCreditsEarnedByDay(dayKey))
	assert.Equal(t, int64(4), metrics.creditsSpentAtDay(dayKey))
}

func TestDAU(t *testing.T) {
	dau := NewDAU()
	now := time.Now().UTC()
	day := now.Format("2006-01-02")

	dau.OnEvent(core.Event{Type: core.EventScoreSubmitted, UserID: "alice", Time: now})
	dau.OnEvent(core.Event{Type: core.EventScoreSubmitted, UserID: "alice", Time: now})
	dau.OnEvent(core.Event{Type: core.EventGameCreated, UserID: "bob", Time: now})

	assert.Equal(t, 2, dau.Count(day))
	assert.Equal(t, 0, dau.Count("1999-01-01"))
}

func TestAggregationEngine(t *testing.T) {
	metrics := NewPlatformMetrics()
	aggregator := NewAggregationEngine(metrics, 1*time.Hour)

	userID := core.UserID("user123")
	now := time.Now().UTC()

	metrics.OnEvent(core.Event{
		Type:   core.EventScoreSubmitted,
		UserID: userID,
		Time:   now,
		GameID: core.GameID("g1"),
		Value:  250,
	})
	metrics.OnEvent(core.Event{
		Type:        core.EventAchievementUnlocked,
		UserID:      userID,
		Time:        now,
		Achievement: core.TypeFirstGame,
	})

	require.NoError(t, aggregator.AggregateNow())

	dayKey := now.Format("2006-01-02")
	daily, exists := aggregator.GetAggregatedData(PeriodDaily, dayKey)
	require.True(t, exists)
	assert.Equal(t, int64(1), daily.ScoresSubmitted)
	assert.Equal(t, int64(250), daily.ScoreTotal)
	assert.Equal(t, int64(1), daily.AchievementsUnlocked)
	assert.Equal(t, 1, daily.ActiveUsers)

	weekly := aggregator.GetAllAggregatedData(PeriodWeekly)
	require.Len(t, weekly, 1)
	assert.Equal(t, int64(1), weekly[0].ScoresSubmitted)

	monthly := aggregator.GetAllAggregatedData(PeriodMonthly)
	require.Len(t, monthly, 1)
	assert.Equal(t, int64(250), monthly[0].ScoreTotal)
}

func TestBridgeHook(t *testing.T) {
	a := NewDAU()
	b := NewPlatformMetrics()
	bridge := NewBridge(a, b)

	now := time.Now().UTC()
	bridge.OnEvent(core.Event{Type: core.EventScoreSubmitted, UserID: "alice", Time: now, Value: 10})

	day := now.Format("2006-01-02")
	assert.Equal(t, 1, a.Count(day))
	assert.Equal(t, int64(1), b.GetScoresByDay(day))
}

func TestGetTopGames(t *testing.T) {
	metrics := NewPlatformMetrics()
	now := time.Now().UTC()

	metrics.OnEvent(core.Event{Type: core.EventScoreSubmitted, UserID: "u", Time: now, GameID: "low", Value: 10})
	metrics.OnEvent(core.Event{Type: core.EventScoreSubmitted, UserID: "u", Time: now, GameID: "high", Value: 900})
	metrics.OnEvent(core.Event{Type: core.EventScoreSubmitted, UserID: "u", Time: now, GameID: "mid", Value: 100})

	top := metrics.GetTopGames(2)
	rows := top["top_games_by_score"].([]map[string]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, core.GameID("high"), rows[0]["game"])
	assert.Equal(t, int64(900), rows[0]["score_total"])
}
