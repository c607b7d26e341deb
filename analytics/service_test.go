package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "arcadekit/adapters/memory"
	"arcadekit/engine"
)

func TestServiceAttach(t *testing.T) {
	svc := engine.NewService(mem.New(), engine.NewEventBus(engine.DispatchSync))
	defer svc.Close()

	analytics := NewService()
	analytics.Attach(svc)

	_, _, err := svc.SubmitScore(context.Background(), "alice", "g1", 500)
	require.NoError(t, err)

	day := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, 1, analytics.Metrics().GetDailyActiveUsers(day))
	assert.Equal(t, int64(1), analytics.Metrics().GetScoresByDay(day))
	// The first score unlocks at least one achievement.
	scores, _, unlocks := analytics.Metrics().GetRealtimeStats()
	assert.Equal(t, int64(1), scores)
	assert.GreaterOrEqual(t, unlocks, int64(1))

	require.NoError(t, analytics.ForceAggregation())
	daily, ok := analytics.Aggregated(PeriodDaily, day)
	require.True(t, ok)
	assert.Equal(t, int64(500), daily.ScoreTotal)
}
