package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"arcadekit/core"
)

// AggregationPeriod represents different time periods for aggregation
type AggregationPeriod string

const (
	PeriodDaily   AggregationPeriod = "daily"
	PeriodWeekly  AggregationPeriod = "weekly"
	PeriodMonthly AggregationPeriod = "monthly"
)

// AggregatedData represents aggregated analytics data
type AggregatedData struct {
	Period    AggregationPeriod `json:"period"`
	Key       string            `json:"key"` // e.g., "2024-01-01" for daily, "2024-W01" for weekly
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`

	// User engagement
	ActiveUsers int `json:"active_users"`

	// Scores
	ScoresSubmitted int64                 `json:"scores_submitted"`
	ScoreTotal      int64                 `json:"score_total"`
	ScoresByGame    map[core.GameID]int64 `json:"scores_by_game"`

	// Game creation
	GamesCreated int64 `json:"games_created"`

	// Credits
	CreditsEarned int64 `json:"credits_earned"`
	CreditsSpent  int64 `json:"credits_spent"`

	// Achievements
	AchievementsUnlocked int64                          `json:"achievements_unlocked"`
	UnlocksByType        map[core.AchievementType]int64 `json:"unlocks_by_type"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
}

// AggregationEngine handles periodic aggregation of analytics data
type AggregationEngine struct {
	mu sync.RWMutex

	metrics *PlatformMetrics
	hook    Hook

	dailyAggregations   map[string]*AggregatedData
	weeklyAggregations  map[string]*AggregatedData
	monthlyAggregations map[string]*AggregatedData

	aggregationInterval time.Duration
	lastAggregation     time.Time
}

func NewAggregationEngine(metrics *PlatformMetrics, aggregationInterval time.Duration) *AggregationEngine {
	return &AggregationEngine{
		metrics:             metrics,
		hook:                metrics,
		dailyAggregations:   make(map[string]*AggregatedData),
		weeklyAggregations:  make(map[string]*AggregatedData),
		monthlyAggregations: make(map[string]*AggregatedData),
		aggregationInterval: aggregationInterval,
		lastAggregation:     time.Now(),
	}
}

// OnEvent forwards events to the underlying metrics hook
func (ae *AggregationEngine) OnEvent(e core.Event) {
	ae.hook.OnEvent(e)
}

// AggregateNow forces an immediate aggregation of all periods
func (ae *AggregationEngine) AggregateNow() error {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	now := time.Now().UTC()

	ae.aggregateDaily(now)
	ae.aggregateWeekly(now)
	ae.aggregateMonthly(now)

	ae.lastAggregation = now
	return nil
}

func (ae *AggregationEngine) aggregateDaily(now time.Time) {
	now = now.UTC()
	today := now.Format("2006-01-02")
	startTime := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endTime := startTime.Add(24 * time.Hour)

	data := ae.newData(PeriodDaily, today, startTime, endTime, now)
	data.ActiveUsers = ae.metrics.GetDailyActiveUsers(today)
	ae.addDay(data, today)

	ae.dailyAggregations[today] = data
}

// aggregateWeekly aggregates data for the current week
func (ae *AggregationEngine) aggregateWeekly(now time.Time) {
	now = now.UTC()
	year, week := now.ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d", year, week)

	// Calculate week start (Monday)
	daysSinceMonday := int(now.Weekday()-time.Monday) % 7
	if daysSinceMonday < 0 {
		daysSinceMonday += 7
	}
	startTime := time.Date(now.Year(), now.Month(), now.Day()-daysSinceMonday, 0, 0, 0, 0, time.UTC)
	endTime := startTime.Add(7 * 24 * time.Hour)

	data := ae.newData(PeriodWeekly, weekKey, startTime, endTime, now)
	data.ActiveUsers = ae.metrics.GetWeeklyActiveUsers(weekKey)

	for i := 0; i < 7; i++ {
		ae.addDay(data, startTime.AddDate(0, 0, i).Format("2006-01-02"))
	}

	ae.weeklyAggregations[weekKey] = data
}

// aggregateMonthly aggregates data for the current month
func (ae *AggregationEngine) aggregateMonthly(now time.Time) {
	now = now.UTC()
	monthKey := now.Format("2006-01")

	startTime := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endTime := startTime.AddDate(0, 1, 0)

	data := ae.newData(PeriodMonthly, monthKey, startTime, endTime, now)
	data.ActiveUsers = ae.metrics.GetMonthlyActiveUsers(monthKey)

	daysInMonth := int(endTime.Sub(startTime).Hours() / 24)
	for i := 0; i < daysInMonth; i++ {
		ae.addDay(data, startTime.AddDate(0, 0, i).Format("2006-01-02"))
	}

	ae.monthlyAggregations[monthKey] = data
}

func (ae *AggregationEngine) newData(period AggregationPeriod, key string, start, end, now time.Time) *AggregatedData {
	return &AggregatedData{
		Period:        period,
		Key:           key,
		StartTime:     start,
		EndTime:       end,
		CreatedAt:     now,
		ScoresByGame:  make(map[core.GameID]int64),
		UnlocksByType: make(map[core.AchievementType]int64),
	}
}

func (ae *AggregationEngine) addDay(data *AggregatedData, dayKey string) {
	data.ScoresSubmitted += ae.metrics.GetScoresByDay(dayKey)
	data.ScoreTotal += ae.metrics.scoreTotalAtDay(dayKey)
	data.GamesCreated += ae.metrics.GetGamesCreatedByDay(dayKey)
	data.CreditsEarned += ae.metrics.GetCreditsEarnedByDay(dayKey)
	data.CreditsSpent += ae.metrics.creditsSpentAtDay(dayKey)
	data.AchievementsUnlocked += ae.metrics.unlocksAtDay(dayKey)
}

// GetAggregatedData returns aggregated data for a specific period and key
func (ae *AggregationEngine) GetAggregatedData(period AggregationPeriod, key string) (*AggregatedData, bool) {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	var aggregations map[string]*AggregatedData
	switch period {
	case PeriodDaily:
		aggregations = ae.dailyAggregations
	case PeriodWeekly:
		aggregations = ae.weeklyAggregations
	case PeriodMonthly:
		aggregations = ae.monthlyAggregations
	default:
		return nil, false
	}

	data, exists := aggregations[key]
	return data, exists
}

// GetAllAggregatedData returns all aggregated data for a specific period
func (ae *AggregationEngine) GetAllAggregatedData(period AggregationPeriod) []*AggregatedData {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	var aggregations map[string]*AggregatedData
	switch period {
	case PeriodDaily:
		aggregations = ae.dailyAggregations
	case PeriodWeekly:
		aggregations = ae.weeklyAggregations
	case PeriodMonthly:
		aggregations = ae.monthlyAggregations
	default:
		return nil
	}

	result := make([]*AggregatedData, 0, len(aggregations))
	for _, data := range aggregations {
		result = append(result, data)
	}
	return result
}

// Start begins periodic aggregation until the context is cancelled.
func (ae *AggregationEngine) Start(ctx context.Context) {
	ticker := time.NewTicker(ae.aggregationInterval)
	defer ticker.Stop()

	_ = ae.AggregateNow()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = ae.AggregateNow()
		}
	}
}

// ExportData exports aggregated data to JSON format
func (ae *AggregationEngine) ExportData(period AggregationPeriod) ([]byte, error) {
	data := ae.GetAllAggregatedData(period)
	return json.MarshalIndent(data, "", "  ")
}

// ExportToFile writes aggregated data for a period to a file as JSON.
func (ae *AggregationEngine) ExportToFile(period AggregationPeriod, filename string) error {
	data, err := ae.ExportData(period)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
