package analytics

import (
	"fmt"
	"sync"
	"time"

	"arcadekit/core"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

// DAU tracks daily active users.
type DAU struct {
	mu   sync.Mutex
	days map[string]map[core.UserID]struct{}
}

func NewDAU() *DAU { return &DAU{days: map[string]map[core.UserID]struct{}{}} }

func (d *DAU) OnEvent(e core.Event) {
	day := e.Time.UTC().Format("2006-01-02")
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[core.UserID]struct{}{}
		d.days[day] = m
	}
	m[e.UserID] = struct{}{}
}

func (d *DAU) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// PlatformMetrics provides comprehensive analytics tracking across the
// platform: engagement, score volume, creation activity, credits, and
// achievement unlocks.
type PlatformMetrics struct {
	mu sync.RWMutex

	// User engagement metrics
	dailyActiveUsers   map[string]map[core.UserID]struct{}
	weeklyActiveUsers  map[string]map[core.UserID]struct{}
	monthlyActiveUsers map[string]map[core.UserID]struct{}

	// Score metrics
	scoresByDay      map[string]int64
	scoreTotalByDay  map[string]int64
	scoresByGame     map[core.GameID]int64
	scoreTotalByGame map[core.GameID]int64

	// Game creation metrics
	gamesCreatedByDay map[string]int64
	uniqueCreators    map[string]map[core.UserID]struct{}

	// Credit metrics
	creditsEarnedByDay map[string]int64
	creditsSpentByDay  map[string]int64

	// Achievement metrics
	unlocksByDay  map[string]int64
	unlocksByType map[core.AchievementType]int64
	uniqueHolders map[core.AchievementType]map[core.UserID]struct{}

	// Real-time counters (last 24 hours)
	realtimeCounters struct {
		scores    int64
		games     int64
		unlocks   int64
		lastReset time.Time
	}
}

func NewPlatformMetrics() *PlatformMetrics {
	now := time.Now()
	pm := &PlatformMetrics{
		dailyActiveUsers:   make(map[string]map[core.UserID]struct{}),
		weeklyActiveUsers:  make(map[string]map[core.UserID]struct{}),
		monthlyActiveUsers: make(map[string]map[core.UserID]struct{}),
		scoresByDay:        make(map[string]int64),
		scoreTotalByDay:    make(map[string]int64),
		scoresByGame:       make(map[core.GameID]int64),
		scoreTotalByGame:   make(map[core.GameID]int64),
		gamesCreatedByDay:  make(map[string]int64),
		uniqueCreators:     make(map[string]map[core.UserID]struct{}),
		creditsEarnedByDay: make(map[string]int64),
		creditsSpentByDay:  make(map[string]int64),
		unlocksByDay:       make(map[string]int64),
		unlocksByType:      make(map[core.AchievementType]int64),
		uniqueHolders:      make(map[core.AchievementType]map[core.UserID]struct{}),
	}
	pm.realtimeCounters.lastReset = now
	return pm
}

func (pm *PlatformMetrics) OnEvent(e core.Event) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	day := e.Time.UTC().Format("2006-01-02")
	week := getWeekKey(e.Time)
	month := getMonthKey(e.Time)

	pm.trackUserEngagement(e.UserID, day, week, month)

	switch e.Type {
	case core.EventScoreSubmitted:
		pm.scoresByDay[day]++
		pm.scoreTotalByDay[day] += e.Value
		pm.scoresByGame[e.GameID]++
		pm.scoreTotalByGame[e.GameID] += e.Value
		pm.realtimeCounters.scores++
	case core.EventGameCreated:
		pm.gamesCreatedByDay[day]++
		if pm.uniqueCreators[day] == nil {
			pm.uniqueCreators[day] = make(map[core.UserID]struct{})
		}
		pm.uniqueCreators[day][e.UserID] = struct{}{}
		pm.realtimeCounters.games++
	case core.EventCreditsAdded:
		if e.Value > 0 {
			pm.creditsEarnedByDay[day] += e.Value
		} else {
			pm.creditsSpentByDay[day] += -e.Value
		}
	case core.EventAchievementUnlocked:
		pm.unlocksByDay[day]++
		pm.unlocksByType[e.Achievement]++
		if pm.uniqueHolders[e.Achievement] == nil {
			pm.uniqueHolders[e.Achievement] = make(map[core.UserID]struct{})
		}
		pm.uniqueHolders[e.Achievement][e.UserID] = struct{}{}
		pm.realtimeCounters.unlocks++
	}

	// Reset realtime counters every 24 hours.
	if time.Since(pm.realtimeCounters.lastReset) > 24*time.Hour {
		pm.realtimeCounters.scores = 0
		pm.realtimeCounters.games = 0
		pm.realtimeCounters.unlocks = 0
		pm.realtimeCounters.lastReset = time.Now()
	}
}

func (pm *PlatformMetrics) trackUserEngagement(userID core.UserID, day, week, month string) {
	if pm.dailyActiveUsers[day] == nil {
		pm.dailyActiveUsers[day] = make(map[core.UserID]struct{})
	}
	pm.dailyActiveUsers[day][userID] = struct{}{}

	if pm.weeklyActiveUsers[week] == nil {
		pm.weeklyActiveUsers[week] = make(map[core.UserID]struct{})
	}
	pm.weeklyActiveUsers[week][userID] = struct{}{}

	if pm.monthlyActiveUsers[month] == nil {
		pm.monthlyActiveUsers[month] = make(map[core.UserID]struct{})
	}
	pm.monthlyActiveUsers[month][userID] = struct{}{}
}

// GetDailyActiveUsers returns the count of daily active users for a specific day.
func (pm *PlatformMetrics) GetDailyActiveUsers(day string) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.dailyActiveUsers[day])
}

// GetWeeklyActiveUsers returns the count of weekly active users for a specific week.
func (pm *PlatformMetrics) GetWeeklyActiveUsers(week string) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.weeklyActiveUsers[week])
}

// GetMonthlyActiveUsers returns the count of monthly active users for a specific month.
func (pm *PlatformMetrics) GetMonthlyActiveUsers(month string) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.monthlyActiveUsers[month])
}

// GetScoresByDay returns the number of scores submitted on a specific day.
func (pm *PlatformMetrics) GetScoresByDay(day string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.scoresByDay[day]
}

// GetScoreTotalByGame returns the cumulative score value submitted for a game.
func (pm *PlatformMetrics) GetScoreTotalByGame(game core.GameID) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.scoreTotalByGame[game]
}

// GetGamesCreatedByDay returns the number of games created on a specific day.
func (pm *PlatformMetrics) GetGamesCreatedByDay(day string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.gamesCreatedByDay[day]
}

// GetCreditsEarnedByDay returns the credits added on a specific day.
func (pm *PlatformMetrics) GetCreditsEarnedByDay(day string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.creditsEarnedByDay[day]
}

func (pm *PlatformMetrics) scoreTotalAtDay(day string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.scoreTotalByDay[day]
}

func (pm *PlatformMetrics) creditsSpentAtDay(day string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.creditsSpentByDay[day]
}

func (pm *PlatformMetrics) unlocksAtDay(day string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.unlocksByDay[day]
}

// GetUnlocksByType returns how many times an achievement type was unlocked.
func (pm *PlatformMetrics) GetUnlocksByType(typ core.AchievementType) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.unlocksByType[typ]
}

// GetUniqueHolders returns the count of unique users holding an achievement.
func (pm *PlatformMetrics) GetUniqueHolders(typ core.AchievementType) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.uniqueHolders[typ])
}

// GetRealtimeStats returns rolling counters for the last 24 hours.
func (pm *PlatformMetrics) GetRealtimeStats() (scores int64, games int64, unlocks int64) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.realtimeCounters.scores,
		pm.realtimeCounters.games,
		pm.realtimeCounters.unlocks
}

// GetTopGames returns the games with the highest cumulative submitted score.
func (pm *PlatformMetrics) GetTopGames(limit int) map[string]interface{} {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]interface{})

	top := make([]struct {
		game  core.GameID
		total int64
	}, 0, len(pm.scoreTotalByGame))
	for game, total := range pm.scoreTotalByGame {
		top = append(top, struct {
			game  core.GameID
			total int64
		}{game, total})
	}

	// Sort by total (simple bubble sort for small datasets)
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			if top[i].total < top[j].total {
				top[i], top[j] = top[j], top[i]
			}
		}
	}
	if len(top) > limit {
		top = top[:limit]
	}

	rows := make([]map[string]interface{}, len(top))
	for i, t := range top {
		rows[i] = map[string]interface{}{
			"game":        t.game,
			"score_total": t.total,
		}
	}

	result["top_games_by_score"] = rows
	result["total_unlocks"] = sumTypeMapValues(pm.unlocksByType)

	return result
}

// Helper functions
func getWeekKey(t time.Time) string {
	tt := t.UTC()
	year, week := tt.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func getMonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func sumTypeMapValues(m map[core.AchievementType]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}
