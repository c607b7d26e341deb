package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcadekit/core"
	"arcadekit/engine"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestStore_Scores(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	saved, err := store.SaveScore(ctx, core.Score{UserID: "test-user", GameID: "g1", Value: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	_, err = store.SaveScore(ctx, core.Score{UserID: "test-user", GameID: "g2", Value: 1200})
	require.NoError(t, err)

	scores, err := store.ScoresByUser(ctx, "test-user")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, int64(500), scores[0].Value)
	assert.Equal(t, core.GameID("g2"), scores[1].GameID)
}

func TestStore_Games(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	saved, err := store.SaveGame(ctx, core.Game{UserID: "creator", Title: "Maze Runner"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	games, err := store.GamesByUser(ctx, "creator")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Maze Runner", games[0].Title)
}

func TestStore_Credits(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	balance, err := store.Credits(ctx, "test-user")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	total, err := store.AddCredits(ctx, "test-user", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	total, err = store.AddCredits(ctx, "test-user", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	balance, err = store.Credits(ctx, "test-user")
	require.NoError(t, err)
	assert.Equal(t, int64(12), balance)
}

func TestStore_AddCredits_ZeroDelta(t *testing.T) {
	// This test doesn't need a Redis connection
	store := &Store{}
	_, err := store.AddCredits(context.Background(), "test-user", 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "delta cannot be zero")
}

func TestStore_AchievementLifecycle(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	created, err := store.CreateAchievement(ctx, core.Achievement{
		UserID:   "test-user",
		Type:     core.TypeHighScorer,
		Title:    "High Scorer",
		Progress: 30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	// same (user, type) must be rejected
	_, err = store.CreateAchievement(ctx, core.Achievement{UserID: "test-user", Type: core.TypeHighScorer})
	assert.ErrorIs(t, err, engine.ErrDuplicate)

	updated, err := store.UpdateAchievement(ctx, created.ID, 60, false, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(60), updated.Progress)

	_, err = store.UpdateAchievement(ctx, "unknown-id", 10, false, nil)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	all, err := store.AchievementsByUser(ctx, "test-user")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, float64(60), all[0].Progress)
}
