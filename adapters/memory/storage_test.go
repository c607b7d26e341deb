package memory

import (
	"context"
	"errors"
	"testing"

	"arcadekit/core"
	"arcadekit/engine"
)

func TestMemoryStoreActivity(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.SaveScore(ctx, core.Score{UserID: "u", GameID: "g1", Value: 500}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveGame(ctx, core.Game{UserID: "u", Title: "Maze"}); err != nil {
		t.Fatal(err)
	}
	total, err := s.AddCredits(ctx, "u", 7)
	if err != nil || total != 7 {
		t.Fatalf("got %v %v", total, err)
	}
	scores, _ := s.ScoresByUser(ctx, "u")
	if len(scores) != 1 || scores[0].ID == "" {
		t.Fatalf("scores = %#v", scores)
	}
	games, _ := s.GamesByUser(ctx, "u")
	if len(games) != 1 || games[0].ID == "" {
		t.Fatalf("games = %#v", games)
	}
}

func TestMemoryStoreAchievementUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, err := s.CreateAchievement(ctx, core.Achievement{UserID: "u", Type: core.TypeFirstGame, Progress: 100, Completed: true})
	if err != nil || a.ID == "" {
		t.Fatalf("create: %v %v", a, err)
	}
	if _, err := s.CreateAchievement(ctx, core.Achievement{UserID: "u", Type: core.TypeFirstGame}); !errors.Is(err, engine.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := s.UpdateAchievement(ctx, "nope", 50, false, nil); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	upd, err := s.UpdateAchievement(ctx, a.ID, 100, true, a.CompletedAt)
	if err != nil || !upd.Completed {
		t.Fatalf("update: %v %v", upd, err)
	}
}
