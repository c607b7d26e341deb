package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"arcadekit/core"
)

func TestStorePersistAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	store, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.SaveScore(ctx, core.Score{UserID: "alice", GameID: "g1", Value: 500}); err != nil {
		t.Fatalf("save score: %v", err)
	}
	if _, err := store.SaveGame(ctx, core.Game{UserID: "alice", Title: "Maze"}); err != nil {
		t.Fatalf("save game: %v", err)
	}
	if _, err := store.AddCredits(ctx, "alice", 3); err != nil {
		t.Fatalf("add credits: %v", err)
	}
	created, err := store.CreateAchievement(ctx, core.Achievement{UserID: "alice", Type: core.TypeFirstGame, Title: "First Steps", Progress: 100, Completed: true})
	if err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	// ensure file written
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s", path)
	}

	// reload
	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	scores, _ := reloaded.ScoresByUser(ctx, "alice")
	if len(scores) != 1 || scores[0].Value != 500 {
		t.Fatalf("scores after reload: %#v", scores)
	}
	games, _ := reloaded.GamesByUser(ctx, "alice")
	if len(games) != 1 {
		t.Fatalf("games after reload: %#v", games)
	}
	credits, _ := reloaded.Credits(ctx, "alice")
	if credits != 3 {
		t.Fatalf("credits after reload: %d", credits)
	}
	achievements, _ := reloaded.AchievementsByUser(ctx, "alice")
	if len(achievements) != 1 || achievements[0].ID != created.ID {
		t.Fatalf("achievements after reload: %#v", achievements)
	}
}

func TestStoreUpdateAchievement(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	created, err := store.CreateAchievement(ctx, core.Achievement{UserID: "bob", Type: core.TypeHighScorer, Progress: 30})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	upd, err := store.UpdateAchievement(ctx, created.ID, 60, false, nil)
	if err != nil || upd.Progress != 60 {
		t.Fatalf("update: %+v %v", upd, err)
	}
	if _, err := store.UpdateAchievement(ctx, "missing", 10, false, nil); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
