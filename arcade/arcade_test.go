package arcade

import (
	"context"
	"testing"

	mem "arcadekit/adapters/memory"
	"arcadekit/core"
	"arcadekit/engine"
	"arcadekit/leaderboard"
	"arcadekit/realtime"
)

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	board := leaderboard.NewSkipList()
	svc := New(
		WithRealtime(hub),
		WithStorage(mem.New()),
		WithLeaderboard(board),
		WithDispatchMode(engine.DispatchSync),
	)
	defer svc.Close()

	_, ch := hub.Subscribe(8)

	score, changed, err := svc.SubmitScore(context.Background(), "alice", "g1", 500)
	if err != nil {
		t.Fatalf("submit score: %v", err)
	}
	if score.Value != 500 {
		t.Fatalf("expected value 500, got %d", score.Value)
	}
	if len(changed) == 0 {
		t.Fatal("expected achievement changes from the first score")
	}

	// realtime bridge should receive the submission event
	ev := <-ch
	if ev.UserID != "alice" || ev.Type != core.EventScoreSubmitted {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if entry, ok := board.Get("alice"); !ok || entry.Score != 500 {
		t.Fatalf("expected board entry for alice with 500, got %+v ok=%v", entry, ok)
	}
}

func TestNewMemoryDefault(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()

	if _, _, err := svc.SubmitScore(context.Background(), "bob", "g1", 10); err != nil {
		t.Fatalf("default storage submit: %v", err)
	}
	profile, err := svc.Profile(context.Background(), "bob")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.TotalScore != 10 || profile.GamesPlayed != 1 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestNewCustomRules(t *testing.T) {
	svc := New(
		WithDispatchMode(engine.DispatchSync),
		WithRules([]core.Rule{}),
	)
	defer svc.Close()

	// With an empty rule set only the hunter pass runs, which has nothing
	// to count, so no achievements are created.
	_, changed, err := svc.SubmitScore(context.Background(), "carol", "g1", 9000)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("expected no changes with empty rules, got %+v", changed)
	}
}
