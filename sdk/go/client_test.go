package sdk

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	mem "arcadekit/adapters/memory"
	"arcadekit/api/httpapi"
	"arcadekit/core"
	"arcadekit/engine"
	"arcadekit/leaderboard"
	"arcadekit/realtime"
)

// newTestServer runs the real API surface on a test listener.
func newTestServer(t *testing.T) (*httptest.Server, *engine.Service) {
	t.Helper()
	bus := engine.NewEventBus(engine.DispatchSync)
	board := leaderboard.NewSkipList()
	svc := engine.NewService(mem.New(), bus, engine.WithBoard(board))
	hub := realtime.NewHub()
	for _, typ := range []core.EventType{
		core.EventScoreSubmitted,
		core.EventAchievementUnlocked,
	} {
		bus.Subscribe(typ, func(ctx context.Context, e core.Event) { hub.Broadcast(ctx, e) })
	}
	handler := httpapi.NewMux(svc, hub, board, httpapi.Options{PathPrefix: "/api"})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Cleanup(svc.Close)
	return srv, svc
}

func TestClient_FullFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	client, err := NewClient(srv.URL+"/api", WithAPIKey("k1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()

	score, changed, err := client.SubmitScore(ctx, "alice", "g1", 500)
	if err != nil {
		t.Fatalf("submit score: %v", err)
	}
	if score.Value != 500 || score.UserID != "alice" {
		t.Fatalf("unexpected score: %+v", score)
	}
	if len(changed) == 0 {
		t.Fatal("expected achievement changes from the first score")
	}

	game, _, err := client.CreateGame(ctx, "alice", "Maze Runner")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.Title != "Maze Runner" {
		t.Fatalf("unexpected game: %+v", game)
	}

	credits, _, err := client.AddCredits(ctx, "alice", 7)
	if err != nil || credits != 7 {
		t.Fatalf("add credits got %d err=%v", credits, err)
	}

	achievements, err := client.Achievements(ctx, "alice")
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if len(achievements) == 0 {
		t.Fatal("expected achievements for alice")
	}

	profile, err := client.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.UserID != "alice" || profile.TotalScore != 500 || profile.Credits != 7 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	lb, err := client.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].User != "alice" {
		t.Fatalf("unexpected leaderboard: %+v", lb)
	}

	health, err := client.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Fatalf("health: %+v err=%v", health, err)
	}
}

func TestClient_InputValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()
	if _, _, err := client.SubmitScore(ctx, "", "g1", 1); err != ErrEmptyUserID {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
	if _, _, err := client.SubmitScore(ctx, "alice", "g1", -1); err == nil {
		t.Fatal("expected error for negative score")
	}
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty baseURL")
	}
}

func TestClient_SubscribeEvents(t *testing.T) {
	srv, svc := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := client.SubscribeEvents(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Give the stream goroutine a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)
	if _, _, err := svc.SubmitScore(ctx, "bob", "g1", 100); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case evt := <-events:
		if evt.UserID != "bob" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
