package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	mem "arcadekit/adapters/memory"
	"arcadekit/api/httpapi"
	"arcadekit/arcade"
	"arcadekit/core"
	"arcadekit/engine"
	"arcadekit/leaderboard"
	"arcadekit/realtime"
)

// A minimal single-file server for kicking the tires: in-memory storage,
// no auth, text logging. Use cmd/arcadekit-server for anything real.
func main() {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	hub := realtime.NewHub()
	board := leaderboard.NewSkipList()
	svc := arcade.New(
		arcade.WithStorage(mem.New()),
		arcade.WithRealtime(hub),
		arcade.WithLeaderboard(board),
		arcade.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()

	handler := httpapi.NewMux(svc, hub, board, httpapi.Options{PathPrefix: "/api"})

	// Seed a little demo data so the leaderboard is not empty.
	ctx := context.Background()
	for _, seed := range []struct {
		user  core.UserID
		game  core.GameID
		value int64
	}{
		{"alice", "maze-runner", 500},
		{"bob", "maze-runner", 750},
		{"carol", "star-hopper", 1200},
	} {
		if _, _, err := svc.SubmitScore(ctx, seed.user, seed.game, seed.value); err != nil {
			slog.Warn("seed score failed", "user", seed.user, "error", err)
		}
	}

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", handler); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}
