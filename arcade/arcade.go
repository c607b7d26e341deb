// Package arcade is the batteries-included entry point: it assembles the
// achievement engine with sensible defaults so embedding applications can get
// going with one call.
package arcade

import (
	"context"

	mem "arcadekit/adapters/memory"
	"arcadekit/core"
	"arcadekit/engine"
	"arcadekit/leaderboard"
	"arcadekit/realtime"
)

// Option configures the service builder.
type Option func(*config)

type config struct {
	storage engine.Storage
	mode    engine.DispatchMode
	rules   []core.Rule
	hub     *realtime.Hub
	board   leaderboard.Board
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithRules replaces the default achievement rule set.
func WithRules(rules []core.Rule) Option { return func(c *config) { c.rules = rules } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLeaderboard wires a leaderboard that tracks cumulative scores.
func WithLeaderboard(b leaderboard.Board) Option { return func(c *config) { c.board = b } }

// New builds a configured Service. If not provided, defaults are used:
//   - storage: in-memory
//   - rules: the built-in achievement catalog
//   - dispatch: async
func New(opts ...Option) *engine.Service {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = mem.New()
	}
	bus := engine.NewEventBus(cfg.mode)

	var svcOpts []engine.Option
	if cfg.rules != nil {
		svcOpts = append(svcOpts, engine.WithRules(cfg.rules))
	}
	if cfg.board != nil {
		svcOpts = append(svcOpts, engine.WithBoard(cfg.board))
	}
	svc := engine.NewService(cfg.storage, bus, svcOpts...)

	if cfg.hub != nil {
		// Bridge all primary events to realtime
		for _, typ := range []core.EventType{
			core.EventScoreSubmitted,
			core.EventGameCreated,
			core.EventCreditsAdded,
			core.EventAchievementProgress,
			core.EventAchievementUnlocked,
		} {
			bus.Subscribe(typ, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		}
	}
	return svc
}
