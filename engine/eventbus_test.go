package engine

import (
	"context"
	"testing"
	"time"

	"arcadekit/core"
)

func TestEventBusSync(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), core.NewScoreSubmitted("u", "g1", 100))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}

func TestEventBusAsync(t *testing.T) {
	bus := NewEventBus(DispatchAsync)
	defer bus.Close()
	ch := make(chan struct{})
	bus.Subscribe(core.EventAchievementUnlocked, func(ctx context.Context, e core.Event) { close(ch) })
	bus.Publish(context.Background(), core.NewAchievementUnlocked("u", core.TypeFirstGame))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	cancel := bus.Subscribe(core.EventGameCreated, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), core.NewGameCreated("u", "g1"))
	cancel()
	bus.Publish(context.Background(), core.NewGameCreated("u", "g2"))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}
