package realtime

import (
	"context"
	"testing"

	"arcadekit/core"
)

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(4)
	defer h.Unsubscribe(id)

	ev := core.NewAchievementUnlocked("u", core.TypeFirstGame)
	h.Broadcast(context.Background(), ev)

	select {
	case got := <-ch:
		if got.Type != core.EventAchievementUnlocked || got.Achievement != core.TypeFirstGame {
			t.Fatalf("unexpected event: %+v", got)
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)
	h.Unsubscribe(id)
	if _, open := <-ch; open {
		t.Fatal("channel should be closed")
	}
	// broadcasting after unsubscribe must not panic
	h.Broadcast(context.Background(), core.NewGameCreated("u", "g1"))
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)
	defer h.Unsubscribe(id)
	h.Broadcast(context.Background(), core.NewScoreSubmitted("u", "g1", 1))
	h.Broadcast(context.Background(), core.NewScoreSubmitted("u", "g1", 2))
	got := <-ch
	if got.Value != 1 {
		t.Fatalf("expected first event retained, got %+v", got)
	}
	select {
	case ev := <-ch:
		t.Fatalf("second event should have been dropped, got %+v", ev)
	default:
	}
}
