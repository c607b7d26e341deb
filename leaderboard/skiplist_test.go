package leaderboard

import (
	"testing"

	"arcadekit/core"
)

func TestSkipListOrdering(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)
	s.Update(core.UserID("b"), 20)
	s.Update(core.UserID("c"), 15)
	top := s.TopN(3)
	if len(top) != 3 || top[0].User != core.UserID("b") || top[1].User != core.UserID("c") || top[2].User != core.UserID("a") {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update(core.UserID("a"), 25)
	top = s.TopN(1)
	if top[0].User != core.UserID("a") {
		t.Fatalf("top should be a, got %#v", top)
	}
}

func TestSkipListRank(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 100)
	s.Update(core.UserID("b"), 300)
	s.Update(core.UserID("c"), 200)
	if r, ok := s.Rank(core.UserID("c")); !ok || r != 2 {
		t.Fatalf("rank(c) = %d %v", r, ok)
	}
	if _, ok := s.Rank(core.UserID("missing")); ok {
		t.Fatal("expected no rank for unknown user")
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
	s.Remove(core.UserID("b"))
	if r, _ := s.Rank(core.UserID("c")); r != 1 {
		t.Fatalf("rank after removal = %d", r)
	}
}
