package core

import (
	"math"
	"testing"
)

func TestNormalizeUserID(t *testing.T) {
	id, err := NormalizeUserID("  Alice ")
	if err != nil || id != "alice" {
		t.Fatalf("got %q %v", id, err)
	}
	if _, err := NormalizeUserID("   "); err == nil {
		t.Fatal("expected error for blank id")
	}
}

func TestAddSafeOverflow(t *testing.T) {
	if _, err := AddSafe(math.MaxInt64, 1); err == nil {
		t.Fatal("expected overflow error")
	}
	v, err := AddSafe(40, 2)
	if err != nil || v != 42 {
		t.Fatalf("got %v %v", v, err)
	}
}

func TestActivityAggregates(t *testing.T) {
	a := Activity{Scores: []Score{
		{GameID: "g1", Value: 500},
		{GameID: "g2", Value: 1200},
		{GameID: "g1", Value: 300},
	}}
	if a.MaxScore() != 1200 {
		t.Fatalf("max = %d", a.MaxScore())
	}
	if a.TotalScore() != 2000 {
		t.Fatalf("total = %d", a.TotalScore())
	}
	if a.DistinctGames() != 2 {
		t.Fatalf("distinct = %d", a.DistinctGames())
	}
}

func TestClampProgress(t *testing.T) {
	if ClampProgress(120) != 100 {
		t.Fatal("expected clamp to 100")
	}
	if ClampProgress(-5) != 0 {
		t.Fatal("expected clamp to 0")
	}
	if Ratio(12, 10) != 100 {
		t.Fatal("ratio above threshold must clamp")
	}
	if got := Ratio(2, 5); got != 40 {
		t.Fatalf("ratio = %v", got)
	}
}

func TestDefinitionsCatalog(t *testing.T) {
	defs := Definitions()
	if len(defs) != 8 {
		t.Fatalf("catalog size = %d", len(defs))
	}
	if defs[len(defs)-1].Type != TypeAchievementHunter {
		t.Fatal("hunter must be last in evaluation order")
	}
	d, ok := DefinitionFor(TypeScoreMaster)
	if !ok || d.Title == "" {
		t.Fatalf("missing score master definition: %+v", d)
	}
}
