package core

import "testing"

func TestRuleProgress(t *testing.T) {
	byType := map[AchievementType]Rule{}
	for _, r := range DefaultRules() {
		byType[r.Type()] = r
	}

	empty := Activity{}
	played := Activity{Scores: []Score{
		{GameID: "g1", Value: 500},
		{GameID: "g2", Value: 1200},
	}}

	cases := []struct {
		name string
		typ  AchievementType
		act  Activity
		want float64
	}{
		{"first game empty", TypeFirstGame, empty, 0},
		{"first game played", TypeFirstGame, played, 100},
		{"score master partial", TypeScoreMaster, Activity{Scores: []Score{{GameID: "g", Value: 500}}}, 50},
		{"score master done", TypeScoreMaster, played, 100},
		{"explorer two of five", TypeGameExplorer, played, 40},
		{"creator none", TypeGameCreator, empty, 0},
		{"creator one", TypeGameCreator, Activity{Games: []Game{{ID: "g"}}}, 100},
		{"credits clamped", TypeCreditMaster, Activity{Credits: 12}, 100},
		{"credits partial", TypeCreditMaster, Activity{Credits: 4}, 40},
		{"high scorer partial", TypeHighScorer, Activity{Scores: []Score{{GameID: "g", Value: 1700}}}, 34},
		{"social stays zero", TypeSocialButterfly, played, 0},
	}
	for _, tc := range cases {
		r, ok := byType[tc.typ]
		if !ok {
			t.Fatalf("%s: no rule registered", tc.name)
		}
		if got := r.Progress(tc.act); got != tc.want {
			t.Fatalf("%s: progress = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHunterProgress(t *testing.T) {
	if HunterProgress(0) != 0 {
		t.Fatal("zero completed must be zero progress")
	}
	if got := HunterProgress(2); got <= 66 || got >= 67 {
		t.Fatalf("two of three = %v", got)
	}
	if HunterProgress(3) != 100 {
		t.Fatal("three completed must be 100")
	}
	if HunterProgress(5) != 100 {
		t.Fatal("progress must clamp at 100")
	}
}

func TestNoHunterInDefaultRules(t *testing.T) {
	for _, r := range DefaultRules() {
		if r.Type() == TypeAchievementHunter {
			t.Fatal("hunter must not be an activity rule; the engine evaluates it last")
		}
	}
}
