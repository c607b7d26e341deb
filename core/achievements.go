package core

// AchievementType enumerates the fixed set of platform milestones.
// Extending the set is a redeploy, not a runtime operation.
type AchievementType string

const (
	TypeFirstGame         AchievementType = "first_game"
	TypeScoreMaster       AchievementType = "score_master"
	TypeGameExplorer      AchievementType = "game_explorer"
	TypeGameCreator       AchievementType = "game_creator"
	TypeCreditMaster      AchievementType = "credit_master"
	TypeHighScorer        AchievementType = "high_scorer"
	TypeSocialButterfly   AchievementType = "social_butterfly"
	TypeAchievementHunter AchievementType = "achievement_hunter"
)

// Definition is the static descriptor for one achievement type. Loaded at
// process start, never mutated.
type Definition struct {
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
}

var definitions = []Definition{
	{TypeFirstGame, "First Steps", "Play your first game", "play"},
	{TypeScoreMaster, "Score Master", "Score 1000 points in a single game", "target"},
	{TypeGameExplorer, "Game Explorer", "Play 5 different games", "compass"},
	{TypeGameCreator, "Game Creator", "Create your first game", "wrench"},
	{TypeCreditMaster, "Credit Master", "Accumulate 10 credits", "coins"},
	{TypeHighScorer, "High Scorer", "Reach 5000 total points", "flame"},
	{TypeSocialButterfly, "Social Butterfly", "Share a game with friends", "users"},
	{TypeAchievementHunter, "Achievement Hunter", "Complete 3 other achievements", "trophy"},
}

var definitionsByType = func() map[AchievementType]Definition {
	m := make(map[AchievementType]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Type] = d
	}
	return m
}()

// Definitions returns the full catalog in evaluation order.
// AchievementHunter is last: its progress depends on the completion state of
// the other types after this invocation's updates have been applied.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// DefinitionFor returns the static descriptor for an achievement type.
func DefinitionFor(t AchievementType) (Definition, bool) {
	d, ok := definitionsByType[t]
	return d, ok
}
