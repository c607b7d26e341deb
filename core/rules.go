package core

// Milestone thresholds. The percent progress of each threshold-based type is
// the clamped ratio of the current count against its threshold.
const (
	ScoreMasterThreshold  = 1000 // highest single score
	GameExplorerThreshold = 5    // distinct games played
	CreditMasterThreshold = 10   // credit balance
	HighScorerThreshold   = 5000 // cumulative score
	HunterThreshold       = 3    // other achievements completed
)

// Rule computes percent progress in [0,100] for one achievement type from a
// user's activity snapshot.
type Rule interface {
	Type() AchievementType
	Progress(a Activity) float64
}

type firstGameRule struct{}

func (firstGameRule) Type() AchievementType { return TypeFirstGame }
func (firstGameRule) Progress(a Activity) float64 {
	if len(a.Scores) > 0 {
		return 100
	}
	return 0
}

type scoreMasterRule struct{}

func (scoreMasterRule) Type() AchievementType { return TypeScoreMaster }
func (scoreMasterRule) Progress(a Activity) float64 {
	return Ratio(a.MaxScore(), ScoreMasterThreshold)
}

type gameExplorerRule struct{}

func (gameExplorerRule) Type() AchievementType { return TypeGameExplorer }
func (gameExplorerRule) Progress(a Activity) float64 {
	return Ratio(int64(a.DistinctGames()), GameExplorerThreshold)
}

type gameCreatorRule struct{}

func (gameCreatorRule) Type() AchievementType { return TypeGameCreator }
func (gameCreatorRule) Progress(a Activity) float64 {
	if len(a.Games) > 0 {
		return 100
	}
	return 0
}

type creditMasterRule struct{}

func (creditMasterRule) Type() AchievementType { return TypeCreditMaster }
func (creditMasterRule) Progress(a Activity) float64 {
	return Ratio(a.Credits, CreditMasterThreshold)
}

type highScorerRule struct{}

func (highScorerRule) Type() AchievementType { return TypeHighScorer }
func (highScorerRule) Progress(a Activity) float64 {
	return Ratio(a.TotalScore(), HighScorerThreshold)
}

// socialButterflyRule is a placeholder: no sharing event source exists on the
// platform, so progress is always zero and a record is never created.
type socialButterflyRule struct{}

func (socialButterflyRule) Type() AchievementType     { return TypeSocialButterfly }
func (socialButterflyRule) Progress(Activity) float64 { return 0 }

// DefaultRules returns the activity-derived rules in evaluation order.
// AchievementHunter is not among them; it is evaluated last by the engine
// against the post-update completed count (see HunterProgress).
func DefaultRules() []Rule {
	return []Rule{
		firstGameRule{},
		scoreMasterRule{},
		gameExplorerRule{},
		gameCreatorRule{},
		creditMasterRule{},
		highScorerRule{},
		socialButterflyRule{},
	}
}

// HunterProgress converts a count of completed achievements (of types other
// than AchievementHunter) into hunter percent progress.
func HunterProgress(completed int) float64 {
	return Ratio(int64(completed), HunterThreshold)
}
