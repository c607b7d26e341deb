package leaderboard

import "arcadekit/core"

// Entry is one ranked row: a user and their cumulative score.
type Entry struct {
	User  core.UserID `json:"user_id"`
	Score int64       `json:"score"`
}

// Board abstracts leaderboard operations. Implementations must be safe for
// concurrent use; the engine updates the board on every score submission.
type Board interface {
	Update(user core.UserID, score int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
	Rank(user core.UserID) (int, bool)
	Len() int
}
