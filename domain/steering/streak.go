// Package steering decides which instruction the reasoning engine receives
// for its next turn, based on what the recent transcript shows it has done.
package steering

import "github.com/felixgeelhaar/nudge/domain/transcript"

// DefaultLookback bounds how many trailing turns the no-progress scan reads.
const DefaultLookback = 5

// NoProgressStreak counts the consecutive trailing assistant turns that did
// not call a tool, reading at most lookback turns from the end.
//
// The scan stops at the first turn that is not an idle assistant turn, so a
// user turn, a tool turn, or an assistant turn that acted all end the streak.
// A lookback of zero or less uses DefaultLookback.
func NoProgressStreak(turns []transcript.Turn, lookback int) int {
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	streak := 0
	for i := len(turns) - 1; i >= 0 && streak < lookback; i-- {
		if !turns[i].IsIdleAssistant() {
			break
		}
		streak++
	}
	return streak
}
