package engine

import "time"

// defaultMovesToGo is the number of moves assumed to remain in sudden death.
const defaultMovesToGo = 30

// Allot returns the time to spend on one move given the clock and increment.
func Allot(timeLeft, inc time.Duration) time.Duration {
	return AllotWithOverhead(timeLeft, inc, 0, 0)
}

// AllotWithOverhead is Allot with an explicit moves-to-go (0 for sudden death)
// and a per-move overhead reserved for communication lag.
func AllotWithOverhead(timeLeft, inc time.Duration, movesToGo int, overhead time.Duration) time.Duration {
	if timeLeft <= 0 {
		return 10 * time.Millisecond
	}
	mtg := movesToGo
	if mtg <= 0 {
		mtg = defaultMovesToGo
	}

	// Base time per move plus most of the increment
	budget := timeLeft/time.Duration(mtg) + inc*9/10

	// Never use more than 80% of what is left
	if limit := timeLeft * 8 / 10; budget > limit {
		budget = limit
	}

	budget -= overhead
	if budget < 10*time.Millisecond {
		budget = 10 * time.Millisecond
	}
	return budget
}
