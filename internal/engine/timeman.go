package engine

import (
	"time"

	"github.com/nerdchess/nerdchess/internal/board"
)

// Limits contains the constraints of a timed search.
type Limits struct {
	Time      [2]time.Duration // remaining time per colour
	Inc       [2]time.Duration // increment per move
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move, overrides the clock
	Depth     int              // maximum depth (0 = engine default)
}

// Budget returns how long side may think. Zero means no time limit: the
// search runs to the depth limit.
func Budget(limits Limits, side board.Color, ply int) time.Duration {
	if limits.MoveTime > 0 {
		return limits.MoveTime
	}
	if side >= board.NoColor || limits.Time[side] == 0 {
		return 0
	}

	timeLeft := limits.Time[side]
	inc := limits.Inc[side]

	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: expect fewer moves as the game goes on
		mtg = min(max(50-ply/4, 10), 50)
	}

	budget := timeLeft/time.Duration(mtg) + inc*9/10

	// Slight reduction for very early moves
	if ply < 8 {
		budget = budget * 85 / 100
	}

	// Never use more than 80% of remaining time
	if ceiling := timeLeft * 8 / 10; budget > ceiling {
		budget = ceiling
	}

	if budget < 10*time.Millisecond {
		budget = 10 * time.Millisecond
	}
	return budget
}
