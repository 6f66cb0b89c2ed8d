package engine

import (
	"github.com/nerdchess/nerdchess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
)

// SearchConfig toggles optional search behaviour.
type SearchConfig struct {
	// MateCheck scores a missing or checkmated king before expanding a node.
	MateCheck bool

	// PawnCacheMB sizes each searcher's pawn structure cache. Zero disables it.
	PawnCacheMB int
}

// DefaultSearchConfig returns the configuration used by the engine.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{MateCheck: true, PawnCacheMB: 1}
}

// Result is the outcome of a search: the score from White's perspective and
// the move that achieves it, NoMove at leaves.
type Result struct {
	Score int
	Move  board.Move
}

// Searcher performs a depth-limited alpha-beta minimax search. A Searcher is
// not safe for concurrent use; the parallel search forks one per goroutine.
type Searcher struct {
	eval   *Evaluator
	pawns  *PawnTable
	config SearchConfig
	nodes  uint64
}

// NewSearcher creates a new searcher using the given evaluator.
func NewSearcher(eval *Evaluator, cfg SearchConfig) *Searcher {
	s := &Searcher{eval: eval, config: cfg}
	if cfg.PawnCacheMB > 0 {
		s.pawns = NewPawnTable(cfg.PawnCacheMB)
	}
	return s
}

// fork returns a fresh searcher sharing the evaluator and configuration.
func (s *Searcher) fork() *Searcher {
	return NewSearcher(s.eval, s.config)
}

// Nodes returns the number of nodes searched since the last Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Reset clears the node counter.
func (s *Searcher) Reset() {
	s.nodes = 0
}

// Evaluator returns the evaluator used at the leaves.
func (s *Searcher) Evaluator() *Evaluator {
	return s.eval
}

func (s *Searcher) evaluate(p *board.Position) int {
	return s.eval.EvaluateWithPawnTable(p, s.pawns)
}

// terminal reports a decided game: a missing or checkmated king. The score
// grows with the remaining depth so that faster mates are preferred.
func (s *Searcher) terminal(p *board.Position, depth int) (int, bool) {
	if !s.config.MateCheck {
		return 0, false
	}
	switch {
	case p.KingMissing(board.White):
		return -(MateScore + depth), true
	case p.KingMissing(board.Black):
		return MateScore + depth, true
	case p.IsCheckmated(board.White):
		return -(MateScore + depth), true
	case p.IsCheckmated(board.Black):
		return MateScore + depth, true
	}
	return 0, false
}

// Minimax searches p to the given depth. The maximizing side is White.
// Moves are tried in ascending (from, to) order and only a strictly better
// score replaces the current best, so ties go to the first move found. The
// caller's position is never modified.
func (s *Searcher) Minimax(p board.Position, maximizing bool, alpha, beta, depth int) Result {
	s.nodes++

	if depth <= 0 {
		return Result{Score: s.evaluate(&p), Move: board.NoMove}
	}

	if score, done := s.terminal(&p, depth); done {
		return Result{Score: score, Move: board.NoMove}
	}

	side := board.Black
	best := Result{Score: Infinity, Move: board.NoMove}
	if maximizing {
		side = board.White
		best.Score = -Infinity
	}

	own := p.ColorOccupied(side)
moves:
	for own != 0 {
		from := own.PopLSB()
		targets := p.Destinations(from, p.PieceTypeAt(from), side, false)
		for targets != 0 {
			to := targets.PopLSB()

			child := p
			child.MovePiece(from, to)
			score := s.Minimax(child, !maximizing, alpha, beta, depth-1).Score

			if maximizing {
				if score > best.Score {
					best = Result{Score: score, Move: board.NewMove(from, to)}
				}
				alpha = max(alpha, score)
			} else {
				if score < best.Score {
					best = Result{Score: score, Move: board.NewMove(from, to)}
				}
				beta = min(beta, score)
			}

			if alpha >= beta {
				break moves
			}
		}
	}

	if best.Move == board.NoMove {
		return Result{Score: s.evaluate(&p), Move: board.NoMove}
	}
	return best
}
