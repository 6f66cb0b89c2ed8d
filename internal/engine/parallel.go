package engine

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nerdchess/nerdchess/internal/board"
)

// SearchParallel searches the root moves concurrently. Every root child gets
// a full window and its own searcher; the winner is then picked in move
// order with a strict comparison, so the result equals Minimax with an
// infinite window. The search stops early when ctx is cancelled.
func (s *Searcher) SearchParallel(ctx context.Context, p board.Position, maximizing bool, depth int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Move: board.NoMove}, err
	}

	if depth <= 0 {
		return s.Minimax(p, maximizing, -Infinity, Infinity, depth), nil
	}

	s.nodes++
	if score, done := s.terminal(&p, depth); done {
		return Result{Score: score, Move: board.NoMove}, nil
	}

	side := board.Black
	if maximizing {
		side = board.White
	}

	moves := p.PseudoLegalMoves(side)
	if len(moves) == 0 {
		return Result{Score: s.evaluate(&p), Move: board.NoMove}, nil
	}

	scores := make([]int, len(moves))
	var nodes atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, m := range moves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			child := p
			child.MovePiece(m.From, m.To)

			worker := s.fork()
			scores[i] = worker.Minimax(child, !maximizing, -Infinity, Infinity, depth-1).Score
			nodes.Add(worker.Nodes())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{Move: board.NoMove}, err
	}
	s.nodes += nodes.Load()

	best := Result{Score: scores[0], Move: moves[0]}
	for i := 1; i < len(moves); i++ {
		if (maximizing && scores[i] > best.Score) || (!maximizing && scores[i] < best.Score) {
			best = Result{Score: scores[i], Move: moves[i]}
		}
	}
	return best, nil
}
