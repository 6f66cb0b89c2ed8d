package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
)

// ErrNoMove is returned when the side to move has no move to play.
var ErrNoMove = errors.New("no move available")

// SearchInfo contains information about a finished search iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	Move     board.Move
	FromBook bool
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search depth in plies.
var DifficultySettings = map[Difficulty]int{
	Easy:   2,
	Medium: 3,
	Hard:   4,
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Hard; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Engine is the chess AI: an evaluator, a searcher and an optional opening
// book.
type Engine struct {
	eval       *Evaluator
	searcher   *Searcher
	book       *book.Book
	logger     zerolog.Logger
	difficulty Difficulty
	depth      int
	parallel   bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// Option configures an Engine.
type Option func(*Engine)

// WithBook sets the opening book consulted before searching.
func WithBook(b *book.Book) Option {
	return func(e *Engine) { e.book = b }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDifficulty sets the initial difficulty.
func WithDifficulty(d Difficulty) Option {
	return func(e *Engine) { e.difficulty = d }
}

// WithDepth fixes the search depth, overriding the difficulty.
func WithDepth(depth int) Option {
	return func(e *Engine) { e.depth = depth }
}

// WithParallel searches root moves concurrently.
func WithParallel(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

// WithEvalConfig replaces the default evaluation configuration.
func WithEvalConfig(cfg EvalConfig) Option {
	return func(e *Engine) { e.eval = NewEvaluator(cfg) }
}

// NewEngine creates a new chess engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:     zerolog.Nop(),
		difficulty: Medium,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.eval == nil {
		e.eval = NewEvaluator(DefaultEvalConfig())
	}
	e.searcher = NewSearcher(e.eval, DefaultSearchConfig())
	return e
}

// SetDifficulty sets the engine difficulty and clears any fixed depth.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
	e.depth = 0
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// SetDepth fixes the search depth. Zero restores the difficulty depth.
func (e *Engine) SetDepth(depth int) {
	e.depth = depth
}

// Depth returns the search depth used by BestMove.
func (e *Engine) Depth() int {
	if e.depth > 0 {
		return e.depth
	}
	if d, ok := DifficultySettings[e.difficulty]; ok {
		return d
	}
	return DifficultySettings[Medium]
}

// SetParallel switches root-parallel search on or off.
func (e *Engine) SetParallel(on bool) {
	e.parallel = on
}

// Parallel reports whether root moves are searched concurrently.
func (e *Engine) Parallel() bool {
	return e.parallel
}

// SetEvalConfig replaces the evaluator. The pawn cache is rebuilt.
func (e *Engine) SetEvalConfig(cfg EvalConfig) {
	e.eval = NewEvaluator(cfg)
	e.searcher = NewSearcher(e.eval, DefaultSearchConfig())
}

// EvalConfig returns the evaluation configuration.
func (e *Engine) EvalConfig() EvalConfig {
	return e.eval.Config()
}

// SetBook replaces the opening book; nil disables it.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// Book returns the opening book, or nil.
func (e *Engine) Book() *book.Book {
	return e.book
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(p *board.Position) int {
	return e.eval.Evaluate(p)
}

// BestMove picks a move for side: a book move when the position is in the
// book, otherwise the result of a full-window search.
func (e *Engine) BestMove(p board.Position, side board.Color) (board.Move, int, error) {
	return e.BestMoveContext(context.Background(), p, side)
}

// BestMoveContext is BestMove with cancellation of the parallel search.
func (e *Engine) BestMoveContext(ctx context.Context, p board.Position, side board.Color) (board.Move, int, error) {
	if m, ok := e.probeBook(&p, side); ok {
		after := p
		after.MovePiece(m.From, m.To)
		score := e.eval.Evaluate(&after)
		e.logger.Debug().Stringer("move", m).Msg("book move")
		e.report(SearchInfo{Move: m, Score: score, FromBook: true})
		return m, score, nil
	}

	return e.search(ctx, p, side, e.Depth())
}

// Think searches with iterative deepening until the depth limit or the time
// budget runs out, returning the deepest completed result. The sequential
// search does not poll ctx, so without WithParallel the budget is only
// checked between depths and one iteration may overrun it.
func (e *Engine) Think(ctx context.Context, p board.Position, side board.Color, limits Limits, ply int) (board.Move, int, error) {
	if m, ok := e.probeBook(&p, side); ok {
		e.report(SearchInfo{Move: m, FromBook: true})
		return m, 0, nil
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = e.Depth()
	}

	if budget := Budget(limits, side, ply); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	bestMove, bestScore := board.NoMove, 0
	for depth := 1; depth <= maxDepth; depth++ {
		searchCtx := ctx
		if depth == 1 {
			// Always finish one ply so there is a move to play.
			searchCtx = context.WithoutCancel(ctx)
		} else if ctx.Err() != nil {
			break
		}

		m, score, err := e.search(searchCtx, p, side, depth)
		if err != nil {
			if bestMove != board.NoMove && ctx.Err() != nil {
				break
			}
			return board.NoMove, 0, err
		}
		bestMove, bestScore = m, score

		if score >= MateScore || score <= -MateScore {
			break
		}
	}
	return bestMove, bestScore, nil
}

func (e *Engine) search(ctx context.Context, p board.Position, side board.Color, depth int) (board.Move, int, error) {
	e.searcher.Reset()
	start := time.Now()
	maximizing := side == board.White

	var res Result
	if e.parallel {
		var err error
		res, err = e.searcher.SearchParallel(ctx, p, maximizing, depth)
		if err != nil {
			return board.NoMove, 0, fmt.Errorf("search depth %d: %w", depth, err)
		}
	} else {
		res = e.searcher.Minimax(p, maximizing, -Infinity, Infinity, depth)
	}

	elapsed := time.Since(start)
	e.logger.Debug().
		Int("depth", depth).
		Int("score", res.Score).
		Uint64("nodes", e.searcher.Nodes()).
		Dur("elapsed", elapsed).
		Stringer("move", res.Move).
		Msg("search finished")

	e.report(SearchInfo{
		Depth: depth,
		Score: res.Score,
		Nodes: e.searcher.Nodes(),
		Time:  elapsed,
		Move:  res.Move,
	})

	if res.Move == board.NoMove {
		return board.NoMove, res.Score, ErrNoMove
	}
	return res.Move, res.Score, nil
}

// probeBook returns the book move for p if it is playable by side.
func (e *Engine) probeBook(p *board.Position, side board.Color) (board.Move, bool) {
	if e.book == nil {
		return board.NoMove, false
	}
	m, ok := e.book.Probe(p)
	if !ok {
		return board.NoMove, false
	}
	if !p.PieceColorAt(m.From, side) || !p.Destinations(m.From, p.PieceTypeAt(m.From), side, false).Get(m.To) {
		return board.NoMove, false
	}
	return m, true
}

func (e *Engine) report(info SearchInfo) {
	if e.OnInfo != nil {
		e.OnInfo(info)
	}
}

// ScoreString converts a score to a human-readable string from White's
// point of view.
func ScoreString(score int) string {
	if score >= MateScore {
		return "+M"
	}
	if score <= -MateScore {
		return "-M"
	}

	// Convert centipawns to pawns
	sign := "+"
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
