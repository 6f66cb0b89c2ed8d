// Package game drives a game between a human and the engine (or two humans):
// a board cursor, piece and destination selection, move validation, engine
// replies and game-over detection.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/notation"
)

var (
	// ErrIllegalMove is returned for moves the move generator does not allow.
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned for any move attempted after the game ended.
	ErrGameOver = errors.New("game over")
	// ErrNotYourTurn is returned when a human acts on the engine's turn.
	ErrNotYourTurn = errors.New("not your turn")
)

// Direction is a cursor movement.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Phase is the state of the human's input.
type Phase int

const (
	SelectPiece Phase = iota
	SelectSquare
	EngineTurn
	Over
)

func (p Phase) String() string {
	switch p {
	case SelectPiece:
		return "select piece"
	case SelectSquare:
		return "select square"
	case EngineTurn:
		return "engine turn"
	default:
		return "game over"
	}
}

// Outcome describes how the game stands.
type Outcome struct {
	Result string // "1-0", "0-1", "1/2-1/2" or "*"
	Reason string
}

// Ongoing is the outcome of an unfinished game.
var Ongoing = Outcome{Result: "*"}

// Game is a single game. It is not safe for concurrent use.
type Game struct {
	pos      board.Position
	startFEN string
	side     board.Color
	humans   [2]bool
	engine   *engine.Engine
	logger   zerolog.Logger

	cursor   board.Square
	selected board.Square

	history   []board.Move
	positions []board.Position // position before each move in history

	outcome Outcome
	started time.Time
}

// Option configures a Game.
type Option func(*Game) error

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Game) error {
		g.logger = l
		return nil
	}
}

// WithFEN starts the game from a FEN position instead of the standard start.
func WithFEN(fen string) Option {
	return func(g *Game) error {
		pos, side, err := board.ParseFEN(fen)
		if err != nil {
			return err
		}
		g.pos, g.side, g.startFEN = pos, side, fen
		return nil
	}
}

// WithHumans sets which colours are played by humans. Colours not played
// by a human are played by the engine.
func WithHumans(white, black bool) Option {
	return func(g *Game) error {
		g.humans = [2]bool{white, black}
		return nil
	}
}

// New starts a game where the human plays human and eng the other side. A
// nil engine requires both sides to be human.
func New(eng *engine.Engine, human board.Color, opts ...Option) (*Game, error) {
	g := &Game{
		pos:      board.NewPosition(),
		startFEN: board.StartFEN,
		side:     board.White,
		engine:   eng,
		logger:   zerolog.Nop(),
		cursor:   board.E2,
		selected: board.NoSquare,
		outcome:  Ongoing,
		started:  time.Now(),
	}
	if human < board.NoColor {
		g.humans[human] = true
	}
	if eng == nil {
		g.humans = [2]bool{true, true}
	}
	if human == board.Black {
		g.cursor = board.E7
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if eng == nil && (!g.humans[board.White] || !g.humans[board.Black]) {
		return nil, errors.New("game: an engine side needs an engine")
	}

	g.updateOutcome()
	return g, nil
}

// Position returns a copy of the current position.
func (g *Game) Position() board.Position { return g.pos }

// SideToMove returns the colour to move.
func (g *Game) SideToMove() board.Color { return g.side }

// IsHuman reports whether c is played by a human.
func (g *Game) IsHuman(c board.Color) bool { return c < board.NoColor && g.humans[c] }

// Cursor returns the cursor square.
func (g *Game) Cursor() board.Square { return g.cursor }

// Selected returns the selected square, NoSquare when nothing is selected.
func (g *Game) Selected() board.Square { return g.selected }

// Outcome returns the current outcome.
func (g *Game) Outcome() Outcome { return g.outcome }

// IsOver reports whether the game has ended.
func (g *Game) IsOver() bool { return g.outcome.Result != "*" }

// Engine returns the engine playing the computer side, if any.
func (g *Game) Engine() *engine.Engine { return g.engine }

// History returns the moves played so far.
func (g *Game) History() []board.Move {
	out := make([]board.Move, len(g.history))
	copy(out, g.history)
	return out
}

// SAN returns the moves played so far in algebraic notation.
func (g *Game) SAN() []string {
	out := make([]string, len(g.history))
	for i, m := range g.history {
		out[i] = m.SAN(&g.positions[i])
	}
	return out
}

// LastMove returns the last move played, NoMove at the start.
func (g *Game) LastMove() board.Move {
	if len(g.history) == 0 {
		return board.NoMove
	}
	return g.history[len(g.history)-1]
}

// Phase returns the input state.
func (g *Game) Phase() Phase {
	switch {
	case g.IsOver():
		return Over
	case !g.humans[g.side]:
		return EngineTurn
	case g.selected != board.NoSquare:
		return SelectSquare
	default:
		return SelectPiece
	}
}

// MoveCursor moves the cursor one square, staying on the board.
func (g *Game) MoveCursor(d Direction) {
	file, row := g.cursor.File(), g.cursor.Row()
	switch d {
	case Up:
		row--
	case Down:
		row++
	case Left:
		file--
	case Right:
		file++
	}
	if sq := board.NewSquare(file, row); sq != board.NoSquare {
		g.cursor = sq
	}
}

// SetCursor moves the cursor to sq; off-board squares are ignored.
func (g *Game) SetCursor(sq board.Square) {
	if sq.IsValid() {
		g.cursor = sq
	}
}

// Targets returns the destinations of the selected piece.
func (g *Game) Targets() []board.Square {
	if g.selected == board.NoSquare {
		return nil
	}
	return g.pos.Moves(g.selected, g.pos.PieceTypeAt(g.selected), g.side, false)
}

// Select acts on the cursor square: it picks up a piece of the side to move,
// or plays the selected piece onto the cursor. Selecting the selected square
// again drops the piece. It reports whether a move was played.
func (g *Game) Select() (bool, error) {
	if g.IsOver() {
		return false, ErrGameOver
	}
	if !g.humans[g.side] {
		return false, ErrNotYourTurn
	}

	sq := g.cursor
	switch {
	case sq == g.selected:
		g.selected = board.NoSquare
		return false, nil
	case g.pos.PieceColorAt(sq, g.side):
		g.selected = sq
		return false, nil
	case g.selected == board.NoSquare:
		return false, fmt.Errorf("%w: no %s piece on %s", ErrIllegalMove, g.side, sq)
	}

	if err := g.Play(board.NewMove(g.selected, sq)); err != nil {
		return false, err
	}
	return true, nil
}

// Play validates m for the side to move and applies it.
func (g *Game) Play(m board.Move) error {
	if g.IsOver() {
		return ErrGameOver
	}
	if !m.IsValid() || !g.pos.PieceColorAt(m.From, g.side) {
		return fmt.Errorf("%w: %s has no piece on %s", ErrIllegalMove, g.side, m.From)
	}
	if !g.pos.Destinations(m.From, g.pos.PieceTypeAt(m.From), g.side, false).Get(m.To) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	g.apply(m)
	return nil
}

// PlayUCI parses and plays a UCI move string.
func (g *Game) PlayUCI(s string) error {
	m, err := notation.ParseUCI(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return g.Play(m)
}

func (g *Game) apply(m board.Move) {
	g.logger.Debug().
		Str("side", g.side.String()).
		Str("move", m.SAN(&g.pos)).
		Int("ply", len(g.history)+1).
		Msg("move played")

	g.positions = append(g.positions, g.pos)
	g.history = append(g.history, m)
	g.pos.MovePiece(m.From, m.To)
	g.side = g.side.Other()
	g.selected = board.NoSquare
	g.cursor = m.To
	g.updateOutcome()
}

// EngineMove lets the engine play the side to move.
func (g *Game) EngineMove(ctx context.Context) (board.Move, error) {
	m, err := g.SearchEngineMove(ctx)
	return g.CommitEngineMove(m, err)
}

// SearchEngineMove finds the engine's move without changing the game. It
// only reads g, so a UI may run it in the background as long as nothing
// modifies the game until the result is passed to CommitEngineMove.
func (g *Game) SearchEngineMove(ctx context.Context) (board.Move, error) {
	if g.IsOver() {
		return board.NoMove, ErrGameOver
	}
	if g.engine == nil {
		return board.NoMove, errors.New("game: no engine")
	}

	m, score, err := g.engine.BestMoveContext(ctx, g.pos, g.side)
	if err != nil {
		return board.NoMove, err
	}
	g.logger.Info().Str("move", m.String()).Str("score", engine.ScoreString(score)).Msg("engine move")
	return m, nil
}

// CommitEngineMove applies the result of SearchEngineMove. An engine with
// no move ends the game as a draw.
func (g *Game) CommitEngineMove(m board.Move, err error) (board.Move, error) {
	if errors.Is(err, engine.ErrNoMove) {
		g.outcome = Outcome{Result: "1/2-1/2", Reason: "no moves"}
		return board.NoMove, ErrGameOver
	}
	if err != nil {
		return board.NoMove, err
	}
	if g.IsOver() {
		return board.NoMove, ErrGameOver
	}
	g.apply(m)
	return m, nil
}

// Undo takes back moves until it is a human's turn again, and reports
// whether anything was undone.
func (g *Game) Undo() bool {
	undone := false
	for len(g.history) > 0 {
		last := len(g.history) - 1
		g.pos = g.positions[last]
		g.history = g.history[:last]
		g.positions = g.positions[:last]
		g.side = g.side.Other()
		undone = true
		if g.humans[g.side] {
			break
		}
	}
	if undone {
		g.selected = board.NoSquare
		g.outcome = Ongoing
		g.updateOutcome()
	}
	return undone
}

// updateOutcome detects the end of the game for the side to move: a
// captured king, checkmate, or no moves at all.
func (g *Game) updateOutcome() {
	side := g.side
	win := "1-0"
	if side == board.White {
		win = "0-1"
	}

	switch {
	case g.pos.KingMissing(side):
		g.outcome = Outcome{Result: win, Reason: "king captured"}
	case g.pos.IsCheckmated(side):
		g.outcome = Outcome{Result: win, Reason: "checkmate"}
	case len(g.pos.PseudoLegalMoves(side)) == 0:
		g.outcome = Outcome{Result: "1/2-1/2", Reason: "no moves"}
	default:
		return
	}
	g.logger.Info().Str("result", g.outcome.Result).Str("reason", g.outcome.Reason).Msg("game over")
}

// Resign ends the game with c resigning.
func (g *Game) Resign(c board.Color) {
	if g.IsOver() {
		return
	}
	result := "1-0"
	if c == board.White {
		result = "0-1"
	}
	g.outcome = Outcome{Result: result, Reason: c.String() + " resigned"}
}
