// Package uci implements the Universal Chess Interface protocol on top of
// the engine.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/notation"
)

// infiniteDepth bounds "go infinite"; the search ends on "stop".
const infiniteDepth = 64

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	logger zerolog.Logger

	mu  sync.Mutex // guards out
	out io.Writer

	position board.Position
	side     board.Color
	ply      int

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a new UCI protocol handler writing to out.
func New(eng *engine.Engine, out io.Writer, logger zerolog.Logger) *UCI {
	return &UCI{
		engine:   eng,
		logger:   logger,
		out:      out,
		position: board.NewPosition(),
		side:     board.White,
	}
}

func (u *UCI) println(format string, args ...interface{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands from in until "quit" or end of input. "quit" stops a
// running search and reports its best move so far; at end of input the
// search is allowed to finish.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		u.logger.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println("%s", u.position.String())
			u.println("Fen: %s", u.position.FEN(u.side))
			u.println("Key: %016X", u.position.Hash(u.side))
		case "eval":
			score := u.engine.Evaluate(&u.position)
			u.println("Evaluation: %s (%d cp)", engine.ScoreString(score), score)
		case "perft":
			u.handlePerft(args)
		default:
			u.println("info string Unknown command: %s", cmd)
		}
	}

	u.waitSearch()
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading commands: %w", err)
	}
	return nil
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name NerdChess")
	u.println("id author NerdChess developers")
	u.println("")
	u.println("option name Depth type spin default 0 min 0 max %d", infiniteDepth)
	u.println("option name Difficulty type combo default %s var easy var medium var hard", u.engine.Difficulty())
	u.println("option name KingSafety type check default %t", u.engine.EvalConfig().KingSafety)
	u.println("option name Parallel type check default %t", u.engine.Parallel())
	u.println("option name OwnBook type check default %t", u.engine.Book() != nil)
	u.println("uciok")
}

// handleNewGame resets the position.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.position = board.NewPosition()
	u.side = board.White
	u.ply = 0
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	setup, moves := args[1:], []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			setup, moves = args[1:i], args[i+1:]
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		u.side = board.White
		u.ply = 0
	case "fen":
		fenStr := strings.Join(setup, " ")
		pos, side, err := board.ParseFEN(fenStr)
		if err != nil {
			u.println("info string Invalid FEN: %v", err)
			return
		}
		u.position, u.side, u.ply = pos, side, 0
		if fields := strings.Fields(fenStr); len(fields) >= 6 {
			if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
				u.ply = 2*(n-1) + int(side)
			}
		}
	default:
		return
	}

	for _, moveStr := range moves {
		if err := u.applyMove(moveStr); err != nil {
			u.println("info string Invalid move: %s (%v)", moveStr, err)
			u.logger.Warn().Err(err).Str("move", moveStr).Msg("rejected position move")
			return
		}
	}
}

// applyMove plays a UCI move for the side to move.
func (u *UCI) applyMove(s string) error {
	m, err := notation.ParseUCI(s)
	if err != nil {
		return err
	}
	if err := notation.Apply(&u.position, u.side, m); err != nil {
		return err
	}
	u.side = u.side.Other()
	u.ply++
	return nil
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := parseGoOptions(args)
	limits := calculateLimits(opts)

	side := u.side
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info, side)
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()
	ply := u.ply
	done := u.searchDone

	go func() {
		defer close(done)
		defer cancel()

		move, score, err := u.engine.Think(ctx, pos, side, limits, ply)
		if err != nil {
			if !errors.Is(err, engine.ErrNoMove) {
				u.logger.Error().Err(err).Msg("search failed")
			}
			u.println("bestmove 0000")
			return
		}
		u.logger.Debug().Stringer("move", move).Int("score", score).Msg("bestmove")
		u.println("bestmove %s", notation.UCI(&pos, move))
	}()
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	millis := func(i int) time.Duration {
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		if args[i] == "infinite" {
			opts.Infinite = true
			continue
		}
		if i+1 >= len(args) {
			break
		}
		switch args[i] {
		case "depth":
			opts.Depth, _ = strconv.Atoi(args[i+1])
		case "movetime":
			opts.MoveTime = millis(i + 1)
		case "wtime":
			opts.WTime = millis(i + 1)
		case "btime":
			opts.BTime = millis(i + 1)
		case "winc":
			opts.WInc = millis(i + 1)
		case "binc":
			opts.BInc = millis(i + 1)
		case "movestogo":
			opts.MovesToGo, _ = strconv.Atoi(args[i+1])
		default:
			continue
		}
		i++
	}

	return opts
}

// calculateLimits converts GoOptions to engine.Limits.
func calculateLimits(opts GoOptions) engine.Limits {
	if opts.Infinite {
		return engine.Limits{Depth: infiniteDepth}
	}
	return engine.Limits{
		Time:      [2]time.Duration{opts.WTime, opts.BTime},
		Inc:       [2]time.Duration{opts.WInc, opts.BInc},
		MovesToGo: opts.MovesToGo,
		MoveTime:  opts.MoveTime,
		Depth:     opts.Depth,
	}
}

// sendInfo outputs search info in UCI format. Scores are reported from the
// point of view of the side to move.
func (u *UCI) sendInfo(info engine.SearchInfo, side board.Color) {
	if info.FromBook {
		u.println("info string book move %s", info.Move)
		return
	}

	score := info.Score
	if side == board.Black {
		score = -score
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	switch {
	case score >= engine.MateScore:
		plies := info.Depth - (score - engine.MateScore)
		parts = append(parts, fmt.Sprintf("score mate %d", (plies+1)/2))
	case score <= -engine.MateScore:
		plies := info.Depth - (-score - engine.MateScore)
		parts = append(parts, fmt.Sprintf("score mate -%d", (plies+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.Move != board.NoMove {
		parts = append(parts, "pv "+info.Move.String())
	}

	u.println("info %s", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.waitSearch()
}

func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
		u.cancel = nil
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	u.handleStop()

	switch strings.ToLower(name) {
	case "depth":
		depth, err := strconv.Atoi(value)
		if err != nil || depth < 0 {
			u.println("info string Invalid depth: %s", value)
			return
		}
		u.engine.SetDepth(depth)
	case "difficulty":
		d, err := engine.ParseDifficulty(strings.ToLower(value))
		if err != nil {
			u.println("info string %v", err)
			return
		}
		u.engine.SetDifficulty(d)
	case "kingsafety":
		cfg := u.engine.EvalConfig()
		cfg.KingSafety = strings.ToLower(value) == "true"
		u.engine.SetEvalConfig(cfg)
	case "parallel":
		u.engine.SetParallel(strings.ToLower(value) == "true")
	case "ownbook":
		if strings.ToLower(value) == "true" {
			if u.engine.Book() == nil {
				u.engine.SetBook(book.Default())
			}
		} else {
			u.engine.SetBook(nil)
		}
	default:
		u.println("info string Unknown option: %s", name)
		return
	}
	u.logger.Info().Str("option", name).Str("value", value).Msg("option set")
}

// handlePerft counts move paths to the given depth.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d >= 0 {
			depth = d
		}
	}

	start := time.Now()
	nodes := Perft(u.position, u.side, depth)
	elapsed := time.Since(start)

	u.println("Nodes: %d", nodes)
	u.println("Time: %v", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.println("NPS: %.0f", nps)
	}
}

// Perft counts the leaf nodes of the pseudo-legal move tree.
func Perft(p board.Position, side board.Color, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	for _, m := range p.PseudoLegalMoves(side) {
		child := p
		child.MovePiece(m.From, m.To)
		nodes += Perft(child, side.Other(), depth-1)
	}
	return nodes
}
