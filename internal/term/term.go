// Package term is the full-screen terminal front end: a board drawn with
// tcell, driven by the keyboard cursor of a game.Game.
package term

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/game"
	"github.com/nerdchess/nerdchess/internal/render"
	"github.com/nerdchess/nerdchess/internal/storage"
)

// Board layout in screen cells.
const (
	boardX     = 3 // after the rank labels
	boardY     = 1
	cellWidth  = 3
	panelX     = boardX + 8*cellWidth + 3
	panelWidth = 34
)

var helpLines = []string{
	"arrows/hjkl  move cursor",
	"space/enter  select",
	"u undo   r resign   f flip",
	"n new game   q quit",
}

// App runs one game at a time on a tcell screen.
type App struct {
	screen tcell.Screen
	game   *game.Game
	store  *storage.Storage
	logger zerolog.Logger
	styles styles

	flip   bool
	status string
	saved  bool

	thinking bool
	quitting bool
	cancel   context.CancelFunc
}

type styles struct {
	light, dark, lastMove, selected, cursor, check tcell.Color
	text, dim                                      tcell.Style
}

func newStyles(theme render.Theme) styles {
	return styles{
		light:    tcellColor(theme.LightSquare),
		dark:     tcellColor(theme.DarkSquare),
		lastMove: tcellColor(theme.LastMoveColor),
		selected: tcellColor(theme.SelectedSquare),
		cursor:   tcell.ColorCornflowerBlue,
		check:    tcellColor(theme.CheckColor),
		text:     tcell.StyleDefault,
		dim:      tcell.StyleDefault.Dim(true),
	}
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Option configures an App.
type Option func(*App)

// WithStore saves games to store when they end or the app quits.
func WithStore(s *storage.Storage) Option {
	return func(a *App) { a.store = s }
}

// WithLogger sets the logger. Log output must not go to the terminal the
// app is drawing on.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithFlip draws the board with Black at the bottom.
func WithFlip(flip bool) Option {
	return func(a *App) { a.flip = flip }
}

// New creates an app for g on an initialised screen.
func New(screen tcell.Screen, g *game.Game, opts ...Option) *App {
	a := &App{
		screen: screen,
		game:   g,
		logger: zerolog.Nop(),
		styles: newStyles(render.DefaultTheme()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Game returns the game being played.
func (a *App) Game() *game.Game {
	return a.game
}

type engineResult struct {
	move board.Move
	err  error
}

// Run processes input until the user quits or ctx is done. An engine
// search still running at that point is waited for and its move kept.
func (a *App) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
	})
	defer stop()

	for {
		if a.quitting && !a.thinking {
			return a.finish()
		}
		a.startEngine(ctx)
		a.draw()

		switch ev := a.screen.PollEvent().(type) {
		case nil:
			// Screen finalised.
			return a.finish()
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case engineResult:
				a.engineDone(data)
			case error:
				a.quit()
			}
		case *tcell.EventKey:
			a.handleKey(ev)
		}
	}
}

// startEngine launches the engine search in the background when it is the
// engine's turn. The game is left untouched until the result arrives.
func (a *App) startEngine(ctx context.Context) {
	if a.thinking || a.quitting || a.game.Phase() != game.EngineTurn {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.thinking = true
	a.status = "Thinking..."

	g := a.game
	go func() {
		m, err := g.SearchEngineMove(ctx)
		if err := a.screen.PostEvent(tcell.NewEventInterrupt(engineResult{m, err})); err != nil {
			a.logger.Error().Err(err).Msg("engine result dropped")
		}
	}()
}

func (a *App) engineDone(res engineResult) {
	a.thinking = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	pos := a.game.Position()
	m, err := a.game.CommitEngineMove(res.move, res.err)
	switch {
	case errors.Is(err, context.Canceled):
		a.status = "Search cancelled"
		return
	case errors.Is(err, game.ErrGameOver):
		a.status = ""
	case err != nil:
		a.logger.Error().Err(err).Msg("engine move failed")
		a.status = "Engine error: " + err.Error()
		return
	default:
		a.status = "Engine played " + m.SAN(&pos)
	}
	a.afterMove()
}

// afterMove saves a game that has just ended.
func (a *App) afterMove() {
	if !a.game.IsOver() || a.saved {
		return
	}
	a.save()
}

func (a *App) save() {
	if a.store == nil {
		return
	}
	rec, err := a.game.Save(a.store)
	if err != nil {
		a.logger.Error().Err(err).Msg("saving game")
		a.status = "Could not save the game"
		return
	}
	a.saved = a.game.IsOver()
	a.logger.Info().Str("id", rec.ID).Str("result", rec.Result).Msg("game saved")
}

// finish saves an unfinished game with moves on exit.
func (a *App) finish() error {
	if !a.saved && len(a.game.History()) > 0 {
		a.save()
	}
	return nil
}

func (a *App) quit() {
	a.quitting = true
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.quit()
	case tcell.KeyUp:
		a.moveCursor(game.Up)
	case tcell.KeyDown:
		a.moveCursor(game.Down)
	case tcell.KeyLeft:
		a.moveCursor(game.Left)
	case tcell.KeyRight:
		a.moveCursor(game.Right)
	case tcell.KeyEnter:
		a.selectSquare()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.quit()
		case 'k':
			a.moveCursor(game.Up)
		case 'j':
			a.moveCursor(game.Down)
		case 'h':
			a.moveCursor(game.Left)
		case 'l':
			a.moveCursor(game.Right)
		case ' ':
			a.selectSquare()
		case 'f':
			a.flip = !a.flip
		case 'u':
			a.undo()
		case 'r':
			a.resign()
		case 'n':
			a.newGame()
		}
	}
}

// moveCursor moves the cursor in screen terms; a flipped board reverses
// both axes.
func (a *App) moveCursor(d game.Direction) {
	if a.flip {
		d = map[game.Direction]game.Direction{
			game.Up: game.Down, game.Down: game.Up,
			game.Left: game.Right, game.Right: game.Left,
		}[d]
	}
	a.game.MoveCursor(d)
}

func (a *App) selectSquare() {
	if a.thinking {
		return
	}
	pos := a.game.Position()
	played, err := a.game.Select()
	switch {
	case err != nil:
		a.status = err.Error()
	case played:
		a.status = "You played " + a.game.LastMove().SAN(&pos)
		a.afterMove()
	default:
		a.status = ""
	}
}

func (a *App) undo() {
	if a.thinking {
		return
	}
	if !a.game.Undo() {
		a.status = "Nothing to undo"
		return
	}
	a.saved = false
	a.status = "Move taken back"
}

func (a *App) resign() {
	if a.thinking || a.game.IsOver() {
		return
	}
	side := a.game.SideToMove()
	if !a.game.IsHuman(side) {
		side = side.Other()
	}
	a.game.Resign(side)
	a.status = side.String() + " resigns"
	a.afterMove()
}

func (a *App) newGame() {
	if a.thinking {
		return
	}
	if !a.saved && len(a.game.History()) > 0 {
		a.save()
	}

	human := board.White
	var opts []game.Option
	opts = append(opts, game.WithLogger(a.logger))
	switch {
	case a.game.IsHuman(board.White) && a.game.IsHuman(board.Black):
		opts = append(opts, game.WithHumans(true, true))
	case a.game.IsHuman(board.Black):
		human = board.Black
	}

	g, err := game.New(a.game.Engine(), human, opts...)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.game = g
	a.saved = false
	a.status = "New game"
}

// draw renders the board and the side panel.
func (a *App) draw() {
	s := a.screen
	s.Clear()

	pos := a.game.Position()
	cursor := a.game.Cursor()
	selected := a.game.Selected()
	last := a.game.LastMove()

	targets := make(map[board.Square]bool)
	if !a.thinking {
		for _, sq := range a.game.Targets() {
			targets[sq] = true
		}
	}
	check := board.NoSquare
	if side := a.game.SideToMove(); pos.InCheck(side) {
		check = pos.KingSquare(side)
	}

	for row := 0; row < 8; row++ {
		y := boardY + row
		for file := 0; file < 8; file++ {
			sq := a.screenSquare(file, row)

			bg := a.styles.dark
			if sq.IsLight() {
				bg = a.styles.light
			}
			switch {
			case sq == cursor && !a.game.IsOver():
				bg = a.styles.cursor
			case sq == selected:
				bg = a.styles.selected
			case sq == check:
				bg = a.styles.check
			case last.IsValid() && (sq == last.From || sq == last.To):
				bg = a.styles.lastMove
			}

			cell := "   "
			fg := tcell.ColorBlack
			if piece := pos.PieceAt(sq); piece != board.NoPiece {
				cell = " " + strings.ToUpper(piece.String()) + " "
				if piece.Color() == board.White {
					fg = tcell.ColorWhite
				}
			} else if targets[sq] {
				cell = " · "
				fg = tcell.ColorDarkGreen
			}
			a.drawText(boardX+file*cellWidth, y, tcell.StyleDefault.Background(bg).Foreground(fg).Bold(true), cell)
		}
		a.drawText(1, y, a.styles.dim, fmt.Sprint(a.screenSquare(0, row).Rank()))
	}
	for file := 0; file < 8; file++ {
		name := a.screenSquare(file, 0).String()
		a.drawText(boardX+file*cellWidth+1, boardY+8, a.styles.dim, name[:1])
	}

	a.drawPanel()
	s.Show()
}

func (a *App) drawPanel() {
	lines := []string{"NerdChess", ""}

	if out := a.game.Outcome(); a.game.IsOver() {
		lines = append(lines, fmt.Sprintf("Game over: %s (%s)", out.Result, out.Reason))
	} else {
		side := a.game.SideToMove()
		who := "you"
		if !a.game.IsHuman(side) {
			who = "engine"
		}
		lines = append(lines, fmt.Sprintf("%s to move (%s)", side.String(), who))
	}
	if last := a.game.LastMove(); last.IsValid() {
		lines = append(lines, "Last move: "+last.String())
	}
	lines = append(lines, fmt.Sprintf("Moves: %d", len(a.game.History())))
	if a.status != "" {
		lines = append(lines, "", a.status)
	}

	y := boardY
	for _, line := range lines {
		a.drawText(panelX, y, a.styles.text, truncate(line, panelWidth))
		y++
	}
	y = boardY + 10
	for _, line := range helpLines {
		a.drawText(panelX, y, a.styles.dim, line)
		y++
	}
}

// screenSquare returns the board square drawn at a screen file and row.
func (a *App) screenSquare(file, row int) board.Square {
	if a.flip {
		return board.NewSquare(7-file, 7-row)
	}
	return board.NewSquare(file, row)
}

func (a *App) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
