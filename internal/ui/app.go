package ui

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/game"
	"github.com/nerdchess/nerdchess/internal/storage"
)

// Screen layout. The board fills the left of the window, the panel the right.
const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	PanelWidth   = ScreenWidth - BoardSize
	SquareSize   = BoardSize / 8
)

type engineResult struct {
	game *game.Game
	move board.Move
	err  error
}

// App is the windowed front end. It implements ebiten.Game. Engine searches
// run in the background and are committed on the update loop, so the game is
// only modified from Update.
type App struct {
	game   *game.Game
	engine *engine.Engine
	store  *storage.Storage
	prefs  *storage.UserPreferences
	stats  *storage.GameStats
	logger zerolog.Logger

	renderer *Renderer
	input    *InputHandler
	panel    *Panel
	feedback *FeedbackManager

	results      chan engineResult
	thinking     bool
	cancel       context.CancelFunc
	engineFailed bool
	saved        bool
	quit         bool
}

// Option configures an App.
type Option func(*App)

// WithStore persists games, statistics and preferences in store.
func WithStore(store *storage.Storage) Option {
	return func(a *App) { a.store = store }
}

// WithPreferences sets the preferences the panel edits.
func WithPreferences(prefs *storage.UserPreferences) Option {
	return func(a *App) { a.prefs = prefs }
}

// WithEngine sets the engine used for new games against the computer. It
// defaults to the engine of the initial game.
func WithEngine(eng *engine.Engine) Option {
	return func(a *App) { a.engine = eng }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// NewApp creates the front end for g.
func NewApp(g *game.Game, opts ...Option) *App {
	a := &App{
		game:    g,
		engine:  g.Engine(),
		logger:  zerolog.Nop(),
		input:   NewInputHandler(),
		results: make(chan engineResult, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prefs == nil {
		a.prefs = storage.DefaultPreferences()
	}
	if g.IsHuman(board.White) && g.IsHuman(board.Black) {
		a.prefs.GameMode = storage.ModeHumanVsHuman
	} else {
		a.prefs.GameMode = storage.ModeHumanVsComputer
		a.prefs.PlayerColor = storage.ColorWhite
		if g.IsHuman(board.Black) {
			a.prefs.PlayerColor = storage.ColorBlack
		}
	}

	if err := loadFonts(); err != nil {
		a.logger.Warn().Err(err).Msg("fonts not loaded")
	}
	a.renderer = NewRenderer(SquareSize, a.logger)
	a.renderer.SetFlipped(a.prefs.PlayerColor == storage.ColorBlack)
	a.feedback = NewFeedbackManager(NewAudioManager(a.prefs.Sound))
	a.panel = NewPanel(a)

	if a.store != nil {
		a.loadStats()
		a.welcome()
	}
	return a
}

// welcome greets the player on the first launch.
func (a *App) welcome() {
	first, err := a.store.IsFirstLaunch()
	if err != nil {
		a.logger.Warn().Err(err).Msg("first launch check failed")
		return
	}
	if !first {
		return
	}
	a.feedback.Info("Welcome to NerdChess! Click a piece, then its destination.")
	if err := a.store.MarkFirstLaunchComplete(); err != nil {
		a.logger.Warn().Err(err).Msg("first launch not recorded")
	}
}

func (a *App) loadStats() {
	stats, err := a.store.LoadStats()
	if err != nil {
		a.logger.Warn().Err(err).Msg("stats not loaded")
		return
	}
	a.stats = stats
}

// Game returns the game being played.
func (a *App) Game() *game.Game {
	return a.game
}

// Update advances one frame.
func (a *App) Update() error {
	a.input.Update()
	a.feedback.Update()
	a.collectEngineMove()

	if !a.panel.HandleInput(a.input) && a.input.IsLeftJustPressed() {
		mx, my := a.input.MousePosition()
		if sq := a.renderer.ScreenToSquare(mx, my); sq != board.NoSquare {
			a.game.SetCursor(sq)
			a.selectCursor()
		}
	}
	for _, action := range a.input.Actions() {
		a.handleAction(action)
	}

	if a.quit {
		return ebiten.Termination
	}
	a.startEngine()
	return nil
}

func (a *App) handleAction(action Action) {
	dirs := map[Action]game.Direction{
		ActionUp:    game.Up,
		ActionDown:  game.Down,
		ActionLeft:  game.Left,
		ActionRight: game.Right,
	}
	if d, ok := dirs[action]; ok {
		if a.renderer.Flipped() {
			d = opposite(d)
		}
		a.game.MoveCursor(d)
		return
	}

	switch action {
	case ActionSelect:
		a.selectCursor()
	case ActionUndo:
		a.undo()
	case ActionFlip:
		a.flip()
	case ActionNewGame:
		a.newGame()
	case ActionResign:
		a.resign()
	case ActionMute:
		a.toggleSound()
	case ActionQuit:
		a.quit = true
	}
}

func opposite(d game.Direction) game.Direction {
	switch d {
	case game.Up:
		return game.Down
	case game.Down:
		return game.Up
	case game.Left:
		return game.Right
	default:
		return game.Left
	}
}

func (a *App) selectCursor() {
	from := a.game.Selected()
	before := a.game.Position()
	played, err := a.game.Select()
	if err != nil {
		a.feedback.OnRejected(from, a.game.Cursor(), err)
		return
	}
	if played {
		a.moved(&before, a.game.LastMove())
	}
}

// moved gives feedback for m, played from before, and ends the game if it
// is over.
func (a *App) moved(before *board.Position, m board.Move) {
	pos := a.game.Position()
	check := pos.InCheck(a.game.SideToMove())
	a.feedback.OnMove(m.IsCapture(before), check && !a.game.IsOver())
	a.panel.ScrollToEnd()
	if a.game.IsOver() {
		a.gameOver()
	}
}

func (a *App) gameOver() {
	a.feedback.OnGameOver(a.game.Outcome())
	a.save()
}

// startEngine searches for the engine's move in the background when it is
// the engine's turn.
func (a *App) startEngine() {
	if a.thinking || a.engineFailed || a.game.Phase() != game.EngineTurn {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.thinking, a.cancel = true, cancel
	g := a.game
	go func() {
		m, err := g.SearchEngineMove(ctx)
		a.results <- engineResult{game: g, move: m, err: err}
	}()
}

func (a *App) collectEngineMove() {
	var r engineResult
	select {
	case r = <-a.results:
	default:
		return
	}
	a.thinking = false
	a.cancel()
	if r.game != a.game {
		return
	}

	before := a.game.Position()
	m, err := a.game.CommitEngineMove(r.move, r.err)
	switch {
	case errors.Is(err, game.ErrGameOver):
		a.gameOver()
	case errors.Is(err, context.Canceled):
	case err != nil:
		a.engineFailed = true
		a.logger.Error().Err(err).Msg("engine search failed")
		a.feedback.Error("Engine failed: " + err.Error())
	default:
		a.moved(&before, m)
	}
}

func (a *App) undo() {
	if a.thinking || !a.game.Undo() {
		return
	}
	a.saved = false
	a.engineFailed = false
}

func (a *App) flip() {
	a.renderer.SetFlipped(!a.renderer.Flipped())
}

// resign gives up for the human, or for the side to move between humans.
func (a *App) resign() {
	if a.thinking || a.game.IsOver() {
		return
	}
	side := a.game.SideToMove()
	if !a.game.IsHuman(side) {
		side = side.Other()
	}
	a.game.Resign(side)
	a.gameOver()
}

func (a *App) toggleSound() {
	a.prefs.Sound = a.feedback.ToggleSound()
	if a.prefs.Sound {
		a.feedback.Info("Sound on")
	} else {
		a.feedback.Info("Sound off")
	}
	a.savePreferences()
}

// newGame starts a game with the mode and colour of the preferences. The
// unfinished game, if any, is kept in the store.
func (a *App) newGame() {
	if a.thinking {
		return
	}
	a.saveProgress()

	human := board.White
	if a.prefs.PlayerColor == storage.ColorBlack {
		human = board.Black
	}
	opts := []game.Option{game.WithLogger(a.logger)}
	if a.prefs.GameMode == storage.ModeHumanVsHuman {
		opts = append(opts, game.WithHumans(true, true))
	}
	g, err := game.New(a.engine, human, opts...)
	if err != nil {
		a.logger.Error().Err(err).Msg("new game")
		a.feedback.Error(err.Error())
		return
	}

	a.game = g
	a.saved = false
	a.engineFailed = false
	a.renderer.SetFlipped(human == board.Black)
	a.panel.Sync()
	a.logger.Info().
		Str("human", human.String()).
		Bool("vs_human", a.prefs.GameMode == storage.ModeHumanVsHuman).
		Msg("new game")
}

func (a *App) setMode(mode storage.GameMode) {
	a.prefs.GameMode = mode
	a.savePreferences()
	a.newGame()
}

func (a *App) setColor(c storage.PlayerColor) {
	a.prefs.PlayerColor = c
	a.savePreferences()
	a.newGame()
}

func (a *App) setDifficulty(d engine.Difficulty) {
	if a.engine == nil || a.thinking {
		return
	}
	a.engine.SetDifficulty(d)
	a.prefs.Difficulty = d.String()
	a.prefs.Depth = 0
	a.savePreferences()
	a.feedback.Info("Difficulty: " + d.String())
}

// save stores the game once it is over, which also updates the statistics.
func (a *App) save() {
	if a.store == nil || a.saved || !a.game.IsOver() {
		return
	}
	if _, err := a.game.Save(a.store); err != nil {
		a.logger.Error().Err(err).Msg("game not saved")
		a.feedback.Error("Game not saved")
		return
	}
	a.saved = true
	a.loadStats()
}

// saveProgress stores an unfinished game so it can be resumed.
func (a *App) saveProgress() {
	if a.store == nil || a.game.IsOver() || len(a.game.History()) == 0 {
		return
	}
	if _, err := a.game.Save(a.store); err != nil {
		a.logger.Error().Err(err).Msg("game not saved")
	}
}

func (a *App) savePreferences() {
	if a.store == nil {
		return
	}
	a.prefs.LastPlayed = time.Now()
	if err := a.store.SavePreferences(a.prefs); err != nil {
		a.logger.Warn().Err(err).Msg("preferences not saved")
	}
}

// Close stops any search and stores the game and the preferences.
func (a *App) Close() {
	if a.thinking {
		a.cancel()
		r := <-a.results
		a.thinking = false
		if r.err == nil && r.game == a.game {
			a.game.CommitEngineMove(r.move, nil)
		}
	}
	a.save()
	a.saveProgress()
	a.savePreferences()
}

// Draw renders the board, the feedback overlays and the panel.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(panelBg)
	a.renderer.DrawBoard(screen)

	pos := a.game.Position()
	h := Highlights{
		Selected: a.game.Selected(),
		Cursor:   a.game.Cursor(),
		Check:    board.NoSquare,
		LastMove: a.game.LastMove(),
		Targets:  a.game.Targets(),
	}
	if side := a.game.SideToMove(); pos.InCheck(side) {
		h.Check = pos.KingSquare(side)
	}
	a.renderer.DrawHighlights(screen, &pos, h)
	a.renderer.DrawPieces(screen, &pos, a.feedback.Animations())
	a.feedback.Draw(screen, a.renderer)
	a.panel.Draw(screen)
}

// Layout uses a fixed logical screen; Ebitengine scales it to the window.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
