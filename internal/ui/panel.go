package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/game"
	"github.com/nerdchess/nerdchess/internal/storage"
)

// Panel dimensions
const (
	PanelPadding  = 20
	SectionLabelH = 20
	ButtonHeight  = 36
	TabHeight     = 32
	rowHeight     = 22
	historyTop    = 374
	statusTop     = ScreenHeight - 76
)

// Panel is the side panel with the game controls, the move list and the
// status line.
type Panel struct {
	app *App

	newGameBtn *Button
	undoBtn    *Button
	flipBtn    *Button
	resignBtn  *Button
	soundBtn   *Button
	modeTabs   *ButtonGroup
	colorTabs  *ButtonGroup
	diffTabs   *ButtonGroup

	scrollY    int
	maxScrollY int
}

// NewPanel lays out the panel for app.
func NewPanel(app *App) *Panel {
	x := BoardSize + PanelPadding
	inner := PanelWidth - PanelPadding*2
	third := (inner - 16) / 3
	half := (inner - 8) / 2

	p := &Panel{app: app}
	p.newGameBtn = &Button{X: x, Y: 50, W: third, H: ButtonHeight, Label: "New Game", Primary: true, OnClick: app.newGame}
	p.undoBtn = &Button{X: x + third + 8, Y: 50, W: third, H: ButtonHeight, Label: "Undo", OnClick: app.undo}
	p.flipBtn = &Button{X: x + 2*(third+8), Y: 50, W: third, H: ButtonHeight, Label: "Flip", OnClick: app.flip}
	p.resignBtn = &Button{X: x, Y: 94, W: half, H: ButtonHeight, Label: "Resign", OnClick: app.resign}
	p.soundBtn = &Button{X: x + half + 8, Y: 94, W: half, H: ButtonHeight, OnClick: app.toggleSound}

	p.modeTabs = NewButtonGroup(x, 166, []string{"vs Computer", "vs Human"}, 0, inner/2, TabHeight)
	p.colorTabs = NewButtonGroup(x, 234, []string{"White", "Black"}, 0, inner/2, TabHeight)
	p.diffTabs = NewButtonGroup(x, 302, []string{"Easy", "Medium", "Hard"}, 0, inner/3, TabHeight)
	p.Sync()
	return p
}

// Sync copies the app state into the controls.
func (p *Panel) Sync() {
	prefs := p.app.prefs
	p.modeTabs.Selected = 0
	if prefs.GameMode == storage.ModeHumanVsHuman {
		p.modeTabs.Selected = 1
	}
	p.colorTabs.Selected = int(prefs.PlayerColor)
	if p.app.engine != nil {
		p.diffTabs.Selected = int(p.app.engine.Difficulty())
	}
	p.soundBtn.Label = "Sound: off"
	if prefs.Sound {
		p.soundBtn.Label = "Sound: on"
	}

	busy := p.app.thinking
	over := p.app.game.IsOver()
	p.newGameBtn.Disabled = busy
	p.undoBtn.Disabled = busy || len(p.app.game.History()) == 0
	p.resignBtn.Disabled = busy || over
	p.modeTabs.Disabled = busy || p.app.engine == nil
	p.colorTabs.Disabled = busy
	p.diffTabs.Disabled = busy || p.app.engine == nil
}

func (p *Panel) buttons() []*Button {
	return []*Button{p.newGameBtn, p.undoBtn, p.flipBtn, p.resignBtn, p.soundBtn}
}

// HandleInput handles clicks and scrolling over the panel and reports
// whether the input was consumed.
func (p *Panel) HandleInput(input *InputHandler) bool {
	p.Sync()
	mx, _ := input.MousePosition()
	if mx < BoardSize {
		return false
	}

	if wheel := input.WheelY(); wheel != 0 {
		p.scrollY = max(0, min(p.maxScrollY, p.scrollY-int(wheel*rowHeight)))
	}

	for _, b := range p.buttons() {
		if b.Update(input) {
			return true
		}
	}
	if p.modeTabs.Update(input) {
		mode := storage.ModeHumanVsComputer
		if p.modeTabs.Selected == 1 {
			mode = storage.ModeHumanVsHuman
		}
		p.app.setMode(mode)
		return true
	}
	if p.colorTabs.Update(input) {
		p.app.setColor(storage.PlayerColor(p.colorTabs.Selected))
		return true
	}
	if p.prefsShowDifficulty() && p.diffTabs.Update(input) {
		p.app.setDifficulty(engine.Difficulty(p.diffTabs.Selected))
		return true
	}
	return input.IsLeftJustPressed()
}

func (p *Panel) prefsShowDifficulty() bool {
	return p.app.prefs.GameMode == storage.ModeHumanVsComputer && p.app.engine != nil
}

// ScrollToEnd shows the latest moves.
func (p *Panel) ScrollToEnd() {
	p.scrollY = 1 << 30
}

// Draw renders the panel.
func (p *Panel) Draw(screen *ebiten.Image) {
	x := BoardSize + PanelPadding
	vector.DrawFilledRect(screen, float32(BoardSize), 0, float32(PanelWidth), float32(ScreenHeight), panelBg, false)
	drawText(screen, "NerdChess", x, 18, textPrimary, boldFace)

	for _, b := range p.buttons() {
		b.Draw(screen)
	}

	p.drawSectionLabel(screen, "Game Mode", p.modeTabs.Y)
	p.modeTabs.Draw(screen)
	label := "Play As"
	if p.app.prefs.GameMode == storage.ModeHumanVsHuman {
		label = "Bottom Side"
	}
	p.drawSectionLabel(screen, label, p.colorTabs.Y)
	p.colorTabs.Draw(screen)
	if p.prefsShowDifficulty() {
		p.drawSectionLabel(screen, "Difficulty", p.diffTabs.Y)
		p.diffTabs.Draw(screen)
	}

	p.drawSectionLabel(screen, "Moves", historyTop)
	p.drawMoveHistory(screen, historyTop)
	p.drawStatusBar(screen)
}

func (p *Panel) drawSectionLabel(screen *ebiten.Image, label string, widgetY int) {
	drawText(screen, label, BoardSize+PanelPadding, widgetY-SectionLabelH, textMuted, regularFace)
}

func (p *Panel) drawMoveHistory(screen *ebiten.Image, startY int) {
	x := BoardSize + PanelPadding
	moves := p.app.game.SAN()
	if len(moves) == 0 {
		drawText(screen, "No moves yet", x, startY+5, textMuted, regularFace)
		return
	}

	maxY := statusTop - 16
	visibleHeight := maxY - startY
	totalRows := (len(moves) + 1) / 2
	p.maxScrollY = max(0, totalRows*rowHeight-visibleHeight)
	p.scrollY = min(p.scrollY, p.maxScrollY)

	first := p.scrollY / rowHeight
	y := startY
	for row := first; row < totalRows && y+rowHeight <= maxY; row++ {
		if row%2 == 1 {
			vector.DrawFilledRect(screen, float32(x-4), float32(y-2),
				float32(PanelWidth-PanelPadding*2+8), float32(rowHeight), moveRowAlt, false)
		}
		i := row * 2
		drawText(screen, fmt.Sprintf("%d.", row+1), x, y, textMuted, regularFace)
		drawText(screen, moves[i], x+36, y, textPrimary, regularFace)
		if i+1 < len(moves) {
			drawText(screen, moves[i+1], x+120, y, textPrimary, regularFace)
		}
		y += rowHeight
	}

	if p.maxScrollY > 0 {
		scrollPct := float32(p.scrollY) / float32(p.maxScrollY)
		indicatorH := max(20, float32(visibleHeight)*float32(visibleHeight)/float32(totalRows*rowHeight))
		indicatorY := float32(startY) + scrollPct*(float32(visibleHeight)-indicatorH)
		vector.DrawFilledRect(screen, float32(ScreenWidth-8), indicatorY, 4, indicatorH, textMuted, false)
	}
}

func (p *Panel) drawStatusBar(screen *ebiten.Image) {
	x := BoardSize + PanelPadding
	DrawDivider(screen, x, statusTop-8, PanelWidth-PanelPadding*2)

	if stats := p.app.stats; stats != nil {
		line := fmt.Sprintf("%s  %d games  %d-%d-%d  %.0f%%",
			p.app.prefs.Username, stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws, stats.GetWinRate())
		drawText(screen, line, x, statusTop, textSecondary, regularFace)
	}

	g := p.app.game
	status, c := p.statusText(g), textPrimary
	switch {
	case g.IsOver():
		c = statusGameOver
	case p.app.thinking:
		c = statusThinking
	}
	drawText(screen, status, x, statusTop+24, c, regularFace)
	drawText(screen, "Arrows/hjkl move  Enter select  m sound", x, statusTop+48, textMuted, regularFace)
}

func (p *Panel) statusText(g *game.Game) string {
	if g.IsOver() {
		return resultText(g.Outcome())
	}
	if p.app.thinking {
		return "Engine thinking..."
	}
	side := g.SideToMove()
	pos := g.Position()
	s := side.String() + " to move"
	if pos.InCheck(side) {
		s += " (check)"
	}
	if g.IsHuman(side) && !g.IsHuman(side.Other()) {
		s += ", your turn"
	}
	if sel := g.Selected(); sel != board.NoSquare {
		s += fmt.Sprintf(", %s selected", sel)
	}
	return s
}
