package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	panelBg         = color.RGBA{38, 40, 45, 255}
	tabActiveBg     = color.RGBA{76, 132, 96, 255}
	tabInactiveBg   = color.RGBA{50, 54, 60, 255}
	tabHoverBg      = color.RGBA{65, 70, 78, 255}
	buttonBg        = color.RGBA{50, 54, 60, 255}
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}
	buttonPressedBg = color.RGBA{40, 44, 50, 255}
	buttonBorder    = color.RGBA{70, 75, 82, 255}
	accentColor     = color.RGBA{76, 175, 120, 255}
	accentHover     = color.RGBA{96, 195, 140, 255}
	accentPressed   = color.RGBA{56, 155, 100, 255}
	textPrimary     = color.RGBA{240, 240, 245, 255}
	textSecondary   = color.RGBA{160, 165, 175, 255}
	textMuted       = color.RGBA{120, 125, 135, 255}
	dividerColor    = color.RGBA{60, 65, 72, 255}
	moveRowAlt      = color.RGBA{44, 48, 54, 255}
	statusThinking  = color.RGBA{100, 180, 255, 255}
	statusGameOver  = color.RGBA{255, 200, 80, 255}
)

// Button is a clickable label. Disabled buttons are drawn muted and ignore
// clicks.
type Button struct {
	X, Y, W, H int
	Label      string
	Primary    bool
	Disabled   bool
	OnClick    func()
	hovered    bool
	pressed    bool
}

// Update tracks hover state and runs OnClick on a click. It reports whether
// the click was consumed.
func (b *Button) Update(input *InputHandler) bool {
	b.hovered = !b.Disabled && input.IsInBounds(b.X, b.Y, b.W, b.H)
	b.pressed = b.hovered && input.IsLeftPressed()
	if b.hovered && input.IsLeftJustPressed() {
		if b.OnClick != nil {
			b.OnClick()
		}
		return true
	}
	return false
}

// Draw renders the button.
func (b *Button) Draw(screen *ebiten.Image) {
	bg, border, fg := buttonBg, buttonBorder, textPrimary
	if b.Primary {
		bg, border = accentColor, accentPressed
	}
	switch {
	case b.Disabled:
		fg = textMuted
		if b.Primary {
			bg = tabActiveBg
		}
	case b.pressed && b.Primary:
		bg = accentPressed
	case b.pressed:
		bg = buttonPressedBg
	case b.hovered && b.Primary:
		bg, border = accentHover, accentHover
	case b.hovered:
		bg, border = buttonHoverBg, accentColor
	}
	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, false)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 1, border, false)
	drawTextCentered(screen, b.Label, b.X+b.W/2, b.Y+b.H/2, fg)
}

// ButtonGroup is a row of tabs with one selected.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	Disabled bool
	hovered  int
}

// NewButtonGroup creates a new button group.
func NewButtonGroup(x, y int, options []string, selected, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{
		X:        x,
		Y:        y,
		Options:  options,
		Selected: selected,
		ButtonW:  buttonW,
		ButtonH:  buttonH,
		hovered:  -1,
	}
}

// Update reports whether a different tab was clicked.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	bg.hovered = -1
	if bg.Disabled {
		return false
	}
	for i := range bg.Options {
		if !input.IsInBounds(bg.X+i*bg.ButtonW, bg.Y, bg.ButtonW, bg.ButtonH) {
			continue
		}
		bg.hovered = i
		if input.IsLeftJustPressed() && i != bg.Selected {
			bg.Selected = i
			return true
		}
	}
	return false
}

// Draw renders the button group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	for i, label := range bg.Options {
		x := float32(bg.X + i*bg.ButtonW)
		fill, border, fg := tabInactiveBg, buttonBorder, textSecondary
		switch {
		case i == bg.Selected:
			fill, border, fg = tabActiveBg, tabActiveBg, textPrimary
		case i == bg.hovered:
			fill, border = tabHoverBg, accentColor
		}
		if bg.Disabled && i != bg.Selected {
			fg = textMuted
		}
		vector.DrawFilledRect(screen, x, float32(bg.Y), float32(bg.ButtonW), float32(bg.ButtonH), fill, false)
		vector.StrokeRect(screen, x, float32(bg.Y), float32(bg.ButtonW), float32(bg.ButtonH), 1, border, false)
		drawTextCentered(screen, label, bg.X+i*bg.ButtonW+bg.ButtonW/2, bg.Y+bg.ButtonH/2, fg)
	}
}

func drawText(screen *ebiten.Image, s string, x, y int, c color.Color, face *text.GoTextFace) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

func drawTextCentered(screen *ebiten.Image, s string, centerX, centerY int, c color.Color) {
	if regularFace == nil {
		return
	}
	w, h := MeasureText(s, regularFace)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(centerX)-w/2, float64(centerY)-h/2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, regularFace, op)
}

// DrawDivider draws a horizontal divider line.
func DrawDivider(screen *ebiten.Image, x, y, w int) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), 1, dividerColor, false)
}
