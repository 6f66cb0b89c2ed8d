package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a keyboard command.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionSelect
	ActionUndo
	ActionFlip
	ActionNewGame
	ActionResign
	ActionMute
	ActionQuit
)

// keyActions maps keys to actions. Arrow keys and hjkl both move the cursor.
var keyActions = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeyArrowUp, ActionUp},
	{ebiten.KeyK, ActionUp},
	{ebiten.KeyArrowDown, ActionDown},
	{ebiten.KeyJ, ActionDown},
	{ebiten.KeyArrowLeft, ActionLeft},
	{ebiten.KeyH, ActionLeft},
	{ebiten.KeyArrowRight, ActionRight},
	{ebiten.KeyL, ActionRight},
	{ebiten.KeySpace, ActionSelect},
	{ebiten.KeyEnter, ActionSelect},
	{ebiten.KeyU, ActionUndo},
	{ebiten.KeyF, ActionFlip},
	{ebiten.KeyN, ActionNewGame},
	{ebiten.KeyR, ActionResign},
	{ebiten.KeyM, ActionMute},
	{ebiten.KeyQ, ActionQuit},
	{ebiten.KeyEscape, ActionQuit},
}

// InputHandler samples mouse and keyboard state once per frame.
type InputHandler struct {
	mouseX, mouseY  int
	leftPressed     bool
	leftJustPressed bool
	wheelY          float64
	actions         []Action
}

// NewInputHandler creates a new input handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Update updates the input state. Call this once per frame.
func (ih *InputHandler) Update() {
	ih.mouseX, ih.mouseY = ebiten.CursorPosition()
	ih.leftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	ih.leftPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	_, ih.wheelY = ebiten.Wheel()

	ih.actions = ih.actions[:0]
	for _, ka := range keyActions {
		if inpututil.IsKeyJustPressed(ka.key) {
			ih.actions = append(ih.actions, ka.action)
		}
	}
}

// Actions returns the keyboard actions triggered this frame.
func (ih *InputHandler) Actions() []Action {
	return ih.actions
}

// MousePosition returns the cursor position in screen coordinates.
func (ih *InputHandler) MousePosition() (int, int) {
	return ih.mouseX, ih.mouseY
}

// IsLeftJustPressed returns true if the left mouse button was just pressed.
func (ih *InputHandler) IsLeftJustPressed() bool {
	return ih.leftJustPressed
}

// IsLeftPressed returns true if the left mouse button is held.
func (ih *InputHandler) IsLeftPressed() bool {
	return ih.leftPressed
}

// WheelY returns the vertical scroll of this frame.
func (ih *InputHandler) WheelY() float64 {
	return ih.wheelY
}

// IsInBounds returns true if the mouse is within the given rectangle.
func (ih *InputHandler) IsInBounds(x, y, w, h int) bool {
	return ih.mouseX >= x && ih.mouseX < x+w && ih.mouseY >= y && ih.mouseY < y+h
}

// ClickedInBounds returns true if the mouse was just clicked within the given rectangle.
func (ih *InputHandler) ClickedInBounds(x, y, w, h int) bool {
	return ih.leftJustPressed && ih.IsInBounds(x, y, w, h)
}
