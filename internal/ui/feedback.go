package ui

import (
	"errors"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/game"
)

// ToastType is the kind of a toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast is a short notification shown over the board.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager keeps the most recent toasts.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a toast for duration.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	tm.toasts = slices.DeleteFunc(tm.toasts, func(t *Toast) bool {
		return now.Sub(t.StartTime) >= t.Duration
	})
}

// Messages returns the active toast messages, oldest first.
func (tm *ToastManager) Messages() []string {
	out := make([]string, len(tm.toasts))
	for i, t := range tm.toasts {
		out[i] = t.Message
	}
	return out
}

func toastColors(t ToastType, alpha float64) (bg, fg color.RGBA) {
	a := uint8(220 * alpha)
	fg = color.RGBA{255, 255, 255, uint8(255 * alpha)}
	switch t {
	case ToastWarning:
		return color.RGBA{180, 140, 20, a}, color.RGBA{40, 30, 0, uint8(255 * alpha)}
	case ToastError:
		return color.RGBA{180, 50, 50, a}, fg
	case ToastSuccess:
		return color.RGBA{50, 150, 50, a}, fg
	default:
		return color.RGBA{50, 100, 150, a}, fg
	}
}

// Draw renders the toasts centred over the board, fading in and out.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	if regularFace == nil {
		return
	}

	const fadeTime, padding = 0.2, 12.0
	y := 50.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()
		alpha := 1.0
		if elapsed < fadeTime {
			alpha = elapsed / fadeTime
		} else if elapsed > duration-fadeTime {
			alpha = (duration - elapsed) / fadeTime
		}
		alpha = max(0, min(1, alpha))
		bg, fg := toastColors(t.Type, alpha)

		w, h := MeasureText(t.Message, regularFace)
		boxW, boxH := w+padding*2, h+padding*2
		x := float64(BoardSize)/2 - boxW/2
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bg, false)

		op := &text.DrawOptions{}
		op.GeoM.Translate(x+padding, y+padding)
		op.ColorScale.ScaleWithColor(fg)
		text.Draw(screen, t.Message, regularFace, op)

		y += boxH + 8
	}
}

type shake struct {
	square    board.Square
	start     time.Time
	duration  time.Duration
	intensity float64
}

type flash struct {
	square   board.Square
	start    time.Time
	duration time.Duration
	color    color.RGBA
}

// AnimationManager runs square shakes and flashes.
type AnimationManager struct {
	shakes  []shake
	flashes []flash
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake shakes the piece on sq.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, shake{sq, time.Now(), 300 * time.Millisecond, 8})
}

// StartFlash flashes sq in c.
func (am *AnimationManager) StartFlash(sq board.Square, c color.RGBA) {
	am.flashes = append(am.flashes, flash{sq, time.Now(), 400 * time.Millisecond, c})
}

// Update removes finished animations.
func (am *AnimationManager) Update() {
	now := time.Now()
	am.shakes = slices.DeleteFunc(am.shakes, func(s shake) bool { return now.Sub(s.start) >= s.duration })
	am.flashes = slices.DeleteFunc(am.flashes, func(f flash) bool { return now.Sub(f.start) >= f.duration })
}

// ShakeOffset returns the horizontal displacement of the piece on sq, a
// damped sine while a shake runs.
func (am *AnimationManager) ShakeOffset(sq board.Square) (float64, float64) {
	for _, s := range am.shakes {
		if s.square != sq {
			continue
		}
		progress := time.Since(s.start).Seconds() / s.duration.Seconds()
		if progress >= 1 {
			return 0, 0
		}
		amplitude := s.intensity * math.Exp(-5*progress)
		return amplitude * math.Sin(40*progress), 0
	}
	return 0, 0
}

// DrawFlashes renders the fading flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, r *Renderer) {
	size := float32(r.SquareSize())
	for _, f := range am.flashes {
		progress := time.Since(f.start).Seconds() / f.duration.Seconds()
		if progress >= 1 {
			continue
		}
		c := f.color
		c.A = uint8(float64(c.A) * (1 - progress))
		x, y := r.SquareToScreen(f.square)
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
}

// FeedbackManager turns game events into toasts, animations and sounds.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a feedback manager. A nil audio manager mutes
// the feedback.
func NewFeedbackManager(audio *AudioManager) *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      audio,
	}
}

// Update advances toasts and animations.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders the flashes and toasts.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, r *Renderer) {
	fm.animations.DrawFlashes(screen, r)
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for the renderer.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// Toasts returns the toast manager.
func (fm *FeedbackManager) Toasts() *ToastManager {
	return fm.toasts
}

func (fm *FeedbackManager) play(s SoundType) {
	if fm.audio != nil {
		fm.audio.Play(s)
	}
}

// ToggleSound flips the sound on or off and reports the new state.
func (fm *FeedbackManager) ToggleSound() bool {
	if fm.audio == nil {
		return false
	}
	fm.audio.SetEnabled(!fm.audio.IsEnabled())
	return fm.audio.IsEnabled()
}

// OnRejected reports a move the game refused. The piece on from shakes and
// the target square flashes red.
func (fm *FeedbackManager) OnRejected(from, to board.Square, err error) {
	message := "Invalid move"
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		message = "Not your turn"
	case errors.Is(err, game.ErrGameOver):
		message = "The game is over"
	}
	fm.toasts.Show(message, ToastWarning, 2*time.Second)
	if from.IsValid() {
		fm.animations.StartShake(from)
	}
	fm.animations.StartFlash(to, color.RGBA{255, 80, 80, 150})
	fm.play(SoundInvalid)
}

// OnMove reports a move played by either side.
func (fm *FeedbackManager) OnMove(capture, check bool) {
	switch {
	case check:
		fm.toasts.Show("Check!", ToastWarning, 2*time.Second)
		fm.play(SoundCheck)
	case capture:
		fm.play(SoundCapture)
	default:
		fm.play(SoundMove)
	}
}

// OnGameOver announces the result.
func (fm *FeedbackManager) OnGameOver(o game.Outcome) {
	kind := ToastSuccess
	if o.Result == "1/2-1/2" {
		kind = ToastInfo
	}
	fm.toasts.Show(resultText(o), kind, 5*time.Second)
	fm.play(SoundGameEnd)
}

// resultText is the human-readable result of a finished game.
func resultText(o game.Outcome) string {
	switch o.Result {
	case "1-0":
		return "White wins (" + o.Reason + ")"
	case "0-1":
		return "Black wins (" + o.Reason + ")"
	case "1/2-1/2":
		return "Draw (" + o.Reason + ")"
	}
	return ""
}

// Info shows an informational toast.
func (fm *FeedbackManager) Info(message string) {
	fm.toasts.Show(message, ToastInfo, 3*time.Second)
}

// Error shows an error toast.
func (fm *FeedbackManager) Error(message string) {
	fm.toasts.Show(message, ToastError, 4*time.Second)
}
