// Package ui is the windowed NerdChess front end, built on Ebitengine.
package ui

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	defaultFontSize = 14.0
	titleFontSize   = 16.0
	coordFontSize   = 11.0
)

var (
	fontsOnce   sync.Once
	fontsErr    error
	regularFace *text.GoTextFace
	boldFace    *text.GoTextFace
	coordFace   *text.GoTextFace
)

// loadFonts parses the Go fonts once. Drawing without fonts is a no-op, so
// callers only need the error for logging.
func loadFonts() error {
	fontsOnce.Do(func() {
		regular, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			fontsErr = fmt.Errorf("regular font: %w", err)
			return
		}
		bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
		if err != nil {
			fontsErr = fmt.Errorf("bold font: %w", err)
			return
		}
		regularFace = &text.GoTextFace{Source: regular, Size: defaultFontSize}
		boldFace = &text.GoTextFace{Source: bold, Size: titleFontSize}
		coordFace = &text.GoTextFace{Source: bold, Size: coordFontSize}
	})
	return fontsErr
}

// MeasureText returns the width and height of s in face.
func MeasureText(s string, face *text.GoTextFace) (width, height float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, 0)
}
