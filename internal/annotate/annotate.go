// Package annotate defines the rendering contract: findings mapped to
// screen rectangles, ready for an overlay renderer to draw.
package annotate

import (
	"proofd/internal/focus"
	"proofd/internal/lint"
)

// Color classifies an annotation for the renderer's palette.
type Color string

const (
	ColorSpelling Color = "spelling" // conventionally red
	ColorGrammar  Color = "grammar"  // conventionally blue
)

// ColorFor maps a finding category to its color class.
func ColorFor(c lint.Category) Color {
	if c == lint.Grammar {
		return ColorGrammar
	}
	return ColorSpelling
}

// Annotation is one finding positioned on screen, in the renderer's
// top-left-origin coordinate space. FindingIndex refers back into the
// published pass's finding list; annotations live exactly as long as
// that pass and are discarded wholesale with it.
type Annotation struct {
	Rect         focus.Rect
	Color        Color
	FindingIndex int
}

// Renderer draws and clears positioned annotations. Implementations
// are external; clicks come back to the coordinator as messages, not
// through this interface.
type Renderer interface {
	UpdateAnnotations([]Annotation)
	ClearAnnotations()
}
