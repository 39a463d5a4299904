package effects

import (
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"retrofx/pkg/frame"
)

// asciiGradient lists the glyphs from darkest to lightest
const asciiGradient = " .'`,:;\"-+=*#%@$"

// glyph atlas dimensions, one basicfont cell per ramp entry
const (
	glyphWidth  = 7
	glyphHeight = 13
)

var (
	glyphOnce  sync.Once
	glyphMasks [][glyphWidth * glyphHeight]bool
)

// glyphAtlas rasterizes the gradient into coverage masks
func glyphAtlas() [][glyphWidth * glyphHeight]bool {
	glyphOnce.Do(func() {
		face := basicfont.Face7x13
		img := image.NewAlpha(image.Rect(0, 0, glyphWidth*len(asciiGradient), glyphHeight))
		d := &font.Drawer{Dst: img, Src: image.Opaque, Face: face}

		glyphMasks = make([][glyphWidth * glyphHeight]bool, len(asciiGradient))
		for i, r := range asciiGradient {
			d.Dot = fixed.P(i*glyphWidth, face.Ascent)
			d.DrawString(string(r))

			for gy := 0; gy < glyphHeight; gy++ {
				for gx := 0; gx < glyphWidth; gx++ {
					glyphMasks[i][gy*glyphWidth+gx] = img.AlphaAt(i*glyphWidth+gx, gy).A >= 0x80
				}
			}
		}
	})
	return glyphMasks
}

// GlyphIndex maps a luminance in [0,1] to a position in the glyph ramp
func GlyphIndex(l float32) int {
	n := len(asciiGradient)
	i := int(l * float32(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ASCII redraws the frame as a grid of text glyphs. Every CellSize block
// shows the glyph whose density matches the block's luminance, lit in the
// block colour (or white when Colored is off) over black.
type ASCII struct {
	CellSize int  `yaml:"cell_size"`
	Colored  bool `yaml:"colored"`
}

// NewASCII returns 8 pixel coloured cells
func NewASCII() *ASCII {
	return &ASCII{CellSize: 8, Colored: true}
}

func (a *ASCII) Kind() Kind { return KindASCII }

func (a *ASCII) bindings() []binding {
	return []binding{
		intParam("cell_size", &a.CellSize, 8, 2, 256, 4, 8, 16, 32),
		boolParam("colored", &a.Colored, true),
	}
}

func (a *ASCII) Validate() error { return validateBindings(a.Kind(), a.bindings()) }

func (a *ASCII) Parameters() []Parameter { return describe(a.bindings()) }

func (a *ASCII) SetParameter(name string, v float64) error {
	return assign(a, a.bindings(), name, v)
}

func (a *ASCII) Clone() Effect {
	c := *a
	return &c
}

func (a *ASCII) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.SamplePixel(blockCenter(a.CellSize, x, y))
	mask := glyphAtlas()[GlyphIndex(c.Luminance())]

	// stretch the glyph over the cell
	gx := (x % a.CellSize) * glyphWidth / a.CellSize
	gy := (y % a.CellSize) * glyphHeight / a.CellSize
	if !mask[gy*glyphWidth+gx] {
		return frame.Color{A: c.A}
	}
	if !a.Colored {
		return frame.Color{R: 1, G: 1, B: 1, A: c.A}
	}
	return c
}
