package effects

import (
	"github.com/chewxy/math32"

	"retrofx/internal/util"
	"retrofx/pkg/frame"
)

const (
	studInner   = 0.22 // rim highlight starts
	studRadius  = 0.3
	studOuter   = 0.34 // rim fades out
	studShading = 0.35
	brickSeam   = 0.7
)

// Lego turns every PixelSize block into a plastic brick: the block colour,
// a darker seam along the cell edge and a round stud lit from
// (LightX, LightY). The light position is in cell uv, origin top-left.
type Lego struct {
	PixelSize int     `yaml:"pixel_size"`
	LightX    float32 `yaml:"light_x"`
	LightY    float32 `yaml:"light_y"`
}

// NewLego returns 16 pixel bricks lit from the lower right
func NewLego() *Lego {
	return &Lego{PixelSize: 16, LightX: 0.8, LightY: 0.8}
}

func (l *Lego) Kind() Kind { return KindLego }

func (l *Lego) bindings() []binding {
	return []binding{
		intParam("pixel_size", &l.PixelSize, 16, 2, 256, 8, 16, 32, 64),
		floatParam("light_x", &l.LightX, 0.8, 0, 1),
		floatParam("light_y", &l.LightY, 0.8, 0, 1),
	}
}

func (l *Lego) Validate() error { return validateBindings(l.Kind(), l.bindings()) }

func (l *Lego) Parameters() []Parameter { return describe(l.bindings()) }

func (l *Lego) SetParameter(name string, v float64) error {
	return assign(l, l.bindings(), name, v)
}

func (l *Lego) Clone() Effect {
	c := *l
	return &c
}

// lightDir is the unit vector from the cell centre towards the light, or
// zero when the light sits on the centre.
func (l *Lego) lightDir() (float32, float32) {
	dx, dy := l.LightX-0.5, l.LightY-0.5
	n := math32.Sqrt(dx*dx + dy*dy)
	if n == 0 {
		return 0, 0
	}
	return dx / n, dy / n
}

// BrickShade returns the brightness factor of cell uv (cu, cv) in [0,1)²
func (l *Lego) BrickShade(cu, cv float32) float32 {
	cx, cy := cu-0.5, cv-0.5
	shade := float32(1)

	d := math32.Sqrt(cx*cx + cy*cy)
	if d > 0 {
		lx, ly := l.lightDir()
		rim := util.SmoothStep(studInner, studRadius, d) * (1 - util.SmoothStep(studRadius, studOuter, d))
		shade += studShading * rim * (cx*lx + cy*ly) / d
	}

	seam := 0.5 - 1/float32(l.PixelSize)
	if math32.Abs(cx) > seam || math32.Abs(cy) > seam {
		shade *= brickSeam
	}
	return shade
}

func (l *Lego) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.SamplePixel(blockCenter(l.PixelSize, x, y))

	ps := float32(l.PixelSize)
	fx, fy := float32(x)+0.5, float32(y)+0.5
	s := l.BrickShade(util.Fract(fx/ps), util.Fract(fy/ps))

	return frame.Color{
		R: util.Saturate(c.R * s),
		G: util.Saturate(c.G * s),
		B: util.Saturate(c.B * s),
		A: c.A,
	}
}
