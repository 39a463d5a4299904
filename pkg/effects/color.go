package effects

import (
	"github.com/chewxy/math32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"retrofx/pkg/frame"
)

// RGBShift offsets the red and blue channels in opposite directions
type RGBShift struct {
	Amount float32 `yaml:"amount"`
	// Angle of the offset in degrees
	Angle float32 `yaml:"angle"`
}

// NewRGBShift returns a slight horizontal shift
func NewRGBShift() *RGBShift {
	return &RGBShift{Amount: 0.005, Angle: 0}
}

func (r *RGBShift) Kind() Kind { return KindRGBShift }

func (r *RGBShift) bindings() []binding {
	return []binding{
		floatParam("amount", &r.Amount, 0.005, 0, 0.01),
		floatParam("angle", &r.Angle, 0, 0, 180),
	}
}

func (r *RGBShift) Validate() error { return validateBindings(r.Kind(), r.bindings()) }

func (r *RGBShift) Parameters() []Parameter { return describe(r.bindings()) }

func (r *RGBShift) SetParameter(name string, v float64) error {
	return assign(r, r.bindings(), name, v)
}

func (r *RGBShift) Clone() Effect {
	c := *r
	return &c
}

func (r *RGBShift) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	_, _, u, v := fragCoord(src, x, y)
	sin, cos := math32.Sincos(r.Angle * math32.Pi / 180)
	ou, ov := r.Amount*cos, r.Amount*sin

	base := src.At(x, y)
	return frame.Color{
		R: src.SampleUV(u+ou, v+ov).R,
		G: base.G,
		B: src.SampleUV(u-ou, v-ov).B,
		A: base.A,
	}
}

// ditherOffset is the zero-mean Bayer offset scaled to one quantization step
func ditherOffset(x, y, levels int) float32 {
	return (BayerThreshold(8, x, y) - 0.5) / float32(levels-1)
}

// Palette maps dithered luminance onto a colour ramp texture
type Palette struct {
	ColorNum int `yaml:"color_num"`
}

// NewPalette returns the 16 level default
func NewPalette() *Palette {
	return &Palette{ColorNum: 16}
}

func (p *Palette) Kind() Kind { return KindPalette }

func (p *Palette) bindings() []binding {
	return []binding{
		intParam("color_num", &p.ColorNum, 16, 2, 256, 2, 4, 8, 16),
	}
}

func (p *Palette) Validate() error { return validateBindings(p.Kind(), p.bindings()) }

func (p *Palette) Parameters() []Parameter { return describe(p.bindings()) }

func (p *Palette) SetParameter(name string, v float64) error {
	return assign(p, p.bindings(), name, v)
}

func (p *Palette) Clone() Effect {
	c := *p
	return &c
}

func (p *Palette) Shade(ctx *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.At(x, y)
	if ctx == nil || ctx.Palette == nil {
		return frame.Color{A: c.A}
	}

	l := Quantize(c.Luminance(), ditherOffset(x, y, p.ColorNum), p.ColorNum)
	out := ctx.Palette.SampleUV(l, 0)
	out.A = c.A
	return out
}

// Lightness posterizes HSL lightness while keeping hue and saturation
type Lightness struct {
	ColorNum int `yaml:"color_num"`
}

// NewLightness returns the 16 level default
func NewLightness() *Lightness {
	return &Lightness{ColorNum: 16}
}

func (l *Lightness) Kind() Kind { return KindLightness }

func (l *Lightness) bindings() []binding {
	return []binding{
		intParam("color_num", &l.ColorNum, 16, 2, 256, 2, 4, 8, 16),
	}
}

func (l *Lightness) Validate() error { return validateBindings(l.Kind(), l.bindings()) }

func (l *Lightness) Parameters() []Parameter { return describe(l.bindings()) }

func (l *Lightness) SetParameter(name string, v float64) error {
	return assign(l, l.bindings(), name, v)
}

func (l *Lightness) Clone() Effect {
	c := *l
	return &c
}

func (l *Lightness) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.At(x, y)
	h, s, light := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hsl()

	q := Quantize(float32(light), ditherOffset(x, y, l.ColorNum), l.ColorNum)
	out := colorful.Hsl(h, s, float64(q)).Clamped()

	return frame.Color{R: float32(out.R), G: float32(out.G), B: float32(out.B), A: c.A}
}
