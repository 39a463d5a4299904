package effects

import (
	"fmt"

	"github.com/chewxy/math32"

	"retrofx/internal/util"
	"retrofx/pkg/frame"
)

// BayerDither is ordered dithering of the luminance against a Bayer matrix.
// With ColorNum 2 the output is black or white; larger values dither between
// ColorNum evenly spaced grey levels.
type BayerDither struct {
	MatrixSize int     `yaml:"matrix_size"`
	Bias       float32 `yaml:"bias"`
	ColorNum   int     `yaml:"color_num"`
}

// NewBayerDither returns the 8×8 two-level default
func NewBayerDither() *BayerDither {
	return &BayerDither{MatrixSize: 8, Bias: 0, ColorNum: 2}
}

func (d *BayerDither) Kind() Kind { return KindBayerDither }

func (d *BayerDither) bindings() []binding {
	return []binding{
		intParam("matrix_size", &d.MatrixSize, 8, 2, 8, 2, 4, 8),
		floatParam("bias", &d.Bias, 0, 0, 1),
		intParam("color_num", &d.ColorNum, 2, 2, 256, 2, 4, 8, 16),
	}
}

func (d *BayerDither) Validate() error {
	if err := validateBindings(d.Kind(), d.bindings()); err != nil {
		return err
	}
	if !ValidMatrixSize(d.MatrixSize) {
		return fmt.Errorf("%w: %s.matrix_size = %d, want 2, 4 or 8", ErrInvalidParameter, d.Kind(), d.MatrixSize)
	}
	return nil
}

func (d *BayerDither) Parameters() []Parameter { return describe(d.bindings()) }

func (d *BayerDither) SetParameter(name string, v float64) error {
	return assign(d, d.bindings(), name, v)
}

func (d *BayerDither) Clone() Effect {
	c := *d
	return &c
}

func (d *BayerDither) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.At(x, y)
	t := BayerThreshold(d.MatrixSize, x, y)

	steps := float32(d.ColorNum - 1)
	s := c.Luminance() * steps
	level := math32.Floor(s)
	if s-level >= t+d.Bias {
		level++
	}
	g := util.Clamp(level, 0, steps) / steps

	return frame.Color{R: g, G: g, B: g, A: c.A}
}

// BlueNoiseDither thresholds luminance against a tiling blue-noise texture.
// Without a noise texture every threshold is 0.
type BlueNoiseDither struct {
	Bias float32 `yaml:"bias"`
}

// NewBlueNoiseDither returns the zero-bias default
func NewBlueNoiseDither() *BlueNoiseDither {
	return &BlueNoiseDither{}
}

func (d *BlueNoiseDither) Kind() Kind { return KindBlueNoise }

func (d *BlueNoiseDither) bindings() []binding {
	return []binding{
		floatParam("bias", &d.Bias, 0, 0, 1),
	}
}

func (d *BlueNoiseDither) Validate() error { return validateBindings(d.Kind(), d.bindings()) }

func (d *BlueNoiseDither) Parameters() []Parameter { return describe(d.bindings()) }

func (d *BlueNoiseDither) SetParameter(name string, v float64) error {
	return assign(d, d.bindings(), name, v)
}

func (d *BlueNoiseDither) Clone() Effect {
	c := *d
	return &c
}

func (d *BlueNoiseDither) Shade(ctx *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.At(x, y)

	var t float32
	if ctx != nil && ctx.Noise != nil {
		t = ctx.Noise.SampleRepeat(x, y).R
	}

	if c.Luminance() < t+d.Bias {
		return frame.Color{A: c.A}
	}
	return frame.Color{R: 1, G: 1, B: 1, A: c.A}
}
