package effects

import "retrofx/pkg/frame"

// ColorQuantization samples the block centre like Pixelize, then reduces each
// RGB channel to ColorNum levels with an 8×8 Bayer offset.
type ColorQuantization struct {
	ColorNum  int     `yaml:"color_num"`
	PixelSize int     `yaml:"pixel_size"`
	Bias      float32 `yaml:"bias"`
	Strength  float32 `yaml:"strength"`
}

// NewColorQuantization returns the two-colour, unpixelated default
func NewColorQuantization() *ColorQuantization {
	return &ColorQuantization{ColorNum: 2, PixelSize: 1, Bias: 0.88, Strength: 1}
}

func (q *ColorQuantization) Kind() Kind { return KindColorQuantization }

func (q *ColorQuantization) bindings() []binding {
	return []binding{
		intParam("color_num", &q.ColorNum, 2, 2, 256, 2, 4, 8, 16),
		intParam("pixel_size", &q.PixelSize, 1, 1, 256, 1, 2, 4, 8, 16),
		floatParam("bias", &q.Bias, 0.88, 0, 1),
		floatParam("strength", &q.Strength, 1, 0, 2),
	}
}

func (q *ColorQuantization) Validate() error { return validateBindings(q.Kind(), q.bindings()) }

func (q *ColorQuantization) Parameters() []Parameter { return describe(q.bindings()) }

func (q *ColorQuantization) SetParameter(name string, v float64) error {
	return assign(q, q.bindings(), name, v)
}

func (q *ColorQuantization) Clone() Effect {
	c := *q
	return &c
}

func (q *ColorQuantization) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	c := src.SamplePixel(blockCenter(q.PixelSize, x, y))
	offset := q.Strength*BayerThreshold(8, x, y) - q.Bias
	return quantizeRGB(c, offset, q.ColorNum)
}
