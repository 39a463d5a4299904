package effects

import "retrofx/pkg/frame"

// Pixelize replaces every PixelSize×PixelSize block with the colour at its centre
type Pixelize struct {
	PixelSize int `yaml:"pixel_size"`
}

// NewPixelize returns a Pixelize with the default 4 pixel blocks
func NewPixelize() *Pixelize {
	return &Pixelize{PixelSize: 4}
}

func (p *Pixelize) Kind() Kind { return KindPixelize }

func (p *Pixelize) bindings() []binding {
	return []binding{
		intParam("pixel_size", &p.PixelSize, 4, 1, 256, 2, 4, 8, 16),
	}
}

func (p *Pixelize) Validate() error { return validateBindings(p.Kind(), p.bindings()) }

func (p *Pixelize) Parameters() []Parameter { return describe(p.bindings()) }

func (p *Pixelize) SetParameter(name string, v float64) error {
	return assign(p, p.bindings(), name, v)
}

func (p *Pixelize) Clone() Effect {
	c := *p
	return &c
}

func (p *Pixelize) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	return src.SamplePixel(blockCenter(p.PixelSize, x, y))
}
