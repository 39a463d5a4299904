package effects

import (
	"github.com/chewxy/math32"

	"retrofx/internal/math/noise"
	"retrofx/internal/util"
	"retrofx/pkg/frame"
)

const (
	maskBorder    = 0.9
	crtDither     = 0.6
	crtSpread     = 0.0025
	crtShakeScale = 0.0025
)

// SubpixelMask returns the phosphor mask of the column at pixel-space x for
// the given cell size, before border attenuation. Exactly one channel is 2.
func SubpixelMask(px float32, pixelSize int) [3]float32 {
	var mask [3]float32
	sub := px / float32(pixelSize) * 3
	mask[int(util.Mod(math32.Floor(sub), 3))%3] = 2
	return mask
}

// crtGeometry computes the attenuated subpixel mask and the pixel-space
// origin of the staggered cell containing (px, py).
func crtGeometry(px, py float32, pixelSize int) (mask [3]float32, cellX, cellY float32) {
	ps := float32(pixelSize)
	cx, cy := px/ps, py/ps
	subX := cx * 3
	offY := util.Mod(math32.Floor(cx), 3) * 0.5

	mask = SubpixelMask(px, pixelSize)

	ux := util.Fract(subX)*2 - 1
	uy := util.Fract(cy+offY)*2 - 1
	border := (1 - ux*ux*maskBorder) * (1 - uy*uy*maskBorder)
	for i := range mask {
		mask[i] *= border
	}

	return mask, math32.Floor(cx) * ps, math32.Floor(cy+offY) * ps
}

func applyMask(c frame.Color, mask [3]float32, intensity float32, blending bool) frame.Color {
	if !blending {
		return c.Scale(mask[0], mask[1], mask[2])
	}
	return c.Scale(
		1+(mask[0]-1)*intensity,
		1+(mask[1]-1)*intensity,
		1+(mask[2]-1)*intensity,
	)
}

// CathodeRayTube emulates an aperture-grille display: staggered RGB phosphor
// cells, dithered colour depth reduction and a subpixel mask.
type CathodeRayTube struct {
	PixelSize     int     `yaml:"pixel_size"`
	ColorNum      int     `yaml:"color_num"`
	MaskIntensity float32 `yaml:"mask_intensity"`
	Blending      bool    `yaml:"blending"`
}

// NewCathodeRayTube returns the 4 pixel, 16 colour default
func NewCathodeRayTube() *CathodeRayTube {
	return &CathodeRayTube{PixelSize: 4, ColorNum: 16, MaskIntensity: 0.7, Blending: true}
}

func (c *CathodeRayTube) Kind() Kind { return KindCRT }

func (c *CathodeRayTube) bindings() []binding {
	return []binding{
		intParam("pixel_size", &c.PixelSize, 4, 1, 256, 4, 8, 16, 32),
		intParam("color_num", &c.ColorNum, 16, 2, 256, 2, 4, 8, 16),
		floatParam("mask_intensity", &c.MaskIntensity, 0.7, 0, 1),
		boolParam("blending", &c.Blending, true),
	}
}

func (c *CathodeRayTube) Validate() error { return validateBindings(c.Kind(), c.bindings()) }

func (c *CathodeRayTube) Parameters() []Parameter { return describe(c.bindings()) }

func (c *CathodeRayTube) SetParameter(name string, v float64) error {
	return assign(c, c.bindings(), name, v)
}

func (c *CathodeRayTube) Clone() Effect {
	cp := *c
	return &cp
}

func (c *CathodeRayTube) Shade(_ *Context, src *frame.Frame, x, y int) frame.Color {
	fx, fy, _, _ := fragCoord(src, x, y)
	mask, cellX, cellY := crtGeometry(fx, fy, c.PixelSize)

	col := src.SamplePixel(cellX, cellY)
	col = quantizeRGB(col, crtDither*BayerThreshold(8, int(cellX), int(cellY)), c.ColorNum)
	return applyMask(col, mask, c.MaskIntensity, c.Blending)
}

// CRTAnimated is the CRT effect with horizontal shake, RGB convergence error
// and rolling scanlines driven by the elapsed time.
type CRTAnimated struct {
	PixelSize     int     `yaml:"pixel_size"`
	ColorNum      int     `yaml:"color_num"`
	MaskIntensity float32 `yaml:"mask_intensity"`
	Blending      bool    `yaml:"blending"`
}

// NewCRTAnimated returns the 4 pixel, 16 colour default
func NewCRTAnimated() *CRTAnimated {
	return &CRTAnimated{PixelSize: 4, ColorNum: 16, MaskIntensity: 0.6, Blending: true}
}

func (c *CRTAnimated) Kind() Kind { return KindCRTAnimated }

func (c *CRTAnimated) bindings() []binding {
	return []binding{
		intParam("pixel_size", &c.PixelSize, 4, 1, 256, 4, 8, 16, 32),
		intParam("color_num", &c.ColorNum, 16, 2, 256, 2, 4, 8, 16),
		floatParam("mask_intensity", &c.MaskIntensity, 0.6, 0, 1),
		boolParam("blending", &c.Blending, true),
	}
}

func (c *CRTAnimated) Validate() error { return validateBindings(c.Kind(), c.bindings()) }

func (c *CRTAnimated) Parameters() []Parameter { return describe(c.bindings()) }

func (c *CRTAnimated) SetParameter(name string, v float64) error {
	return assign(c, c.bindings(), name, v)
}

func (c *CRTAnimated) Clone() Effect {
	cp := *c
	return &cp
}

// Shake returns the horizontal displacement in uv units of row v at time t
func Shake(v, t float32) float32 {
	s := v * math32.Sin(t*400) * 100
	return (noise.Value2D(s, s) - 0.5) * crtShakeScale
}

func (c *CRTAnimated) Shade(ctx *Context, src *frame.Frame, x, y int) frame.Color {
	var t float32
	if ctx != nil {
		t = ctx.Time
	}

	_, _, u, v := fragCoord(src, x, y)
	u += 1.5 * Shake(v, t)

	w, h := float32(src.Width), float32(src.Height)
	mask, cellX, cellY := crtGeometry(u*w, v*h, c.PixelSize)

	dx, dy := crtSpread*w, crtSpread*h
	col := frame.Color{
		R: src.SamplePixel(cellX+dx, cellY+dy).R,
		G: src.SamplePixel(cellX, cellY).G,
		B: src.SamplePixel(cellX-dx, cellY-dy).B,
		A: 1,
	}

	col = quantizeRGB(col, crtDither*BayerThreshold(8, int(cellX), int(cellY)), c.ColorNum)
	col = applyMask(col, mask, c.MaskIntensity, c.Blending)

	lines := util.Mix(0.9, 1.0, math32.Sin(v*2150+t*100))
	return col.Scale(lines, lines, lines)
}
