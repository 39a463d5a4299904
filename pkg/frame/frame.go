// Package frame holds the float RGBA pixel grids that flow through the effect chain.
package frame

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Color is a linear RGBA colour with components nominally in [0,1]
type Color struct {
	R, G, B, A float32
}

// RGB returns a fully opaque colour
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Luma weights for relative luminance
const (
	LumaR float32 = 0.2126
	LumaG float32 = 0.7152
	LumaB float32 = 0.0722
)

// Luminance returns dot((0.2126, 0.7152, 0.0722), rgb). The conversions
// keep the products from being fused so results match on every platform.
func (c Color) Luminance() float32 {
	return float32(LumaR*c.R) + float32(LumaG*c.G) + float32(LumaB*c.B)
}

// Scale multiplies the RGB channels, leaving alpha alone
func (c Color) Scale(r, g, b float32) Color {
	return Color{R: c.R * r, G: c.G * g, B: c.B * b, A: c.A}
}

// Frame is a Width×Height grid of RGBA float32 pixels, row-major, origin top-left
type Frame struct {
	Width  int
	Height int
	Pix    []float32
}

// New allocates a transparent black frame
func New(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// Filled allocates a frame where every pixel is c
func Filled(width, height int, c Color) *Frame {
	f := New(width, height)
	f.Fill(c)
	return f
}

// Empty reports whether the frame has no pixels
func (f *Frame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0
}

// SameSize reports whether both frames have the same resolution
func (f *Frame) SameSize(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height
}

func (f *Frame) offset(x, y int) int {
	return (y*f.Width + x) * 4
}

// At returns the pixel at (x, y). Coordinates must be in bounds.
func (f *Frame) At(x, y int) Color {
	i := f.offset(x, y)
	p := f.Pix[i : i+4 : i+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set writes the pixel at (x, y). Coordinates must be in bounds.
func (f *Frame) Set(x, y int, c Color) {
	i := f.offset(x, y)
	p := f.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c
func (f *Frame) Fill(c Color) {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Clone returns a deep copy
func (f *Frame) Clone() *Frame {
	out := &Frame{Width: f.Width, Height: f.Height, Pix: make([]float32, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}

// Validate checks that the pixel buffer matches the declared size
func (f *Frame) Validate() error {
	if f.Width < 0 || f.Height < 0 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	if len(f.Pix) != f.Width*f.Height*4 {
		return fmt.Errorf("frame %dx%d has %d components, want %d", f.Width, f.Height, len(f.Pix), f.Width*f.Height*4)
	}
	return nil
}

// SamplePixel returns the pixel containing the pixel-space point (px, py),
// clamped to the frame edge.
func (f *Frame) SamplePixel(px, py float32) Color {
	if f.Empty() {
		return Color{}
	}
	x := clampInt(int(math32.Floor(px)), 0, f.Width-1)
	y := clampInt(int(math32.Floor(py)), 0, f.Height-1)
	return f.At(x, y)
}

// SampleUV is a nearest-neighbour lookup at normalised coordinates,
// clamped to the edge.
func (f *Frame) SampleUV(u, v float32) Color {
	if f.Empty() {
		return Color{}
	}
	return f.SamplePixel(u*float32(f.Width), v*float32(f.Height))
}

// SampleRepeat returns the pixel at (x mod Width, y mod Height), used for
// tiling textures such as the blue-noise thresholds.
func (f *Frame) SampleRepeat(x, y int) Color {
	if f.Empty() {
		return Color{}
	}
	return f.At(wrapInt(x, f.Width), wrapInt(y, f.Height))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
