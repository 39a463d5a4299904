// Package effects implements the per-pixel retro filters. Every effect is a
// pure function of the source frame, the pixel coordinate, the shared
// textures and the elapsed time, so rows can be shaded in any order.
package effects

import (
	"errors"

	"retrofx/pkg/frame"
)

// Kind names an effect type. It is the tag used in config files and on the
// control socket.
type Kind string

// Effect kinds
const (
	KindPixelize          Kind = "pixelize"
	KindBayerDither       Kind = "bayer_dither"
	KindBlueNoise         Kind = "blue_noise"
	KindColorQuantization Kind = "color_quantization"
	KindCRT               Kind = "crt"
	KindCRTAnimated       Kind = "crt_animated"
	KindRGBShift          Kind = "rgb_shift"
	KindPalette           Kind = "palette"
	KindLightness         Kind = "lightness"
	KindASCII             Kind = "ascii"
	KindLego              Kind = "lego"
)

var (
	// ErrUnknownEffect is returned for a kind with no registered factory
	ErrUnknownEffect = errors.New("unknown effect")
	// ErrUnknownParameter is returned when an effect has no parameter of that name
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrInvalidParameter is returned when a parameter value is out of range
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Context carries the per-tick inputs shared by all stages
type Context struct {
	// Time is the elapsed time in seconds
	Time float32
	// Noise is the tiling blue-noise threshold texture, may be nil
	Noise *frame.Frame
	// Palette is the colour ramp texture, may be nil
	Palette *frame.Frame
}

// Effect is one stage of the post-processing chain
type Effect interface {
	Kind() Kind
	// Validate reports whether the current parameters can be rendered
	Validate() error
	// Shade computes the output colour of pixel (x, y). src is read-only.
	Shade(ctx *Context, src *frame.Frame, x, y int) frame.Color
	Parameters() []Parameter
	SetParameter(name string, value float64) error
	Clone() Effect
}

// Apply shades every pixel of src into a new frame on the calling goroutine
func Apply(ctx *Context, e Effect, src *frame.Frame) *frame.Frame {
	dst := frame.New(src.Width, src.Height)
	ApplyRows(ctx, e, src, dst, 0, src.Height)
	return dst
}

// ApplyRows shades rows [y0, y1) of src into dst. dst must have the same size.
func ApplyRows(ctx *Context, e Effect, src, dst *frame.Frame, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < src.Width; x++ {
			dst.Set(x, y, e.Shade(ctx, src, x, y))
		}
	}
}
