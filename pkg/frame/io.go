package frame

import (
	"fmt"
	"image"
	_ "image/gif"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/parallel"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FromImage converts any decoded image into a frame with straight alpha
func FromImage(img image.Image) *Frame {
	rgba := clone.AsShallowRGBA(img)
	b := rgba.Bounds()
	f := New(b.Dx(), b.Dy())

	parallel.Line(f.Height, func(start, end int) {
		for y := start; y < end; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+f.Width*4]
			dst := f.Pix[y*f.Width*4 : (y+1)*f.Width*4]
			for i := 0; i < len(src); i += 4 {
				a := src[i+3]
				if a == 0 {
					dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
					continue
				}
				// image.RGBA is premultiplied
				af := float32(a)
				dst[i] = float32(src[i]) / af
				dst[i+1] = float32(src[i+1]) / af
				dst[i+2] = float32(src[i+2]) / af
				dst[i+3] = af / 255
			}
		}
	})

	return f
}

// ToNRGBA quantizes the frame to 8-bit straight-alpha pixels
func (f *Frame) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))

	parallel.Line(f.Height, func(start, end int) {
		for y := start; y < end; y++ {
			src := f.Pix[y*f.Width*4 : (y+1)*f.Width*4]
			dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
			for i, v := range src {
				dst[i] = toByte(v)
			}
		}
	})

	return img
}

func toByte(v float32) uint8 {
	switch {
	case v != v, v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// Resize returns a copy scaled to width×height with nearest-neighbour sampling.
// The original frame is returned unchanged when the size already matches.
func (f *Frame) Resize(width, height int) *Frame {
	if f.Width == width && f.Height == height {
		return f
	}
	if width <= 0 || height <= 0 || f.Empty() {
		return New(width, height)
	}

	src := f.ToNRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return FromImage(dst)
}

// FromThresholds builds a square greyscale frame from a row-major threshold tile
func FromThresholds(values []float32, size int) (*Frame, error) {
	if size <= 0 || len(values) != size*size {
		return nil, fmt.Errorf("threshold tile has %d values, want %d", len(values), size*size)
	}
	f := New(size, size)
	for i, v := range values {
		f.Pix[i*4], f.Pix[i*4+1], f.Pix[i*4+2], f.Pix[i*4+3] = v, v, v, 1
	}
	return f, nil
}

// Load decodes an image file (png, jpeg, gif, bmp, tiff, webp) into a frame
func Load(path string) (*Frame, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Encoder picks an encoder from a format name or file extension.
// Unknown formats fall back to PNG.
func Encoder(format string) imgio.Encoder {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "jpg", "jpeg":
		return imgio.JPEGEncoder(95)
	case "bmp":
		return imgio.BMPEncoder()
	default:
		return imgio.PNGEncoder()
	}
}

// Save writes the frame to path, choosing the encoder from the extension
func (f *Frame) Save(path string) error {
	if err := imgio.Save(path, f.ToNRGBA(), Encoder(filepath.Ext(path))); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
