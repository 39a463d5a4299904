package effects

import (
	"github.com/chewxy/math32"

	"retrofx/internal/util"
	"retrofx/pkg/frame"
)

var bayer2 = [4]float32{
	0, 2,
	3, 1,
}

var bayer4 = [16]float32{
	0, 8, 2, 10,
	12, 4, 14, 6,
	3, 11, 1, 9,
	15, 7, 13, 5,
}

var bayer8 = [64]float32{
	0, 48, 12, 60, 3, 51, 15, 63,
	32, 16, 44, 28, 35, 19, 47, 31,
	8, 56, 4, 52, 11, 59, 7, 55,
	40, 24, 36, 20, 43, 27, 39, 23,
	2, 50, 14, 62, 1, 49, 13, 61,
	34, 18, 46, 30, 33, 17, 45, 29,
	10, 58, 6, 54, 9, 57, 5, 53,
	42, 26, 38, 22, 41, 25, 37, 21,
}

// ValidMatrixSize reports whether n is a supported Bayer matrix size
func ValidMatrixSize(n int) bool {
	return n == 2 || n == 4 || n == 8
}

// BayerThreshold returns M[y mod n][x mod n] normalised to [0,1) for n in
// {2, 4, 8}. Any other n yields 0.
func BayerThreshold(n, x, y int) float32 {
	// n is a power of two so masking also wraps negative coordinates
	switch n {
	case 2:
		return bayer2[(y&1)*2+(x&1)] / 4
	case 4:
		return bayer4[(y&3)*4+(x&3)] / 16
	case 8:
		return bayer8[(y&7)*8+(x&7)] / 64
	default:
		return 0
	}
}

// Quantize snaps c+offset to the nearest of levels evenly spaced values in
// [0,1]: clamp(floor((c+offset)*(levels-1)+0.5), 0, levels-1)/(levels-1).
// levels must be at least 2.
func Quantize(c, offset float32, levels int) float32 {
	steps := float32(levels - 1)
	v := math32.Floor((c+offset)*steps + 0.5)
	return util.Clamp(v, 0, steps) / steps
}

func quantizeRGB(c frame.Color, offset float32, levels int) frame.Color {
	c.R = Quantize(c.R, offset, levels)
	c.G = Quantize(c.G, offset, levels)
	c.B = Quantize(c.B, offset, levels)
	return c
}

// blockCenter maps pixel (x, y) to the centre of its pixelSize block in pixel space
func blockCenter(pixelSize, x, y int) (float32, float32) {
	ps := float32(pixelSize)
	fx := float32(x) + 0.5
	fy := float32(y) + 0.5
	return (math32.Floor(fx/ps) + 0.5) * ps, (math32.Floor(fy/ps) + 0.5) * ps
}

// fragCoord returns the pixel centre and normalised uv of (x, y)
func fragCoord(src *frame.Frame, x, y int) (fx, fy, u, v float32) {
	fx = float32(x) + 0.5
	fy = float32(y) + 0.5
	return fx, fy, fx / float32(src.Width), fy / float32(src.Height)
}
