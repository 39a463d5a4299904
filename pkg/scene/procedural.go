package scene

import (
	"math/rand"
	"time"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/chewxy/math32"

	"retrofx/internal/math/noise"
	"retrofx/internal/util"
	"retrofx/pkg/config"
	"retrofx/pkg/frame"
)

// Scene colours
var (
	backgroundColor = frame.RGB(10.0/255, 10.0/255, 10.0/255)
	gridColor       = frame.RGB(0.16, 0.18, 0.22)
	stripeWarm      = frame.RGB(0.95, 0.55, 0.2)
	stripeCool      = frame.RGB(0.15, 0.6, 0.75)
	starColor       = frame.RGB(0.9, 0.92, 1)
)

const (
	gridSpacing   = 32
	discRadius    = 0.3 // fraction of the shorter side
	discStripes   = 8
	discSpeed     = 0.5 // radians per second
	twinkleSpeed  = 3
	starMinBright = 0.4
)

// star is a fixed point in normalized screen space
type star struct {
	x, y  float32
	phase float32
}

// ProceduralSource draws the animated test scene: a dark background with a
// grid, a rotating striped disc and twinkling stars. The layout depends only
// on the seed, so equal elapsed times give equal frames.
type ProceduralSource struct {
	stars []star
}

// NewProceduralSource creates the test scene from the scene config
func NewProceduralSource(cfg config.SceneConfig) *ProceduralSource {
	rng := rand.New(rand.NewSource(cfg.Seed))

	stars := make([]star, 0, max(cfg.Stars, 0))
	for i := 0; i < cfg.Stars; i++ {
		stars = append(stars, star{
			x:     rng.Float32(),
			y:     rng.Float32(),
			phase: rng.Float32() * 100,
		})
	}

	return &ProceduralSource{stars: stars}
}

// Next renders the scene at width×height
func (s *ProceduralSource) Next(elapsed time.Duration, width, height int) *frame.Frame {
	if width <= 0 || height <= 0 {
		return nil
	}

	t := float32(elapsed.Seconds())
	f := frame.New(width, height)

	cx, cy := float32(width)/2, float32(height)/2
	radius := discRadius * float32(min(width, height))
	angle := t * discSpeed

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				f.Set(x, y, shadeBackground(x, y))

				dx, dy := float32(x)+0.5-cx, float32(y)+0.5-cy
				d := math32.Sqrt(dx*dx + dy*dy)
				if d >= radius {
					continue
				}

				rx, ry := util.RotatePoint2D(dx, dy, -angle)
				c := stripeCool
				if math32.Sin(discStripes*math32.Atan2(ry, rx)) > 0 {
					c = stripeWarm
				}

				// darken towards the rim, antialias the edge
				shade := util.Mix(1, 0.55, d/radius)
				edge := 1 - util.SmoothStep(radius-1, radius, d)
				f.Set(x, y, mixColor(f.At(x, y), c.Scale(shade, shade, shade), edge))
			}
		}
	})

	for _, st := range s.stars {
		x := min(int(st.x*float32(width)), width-1)
		y := min(int(st.y*float32(height)), height-1)
		b := starMinBright + (1-starMinBright)*noise.Value2D(st.phase, t*twinkleSpeed)
		f.Set(x, y, mixColor(f.At(x, y), starColor, b))
	}

	return f
}

func shadeBackground(x, y int) frame.Color {
	if x%gridSpacing == 0 || y%gridSpacing == 0 {
		return gridColor
	}
	return backgroundColor
}

func mixColor(a, b frame.Color, t float32) frame.Color {
	return frame.Color{
		R: util.Mix(a.R, b.R, t),
		G: util.Mix(a.G, b.G, t),
		B: util.Mix(a.B, b.B, t),
		A: 1,
	}
}
