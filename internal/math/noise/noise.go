package noise

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
)

// Random is the classic shader hash: fract(sin(dot(p, (12.9898, 78.233))) * 43758.5453).
// Evaluated in float32 so results track what a GPU would produce.
func Random(x, y float32) float32 {
	v := math32.Sin(x*12.9898+y*78.233) * 43758.5453
	return v - math32.Floor(v)
}

// Value2D is smooth value noise over the Random lattice, in [0,1)
func Value2D(x, y float32) float32 {
	ix, iy := math32.Floor(x), math32.Floor(y)
	fx, fy := x-ix, y-iy

	a := Random(ix, iy)
	b := Random(ix+1, iy)
	c := Random(ix, iy+1)
	d := Random(ix+1, iy+1)

	// Cubic Hermite curve
	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	return a + (b-a)*ux + (c-a)*uy*(1-ux) + (d-b)*ux*uy
}

// NoiseGenerator produces seeded noise tiles
type NoiseGenerator struct {
	rng *rand.Rand
}

// NewNoiseGenerator creates a generator with a fixed seed
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{rng: rand.New(rand.NewSource(seed))}
}

// blueNoiseSigma is the width of the gaussian used to measure clustering
const blueNoiseSigma = 1.5

// BlueNoise builds a size×size tileable blue-noise threshold map using the
// void-and-cluster method. Values are (rank+0.5)/size², row-major, so every
// threshold appears exactly once.
func (ng *NoiseGenerator) BlueNoise(size int) []float32 {
	if size <= 0 {
		return nil
	}
	n := size * size

	kernel := toroidalKernel(size, blueNoiseSigma)
	field := &energyField{
		size:   size,
		kernel: kernel,
		energy: make([]float64, n),
		set:    make([]bool, n),
	}

	// Initial binary pattern: roughly a tenth of the pixels switched on.
	initial := n / 10
	if initial < 1 {
		initial = 1
	}
	for count := 0; count < initial; {
		p := ng.rng.Intn(n)
		if !field.set[p] {
			field.toggle(p)
			count++
		}
	}

	// Relax the pattern: move the tightest cluster into the largest void
	// until that move would put it back where it came from.
	for i := 0; i < n; i++ {
		cluster := field.tightestCluster()
		field.toggle(cluster)
		void := field.largestVoid()
		if void == cluster {
			field.toggle(cluster)
			break
		}
		field.toggle(void)
	}

	prototype := append([]bool(nil), field.set...)
	prototypeEnergy := append([]float64(nil), field.energy...)
	rank := make([]int, n)

	// Rank the initial points by removing clusters one by one.
	ones := 0
	for _, on := range field.set {
		if on {
			ones++
		}
	}
	for remaining := ones; remaining > 0; remaining-- {
		cluster := field.tightestCluster()
		field.toggle(cluster)
		rank[cluster] = remaining - 1
	}

	// Fill the remaining voids. Once past half coverage the tightest cluster of
	// zeros is the minimum energy zero, so the same search covers both phases.
	copy(field.set, prototype)
	copy(field.energy, prototypeEnergy)
	for filled := ones; filled < n; filled++ {
		void := field.largestVoid()
		field.toggle(void)
		rank[void] = filled
	}

	out := make([]float32, n)
	for i, r := range rank {
		out[i] = (float32(r) + 0.5) / float32(n)
	}
	return out
}

type energyField struct {
	size   int
	kernel []float64
	energy []float64
	set    []bool
}

// toggle flips pixel p and updates the energy of every pixel on the torus
func (f *energyField) toggle(p int) {
	sign := 1.0
	if f.set[p] {
		sign = -1.0
	}
	f.set[p] = !f.set[p]

	px, py := p%f.size, p/f.size
	for y := 0; y < f.size; y++ {
		dy := (y - py + f.size) % f.size
		row := y * f.size
		krow := dy * f.size
		for x := 0; x < f.size; x++ {
			dx := (x - px + f.size) % f.size
			f.energy[row+x] += sign * f.kernel[krow+dx]
		}
	}
}

func (f *energyField) tightestCluster() int {
	best, bestEnergy := -1, math.Inf(-1)
	for i, on := range f.set {
		if on && f.energy[i] > bestEnergy {
			best, bestEnergy = i, f.energy[i]
		}
	}
	return best
}

func (f *energyField) largestVoid() int {
	best, bestEnergy := -1, math.Inf(1)
	for i, on := range f.set {
		if !on && f.energy[i] < bestEnergy {
			best, bestEnergy = i, f.energy[i]
		}
	}
	return best
}

// toroidalKernel returns exp(-d²/2σ²) for every wrapped offset (dx, dy)
func toroidalKernel(size int, sigma float64) []float64 {
	k := make([]float64, size*size)
	for dy := 0; dy < size; dy++ {
		wy := float64(min(dy, size-dy))
		for dx := 0; dx < size; dx++ {
			wx := float64(min(dx, size-dx))
			k[dy*size+dx] = math.Exp(-(wx*wx + wy*wy) / (2 * sigma * sigma))
		}
	}
	return k
}
