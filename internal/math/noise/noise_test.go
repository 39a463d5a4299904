package noise

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIsDeterministicAndInRange(t *testing.T) {
	for _, p := range [][2]float32{{0, 0}, {1, 2}, {123.5, -7.25}, {1e3, 1e3}} {
		a := Random(p[0], p[1])
		b := Random(p[0], p[1])
		assert.Equal(t, a, b)
		assert.GreaterOrEqual(t, a, float32(0))
		assert.Less(t, a, float32(1))
	}
}

func TestValue2DInterpolatesLatticeCorners(t *testing.T) {
	// On integer lattice points value noise equals the hash of that point.
	for _, p := range [][2]float32{{0, 0}, {3, 4}, {-2, 5}} {
		assert.InDelta(t, Random(p[0], p[1]), Value2D(p[0], p[1]), 1e-6)
	}

	v := Value2D(0.5, 0.5)
	assert.GreaterOrEqual(t, v, float32(0))
	assert.LessOrEqual(t, v, float32(1))
}

func TestBlueNoiseIsRankPermutation(t *testing.T) {
	const size = 16
	tile := NewNoiseGenerator(7).BlueNoise(size)
	require.Len(t, tile, size*size)

	sorted := append([]float32(nil), tile...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := float32(size * size)
	for i, v := range sorted {
		assert.InDelta(t, (float32(i)+0.5)/n, v, 1e-6)
	}
}

func TestBlueNoiseIsDeterministicPerSeed(t *testing.T) {
	a := NewNoiseGenerator(42).BlueNoise(8)
	b := NewNoiseGenerator(42).BlueNoise(8)
	assert.Equal(t, a, b)
}

func TestToroidalKernelWraps(t *testing.T) {
	k := toroidalKernel(8, blueNoiseSigma)
	assert.InDelta(t, 1.0, k[0], 1e-12)
	// Offsets 1 and size-1 are the same distance on a torus.
	assert.InDelta(t, k[1], k[7], 1e-12)
	assert.InDelta(t, k[8], k[7*8], 1e-12)
	assert.Greater(t, k[1], k[2])
}

func TestBlueNoiseEmptyForInvalidSize(t *testing.T) {
	assert.Nil(t, NewNoiseGenerator(1).BlueNoise(0))
}
