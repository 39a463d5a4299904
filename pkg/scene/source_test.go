package scene

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrofx/pkg/config"
	"retrofx/pkg/frame"
)

func TestProceduralSourceSize(t *testing.T) {
	s := NewProceduralSource(config.SceneConfig{Seed: 1, Stars: 50})

	f := s.Next(0, 80, 45)
	require.NotNil(t, f)
	assert.Equal(t, 80, f.Width)
	assert.Equal(t, 45, f.Height)
	assert.NoError(t, f.Validate())

	assert.Nil(t, s.Next(0, 0, 10))
	assert.Nil(t, s.Next(0, 10, -1))
}

func TestProceduralSourceWithoutStars(t *testing.T) {
	empty := NewProceduralSource(config.SceneConfig{Seed: 1}).Next(0, 32, 32)
	negative := NewProceduralSource(config.SceneConfig{Seed: 1, Stars: -1}).Next(0, 32, 32)
	require.NotNil(t, negative)
	assert.Equal(t, empty.Pix, negative.Pix)
}

func TestProceduralSourceIsDeterministic(t *testing.T) {
	cfg := config.SceneConfig{Seed: 7, Stars: 100}
	a := NewProceduralSource(cfg).Next(1500*time.Millisecond, 64, 48)
	b := NewProceduralSource(cfg).Next(1500*time.Millisecond, 64, 48)
	assert.Equal(t, a.Pix, b.Pix)

	c := NewProceduralSource(cfg).Next(2500*time.Millisecond, 64, 48)
	assert.NotEqual(t, a.Pix, c.Pix, "the disc rotates over time")

	other := NewProceduralSource(config.SceneConfig{Seed: 8, Stars: 100}).Next(1500*time.Millisecond, 64, 48)
	assert.NotEqual(t, a.Pix, other.Pix, "star layout follows the seed")
}

func TestProceduralSourceLayout(t *testing.T) {
	f := NewProceduralSource(config.SceneConfig{Seed: 1}).Next(0, 64, 64)

	assert.Equal(t, backgroundColor, f.At(1, 1))
	assert.Equal(t, gridColor, f.At(0, 5))
	assert.Equal(t, gridColor, f.At(5, 32))

	// the disc covers the centre and is opaque
	centre := f.At(33, 33)
	assert.NotEqual(t, backgroundColor, centre)
	assert.Equal(t, float32(1), centre.A)
}

func TestImageSource(t *testing.T) {
	img := frame.New(2, 2)
	img.Set(0, 0, frame.RGB(1, 0, 0))
	img.Set(1, 0, frame.RGB(0, 1, 0))
	img.Set(0, 1, frame.RGB(0, 0, 1))
	img.Set(1, 1, frame.RGB(1, 1, 1))

	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, img.Save(path))

	s, err := NewImageSource(path)
	require.NoError(t, err)

	f := s.Next(0, 4, 4)
	require.NotNil(t, f)
	assert.Equal(t, 4, f.Width)
	assert.Equal(t, frame.RGB(1, 0, 0), f.At(1, 1))
	assert.Equal(t, frame.RGB(1, 1, 1), f.At(3, 3))

	assert.Same(t, f, s.Next(time.Second, 4, 4), "scaled copy is cached")
	assert.Equal(t, 8, s.Next(0, 8, 2).Width)
	assert.Nil(t, s.Next(0, 0, 0))

	_, err = NewImageSource(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
