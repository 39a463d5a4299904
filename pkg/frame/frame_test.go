package frame

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *Frame {
	f := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, RGB(float32(x)/float32(w), float32(y)/float32(h), 0.5))
		}
	}
	return f
}

func TestNewAndValidate(t *testing.T) {
	f := New(3, 2)
	assert.Len(t, f.Pix, 24)
	assert.NoError(t, f.Validate())
	assert.False(t, f.Empty())

	f.Pix = f.Pix[:20]
	assert.Error(t, f.Validate())

	assert.True(t, New(0, 5).Empty())
	var nilFrame *Frame
	assert.True(t, nilFrame.Empty())
}

func TestSetAtFillClone(t *testing.T) {
	f := New(2, 2)
	f.Set(1, 0, Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4})
	assert.Equal(t, Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}, f.At(1, 0))

	c := f.Clone()
	c.Fill(RGB(1, 1, 1))
	assert.Equal(t, RGB(1, 1, 1), c.At(0, 1))
	assert.Equal(t, Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}, f.At(1, 0), "clone must not alias")
}

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 1.0, RGB(1, 1, 1).Luminance(), 1e-6)
	assert.InDelta(t, 0.5, RGB(0.5, 0.5, 0.5).Luminance(), 1e-6)
	assert.InDelta(t, 0.7152, RGB(0, 1, 0).Luminance(), 1e-6)
}

func TestSamplingClampsAndWraps(t *testing.T) {
	f := gradient(4, 4)

	assert.Equal(t, f.At(0, 0), f.SamplePixel(-3, -1))
	assert.Equal(t, f.At(3, 3), f.SamplePixel(10, 99))
	assert.Equal(t, f.At(2, 1), f.SamplePixel(2.9, 1.1))

	assert.Equal(t, f.At(2, 1), f.SampleUV(0.6, 0.3))
	assert.Equal(t, f.At(3, 3), f.SampleUV(1, 1))

	assert.Equal(t, f.At(1, 3), f.SampleRepeat(5, -1))
	assert.Equal(t, f.At(0, 0), f.SampleRepeat(8, 8))

	assert.Equal(t, Color{}, New(0, 0).SampleUV(0.5, 0.5))
}

func TestImageConversion(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(1, 0, color.NRGBA{R: 0, G: 0, B: 255, A: 0})

	f := FromImage(img)
	require.Equal(t, 2, f.Width)
	require.Equal(t, 1, f.Height)
	assert.Equal(t, RGB(1, 0, 0), f.At(0, 0))
	assert.Equal(t, Color{}, f.At(1, 0))

	out := f.ToNRGBA()
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, out.NRGBAAt(0, 0))
}

func TestToByteClamps(t *testing.T) {
	assert.Equal(t, uint8(0), toByte(-1))
	assert.Equal(t, uint8(255), toByte(3))
	assert.Equal(t, uint8(128), toByte(0.5))
}

func TestResize(t *testing.T) {
	f := Filled(4, 4, RGB(0, 1, 0))
	assert.Same(t, f, f.Resize(4, 4))

	r := f.Resize(8, 2)
	assert.Equal(t, 8, r.Width)
	assert.Equal(t, 2, r.Height)
	assert.Equal(t, RGB(0, 1, 0), r.At(7, 1))
}

func TestFromThresholds(t *testing.T) {
	f, err := FromThresholds([]float32{0.1, 0.2, 0.3, 0.4}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, f.At(1, 1).R, 1e-6)

	_, err = FromThresholds([]float32{0.1}, 2)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	f := Filled(3, 3, RGB(1, 0, 1))

	for _, name := range []string{"out.png", "out.bmp"} {
		path := filepath.Join(dir, name)
		require.NoError(t, f.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, f.Pix, loaded.Pix, name)
	}

	_, err := Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
