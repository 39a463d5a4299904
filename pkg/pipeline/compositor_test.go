package pipeline

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrofx/internal/logger"
	"retrofx/pkg/config"
	"retrofx/pkg/effects"
	"retrofx/pkg/frame"
)

func quietLogger() *logger.Logger {
	l := logger.NewLogger("debug")
	l.SetOutput(io.Discard)
	return l
}

func testFrame(w, h int) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, frame.RGB(float32(x)/float32(w), float32(y)/float32(h), float32((x*y)%5)/4))
		}
	}
	return f
}

func TestEmptyChainReturnsCopy(t *testing.T) {
	s := config.NewSettings(nil)
	c := NewCompositor(s, Textures{}, 4, quietLogger())
	defer c.Close()

	src := testFrame(8, 8)
	out, err := c.Render(src, 0)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)
	assert.NotSame(t, src, out)
}

func TestStagesRunInOrder(t *testing.T) {
	pix := effects.NewPixelize()
	dither := effects.NewBayerDither()
	s := config.NewSettings([]config.Descriptor{
		{Enabled: true, Effect: pix},
		{Enabled: false, Effect: effects.NewCathodeRayTube()},
		{Enabled: true, Effect: dither},
	})
	c := NewCompositor(s, Textures{}, 3, quietLogger())
	defer c.Close()

	assert.Equal(t, []effects.Kind{effects.KindPixelize, effects.KindBayerDither}, c.Chain())

	src := testFrame(21, 13)
	out, err := c.Render(src, time.Second)
	require.NoError(t, err)

	want := effects.Apply(&effects.Context{}, dither, effects.Apply(&effects.Context{}, pix, src))
	assert.Equal(t, want.Pix, out.Pix)
	assert.Equal(t, src.Width, out.Width)
	assert.Equal(t, src.Height, out.Height)
}

func TestParallelMatchesSerial(t *testing.T) {
	crt := effects.NewCRTAnimated()
	s := config.NewSettings([]config.Descriptor{{Enabled: true, Effect: crt}})
	src := testFrame(37, 29)
	elapsed := 1500 * time.Millisecond

	for _, workers := range []int{1, 2, 7, 64} {
		c := NewCompositor(s, Textures{}, workers, quietLogger())
		out, err := c.Render(src, elapsed)
		require.NoError(t, err)

		want := effects.Apply(&effects.Context{Time: 1.5}, crt, src)
		assert.Equal(t, want.Pix, out.Pix, "workers=%d", workers)
		c.Close()
	}
}

func TestSettingsChangesApplyOnNextRender(t *testing.T) {
	s := config.NewSettings(config.DefaultEffects())
	c := NewCompositor(s, Textures{}, 2, quietLogger())
	defer c.Close()

	assert.Equal(t, []effects.Kind{effects.KindPixelize}, c.Chain())

	require.NoError(t, s.Select(effects.KindCRT))
	require.NoError(t, s.SetEnabled(effects.KindRGBShift, true))
	assert.Equal(t, []effects.Kind{effects.KindRGBShift, effects.KindCRT, effects.KindPixelize}, c.Chain())

	require.NoError(t, s.Select(config.KindNone))
	require.NoError(t, s.SetEnabled(effects.KindPixelize, false))
	require.NoError(t, s.SetEnabled(effects.KindRGBShift, false))
	assert.Empty(t, c.Chain())
}

// brokenEffect validates only until switched off
type brokenEffect struct {
	effects.Pixelize
	invalid *bool
}

func (b *brokenEffect) Validate() error {
	if *b.invalid {
		return effects.ErrInvalidParameter
	}
	return nil
}

func (b *brokenEffect) Clone() effects.Effect {
	cp := *b
	return &cp
}

func TestInvalidChainKeepsPrevious(t *testing.T) {
	invalid := false
	s := config.NewSettings([]config.Descriptor{
		{Enabled: true, Effect: &brokenEffect{Pixelize: effects.Pixelize{PixelSize: 2}, invalid: &invalid}},
	})

	var buf bytes.Buffer
	log := logger.NewLogger("debug")
	log.SetOutput(&buf)
	log.EnableColors(false)

	c := NewCompositor(s, Textures{}, 2, log)
	defer c.Close()
	require.Len(t, c.Chain(), 1)
	require.NoError(t, c.Err())

	invalid = true
	require.NoError(t, s.SetEnabled(effects.KindPixelize, true))

	assert.Len(t, c.Chain(), 1, "previous chain stays active")
	assert.ErrorIs(t, c.Err(), effects.ErrInvalidParameter)
	assert.Contains(t, buf.String(), "effect chain rejected")

	invalid = false
	require.NoError(t, s.SetEnabled(effects.KindPixelize, false))
	assert.Empty(t, c.Chain())
	assert.NoError(t, c.Err())
}

func TestRenderRejectsBadFrames(t *testing.T) {
	c := NewCompositor(config.NewSettings(nil), Textures{}, 1, quietLogger())
	defer c.Close()

	_, err := c.Render(nil, 0)
	assert.Error(t, err)

	_, err = c.Render(&frame.Frame{Width: 2, Height: 2, Pix: make([]float32, 3)}, 0)
	assert.Error(t, err)
}

func TestLoadTextures(t *testing.T) {
	dir := t.TempDir()
	palettePath := filepath.Join(dir, "palette.png")
	require.NoError(t, frame.Filled(8, 1, frame.RGB(1, 0, 0)).Save(palettePath))

	tex := LoadTextures(config.AssetsConfig{NoiseSize: 8, NoiseSeed: 3, PaletteTexture: palettePath}, quietLogger())
	require.NotNil(t, tex.Noise)
	assert.Equal(t, 8, tex.Noise.Width)
	require.NotNil(t, tex.Palette)
	assert.Equal(t, frame.RGB(1, 0, 0), tex.Palette.At(7, 0))

	var buf bytes.Buffer
	log := logger.NewLogger("warn")
	log.SetOutput(&buf)
	missing := LoadTextures(config.AssetsConfig{NoiseTexture: filepath.Join(dir, "nope.png"), PaletteTexture: filepath.Join(dir, "nope2.png")}, log)
	assert.Nil(t, missing.Noise)
	assert.Nil(t, missing.Palette)
	assert.Contains(t, buf.String(), "not found")
}
