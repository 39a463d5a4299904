package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrofx/pkg/frame"
)

func TestDefaultRegistryBuildsValidEffects(t *testing.T) {
	r := DefaultRegistry()
	require.Len(t, r.Kinds(), 11)

	src := frame.Filled(9, 7, frame.RGB(0.3, 0.6, 0.9))
	ctx := &Context{Time: 0.5}

	for _, kind := range r.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			e, err := r.New(kind)
			require.NoError(t, err)
			assert.Equal(t, kind, e.Kind())
			assert.NoError(t, e.Validate())

			out := Apply(ctx, e, src)
			assert.Equal(t, src.Width, out.Width)
			assert.Equal(t, src.Height, out.Height)

			for _, p := range e.Parameters() {
				assert.Equal(t, p.Default, p.Value, "default of %s", p.Name)
			}
		})
	}
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.New("nope")
	assert.ErrorIs(t, err, ErrUnknownEffect)
	assert.Nil(t, r.Lookup("nope"))

	assert.Error(t, r.Register("", func() Effect { return NewPixelize() }))
	assert.Error(t, r.Register(KindPixelize, nil))

	require.NoError(t, r.Register(KindPixelize, func() Effect { return NewPixelize() }))
	assert.ErrorIs(t, r.Register(KindPixelize, func() Effect { return NewPixelize() }), ErrDuplicateEffect)
	assert.Panics(t, func() {
		r.MustRegister(KindPixelize, func() Effect { return NewPixelize() })
	})
}

func TestSetParameter(t *testing.T) {
	crt := NewCathodeRayTube()

	require.NoError(t, crt.SetParameter("pixel_size", 8))
	assert.Equal(t, 8, crt.PixelSize)

	require.NoError(t, crt.SetParameter("blending", 0))
	assert.False(t, crt.Blending)

	require.NoError(t, crt.SetParameter("mask_intensity", 0.25))
	assert.InDelta(t, 0.25, crt.MaskIntensity, 1e-6)

	p, ok := FindParameter(crt, "pixel_size")
	require.True(t, ok)
	assert.Equal(t, 8.0, p.Value)
	assert.Equal(t, 4.0, p.Default)
	assert.Equal(t, []float64{4, 8, 16, 32}, p.Options)

	_, ok = FindParameter(crt, "curve")
	assert.False(t, ok)
}

func TestSetParameterRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		effect Effect
		param  string
		value  float64
		want   error
	}{
		{"single colour", NewColorQuantization(), "color_num", 1, ErrInvalidParameter},
		{"zero pixel size", NewPixelize(), "pixel_size", 0, ErrInvalidParameter},
		{"fractional pixel size", NewPixelize(), "pixel_size", 2.5, ErrInvalidParameter},
		{"matrix size 3", NewBayerDither(), "matrix_size", 3, ErrInvalidParameter},
		{"bias above one", NewBlueNoiseDither(), "bias", 1.5, ErrInvalidParameter},
		{"unknown name", NewRGBShift(), "speed", 1, ErrUnknownParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.effect.Parameters()
			err := tt.effect.SetParameter(tt.param, tt.value)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, tt.effect.Parameters(), "rejected value must not stick")
		})
	}
}

func TestValidateCatchesDirectFieldWrites(t *testing.T) {
	assert.ErrorIs(t, (&ColorQuantization{ColorNum: 1, PixelSize: 1}).Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, (&BayerDither{MatrixSize: 5, ColorNum: 2}).Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, (&Pixelize{PixelSize: -1}).Validate(), ErrInvalidParameter)
	assert.NoError(t, (&BayerDither{MatrixSize: 2, ColorNum: 2}).Validate())
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewCRTAnimated()
	c := orig.Clone().(*CRTAnimated)
	require.NoError(t, c.SetParameter("color_num", 4))

	assert.Equal(t, 16, orig.ColorNum)
	assert.Equal(t, 4, c.ColorNum)
}
