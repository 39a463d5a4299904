package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFractMatchesGLSL(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{1.25, 0.25},
		{-0.25, 0.75},
		{3, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Fract(tt.in), 1e-6, "Fract(%v)", tt.in)
	}
}

func TestModKeepsSignOfDivisor(t *testing.T) {
	assert.InDelta(t, 1, Mod(4, 3), 1e-6)
	assert.InDelta(t, 2, Mod(-1, 3), 1e-6)
	assert.InDelta(t, 0, Mod(6, 3), 1e-6)
}

func TestMixAndSmoothStep(t *testing.T) {
	assert.InDelta(t, 0.95, Mix(0.9, 1.0, 0.5), 1e-6)
	assert.Equal(t, float32(0), SmoothStep(0, 1, -1))
	assert.Equal(t, float32(1), SmoothStep(0, 1, 2))
	assert.InDelta(t, 0.5, SmoothStep(0, 1, 0.5), 1e-6)
}

func TestRotatePoint2D(t *testing.T) {
	x, y := RotatePoint2D(1, 0, 3.14159265/2)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)
}

func TestListFilesWithExt(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0755))

	files, err := ListFilesWithExt(dir, "png", ".jpg")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.JPG")}, files)
}

func TestExpandPath(t *testing.T) {
	p, err := ExpandPath("relative/file.png")
	require.NoError(t, err)
	assert.Equal(t, "relative/file.png", p)

	p, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestGetFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "frame", GetFileNameWithoutExt("/tmp/out/frame.png"))
	assert.Equal(t, "noext", GetFileNameWithoutExt("noext"))
}
