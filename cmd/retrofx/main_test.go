package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrofx/internal/logger"
	"retrofx/internal/util"
	"retrofx/pkg/config"
	"retrofx/pkg/frame"
)

func quietLogger() *logger.Logger {
	log := logger.NewLogger("error")
	log.SetOutput(io.Discard)
	return log
}

func TestRunPreviewReturnsSceneError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene.Image = filepath.Join(t.TempDir(), "missing.png")
	settings := config.NewSettings(cfg.Effects)

	err := runPreview(cfg, "", settings, nil, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open scene image")
}

func TestRunRenderWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.png")
	require.NoError(t, frame.Filled(8, 6, frame.RGB(0.2, 0.6, 0.9)).Save(in))

	outDir := filepath.Join(dir, "out")
	code := run([]string{"render", "-config", filepath.Join(dir, "missing.yaml"), "-log-level", "error", "-out", outDir, in})
	require.Equal(t, 0, code)

	out, err := frame.Load(filepath.Join(outDir, "input.png"))
	require.NoError(t, err)
	assert.Equal(t, 8, out.Width)
	assert.Equal(t, 6, out.Height)
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")

	assert.Equal(t, 1, run([]string{"render", "-config", cfgPath, "-log-level", "error", "-out", dir}), "no inputs")
	assert.Equal(t, 1, run([]string{"render", "-config", cfgPath, "-log-level", "error", "-out", dir, filepath.Join(dir, "nope.png")}))
	assert.Equal(t, 2, run([]string{"explode", "-config", cfgPath, "-log-level", "error"}))
	assert.False(t, util.FileExists(filepath.Join(dir, "nope.png")))
}
