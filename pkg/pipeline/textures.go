package pipeline

import (
	"retrofx/internal/logger"
	"retrofx/internal/math/noise"
	"retrofx/internal/util"
	"retrofx/pkg/config"
	"retrofx/pkg/frame"
)

// Textures are the read-only lookup images shared by every stage
type Textures struct {
	Noise   *frame.Frame
	Palette *frame.Frame
}

// LoadTextures loads the noise and palette images named in cfg. An empty
// noise path generates a blue-noise tile instead. Missing files are logged
// and leave the texture nil; the effects render as if it were black.
func LoadTextures(cfg config.AssetsConfig, log *logger.Logger) Textures {
	var t Textures

	if cfg.NoiseTexture == "" {
		t.Noise = GenerateNoise(cfg.NoiseSize, cfg.NoiseSeed)
		log.Debugf("generated %dx%d blue-noise tile (seed %d)", cfg.NoiseSize, cfg.NoiseSize, cfg.NoiseSeed)
	} else {
		t.Noise = loadTexture("noise", cfg.NoiseTexture, log)
	}

	t.Palette = loadTexture("palette", cfg.PaletteTexture, log)

	return t
}

// GenerateNoise builds a size×size blue-noise threshold frame
func GenerateNoise(size int, seed int64) *frame.Frame {
	values := noise.NewNoiseGenerator(seed).BlueNoise(size)
	f, err := frame.FromThresholds(values, size)
	if err != nil {
		return nil
	}
	return f
}

func loadTexture(name, path string, log *logger.Logger) *frame.Frame {
	if path == "" {
		return nil
	}
	if !util.FileExists(path) {
		log.Warnf("%s texture %s not found, continuing without it", name, path)
		return nil
	}

	f, err := frame.Load(path)
	if err != nil {
		log.Warnf("%s texture unusable, continuing without it: %v", name, err)
		return nil
	}

	log.Debugf("loaded %s texture %s (%dx%d)", name, path, f.Width, f.Height)
	return f
}
