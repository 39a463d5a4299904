package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"retrofx/internal/util"
	"retrofx/pkg/effects"
)

// Config represents the main configuration
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Assets   AssetsConfig   `yaml:"assets"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
	Control  ControlConfig  `yaml:"control"`
	Render   RenderConfig   `yaml:"render"`
	Effects  []Descriptor   `yaml:"effects"`
}

// GraphicsConfig contains window and output resolution settings
type GraphicsConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FrameRate  int    `yaml:"framerate"` // 0 means uncapped
	Title      string `yaml:"title"`
}

// PipelineConfig contains compositor settings
type PipelineConfig struct {
	Workers int `yaml:"workers"` // 0 means one per CPU
}

// AssetsConfig points at the shared textures
type AssetsConfig struct {
	NoiseTexture   string `yaml:"noise_texture"` // empty means generate
	NoiseSize      int    `yaml:"noise_size"`
	NoiseSeed      int64  `yaml:"noise_seed"`
	PaletteTexture string `yaml:"palette_texture"`
}

// SceneConfig selects the frame source of the preview
type SceneConfig struct {
	Image string `yaml:"image"` // empty means the animated test scene
	Seed  int64  `yaml:"seed"`
	Stars int    `yaml:"stars"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ControlConfig contains the remote control server settings
type ControlConfig struct {
	Listen string `yaml:"listen"` // empty disables the server
	Watch  bool   `yaml:"watch"`  // reload effects when the config file changes
}

// RenderConfig contains batch render settings
type RenderConfig struct {
	Format      string  `yaml:"format"` // png, jpeg or bmp
	Resize      bool    `yaml:"resize"`
	Concurrency int     `yaml:"concurrency"`
	Time        float64 `yaml:"time"`
	OutDir      string  `yaml:"out_dir"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
			FrameRate:  60,
			Title:      "retrofx",
		},
		Pipeline: PipelineConfig{
			Workers: 0,
		},
		Assets: AssetsConfig{
			NoiseTexture:   "textures/128x128.png",
			NoiseSize:      64,
			NoiseSeed:      1,
			PaletteTexture: "textures/midnight-ablaze-8x.png",
		},
		Scene: SceneConfig{
			Seed:  42,
			Stars: 200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Control: ControlConfig{
			Listen: "",
			Watch:  false,
		},
		Render: RenderConfig{
			Format:      "png",
			Resize:      false,
			Concurrency: 4,
			Time:        0,
			OutDir:      "out",
		},
		Effects: DefaultEffects(),
	}
}

// DefaultEffects returns the demo chain: every effect in pass order with
// only Pixelize switched on.
func DefaultEffects() []Descriptor {
	order := []effects.Kind{
		effects.KindRGBShift,
		effects.KindBayerDither,
		effects.KindBlueNoise,
		effects.KindColorQuantization,
		effects.KindCRT,
		effects.KindCRTAnimated,
		effects.KindASCII,
		effects.KindLightness,
		effects.KindPalette,
		effects.KindLego,
		effects.KindPixelize,
	}

	ds := make([]Descriptor, 0, len(order))
	for _, kind := range order {
		e, err := Registry.New(kind)
		if err != nil {
			panic(err)
		}
		ds = append(ds, Descriptor{Enabled: kind == effects.KindPixelize, Effect: e})
	}
	return ds
}

// Validate checks the whole configuration, including every effect
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidSetting, c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.FrameRate < 0 {
		return fmt.Errorf("%w: framerate %d", ErrInvalidSetting, c.Graphics.FrameRate)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("%w: worker count %d", ErrInvalidSetting, c.Pipeline.Workers)
	}
	if c.Scene.Stars < 0 {
		return fmt.Errorf("%w: star count %d", ErrInvalidSetting, c.Scene.Stars)
	}
	if c.Assets.NoiseTexture == "" && c.Assets.NoiseSize <= 0 {
		return fmt.Errorf("%w: noise size %d", ErrInvalidSetting, c.Assets.NoiseSize)
	}
	if c.Render.Concurrency < 0 {
		return fmt.Errorf("%w: render concurrency %d", ErrInvalidSetting, c.Render.Concurrency)
	}
	switch strings.ToLower(c.Render.Format) {
	case "png", "jpg", "jpeg", "bmp":
	default:
		return fmt.Errorf("%w: unsupported render format %q", ErrInvalidSetting, c.Render.Format)
	}
	return ValidateDescriptors(c.Effects)
}

// LoadConfig loads the configuration from a file. The format follows the
// extension: .toml, .json, anything else is read as YAML. When the file is
// missing the defaults are returned along with the error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	path, err := util.ExpandPath(filePath)
	if err != nil {
		return config, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	config, err = ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// ParseConfig decodes data on top of the defaults and validates the result
func ParseConfig(data []byte, format string) (*Config, error) {
	config := DefaultConfig()

	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		var generic map[string]interface{}
		if err := toml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
		// Re-encode as YAML so descriptors decode through a single path
		converted, err := yaml.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("error converting config: %w", err)
		}
		data = converted
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := config.expandPaths(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Assets.NoiseTexture, &c.Assets.PaletteTexture, &c.Scene.Image, &c.Logging.File, &c.Render.OutDir} {
		expanded, err := util.ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// SaveConfig saves the configuration to a file in the format named by its extension
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml", ".json":
		var generic map[interface{}]interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("error serializing config: %w", err)
		}
		tree := stringKeys(generic)
		if strings.EqualFold(filepath.Ext(filePath), ".toml") {
			data, err = toml.Marshal(tree)
		} else {
			data, err = json.MarshalIndent(tree, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("error serializing config: %w", err)
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// stringKeys converts the map[interface{}]interface{} trees produced by
// yaml.v2 into string keyed maps that toml and json can encode.
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}

// ErrInvalidSetting is wrapped by every non-effect validation failure
var ErrInvalidSetting = errors.New("invalid setting")

// ErrDuplicateEffect is returned when the chain lists the same kind twice
var ErrDuplicateEffect = errors.New("duplicate effect in chain")

// ValidateDescriptors validates every effect and rejects repeated kinds
func ValidateDescriptors(ds []Descriptor) error {
	seen := make(map[effects.Kind]bool, len(ds))
	for i, d := range ds {
		if d.Effect == nil {
			return fmt.Errorf("effect %d: %w: missing type", i, effects.ErrUnknownEffect)
		}
		kind := d.Effect.Kind()
		if seen[kind] {
			return fmt.Errorf("%w: %s", ErrDuplicateEffect, kind)
		}
		seen[kind] = true
		if err := d.Effect.Validate(); err != nil {
			return fmt.Errorf("effect %s: %w", kind, err)
		}
	}
	return nil
}
