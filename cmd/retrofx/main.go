package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"retrofx/internal/logger"
	"retrofx/internal/util"
	"retrofx/pkg/config"
	"retrofx/pkg/control"
	"retrofx/pkg/engine"
	"retrofx/pkg/frame"
	"retrofx/pkg/pipeline"
	"retrofx/pkg/scene"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

const usage = `usage: retrofx <command> [flags] [images...]

commands:
  preview   open the interactive preview window (default)
  render    apply the effect chain to image files
  init      write the default configuration file
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the exit code. Failures are
// returned rather than fatal so deferred cleanup always runs.
func run(args []string) int {
	cmd := "preview"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	logLevel := fs.String("log-level", "", "Override the configured log level")
	listen := fs.String("listen", "", "Override the control server address")
	elapsed := fs.Float64("time", -1, "Elapsed seconds for animated effects (render)")
	outDir := fs.String("out", "", "Output directory (render)")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if cmd == "init" {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("wrote %s\n", *configPath)
		return 0
	}

	cfg, cfgErr := loadConfig(*configPath)

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *listen != "" {
		cfg.Control.Listen = *listen
	}
	if *elapsed >= 0 {
		cfg.Render.Time = *elapsed
	}
	if *outDir != "" {
		cfg.Render.OutDir = *outDir
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logger.Close()

	if cfgErr != nil {
		logger.Warnf("%v", cfgErr)
	}

	settings := config.NewSettings(cfg.Effects)
	textures := pipeline.LoadTextures(cfg.Assets, logger)
	compositor := pipeline.NewCompositor(settings, textures, cfg.Pipeline.Workers, logger)
	defer compositor.Close()

	switch cmd {
	case "preview":
		if err := runPreview(cfg, *configPath, settings, compositor, logger); err != nil {
			logger.Errorf("Preview failed: %v", err)
			return 1
		}
	case "render":
		if err := runRender(cfg, compositor, fs.Args(), logger); err != nil {
			logger.Errorf("Render failed: %v", err)
			return 1
		}
	default:
		fs.Usage()
		return 2
	}
	return 0
}

// loadConfig reads the configuration file. A missing file falls back to the
// defaults; a broken one is fatal.
func loadConfig(path string) (*config.Config, error) {
	expanded, err := util.ExpandPath(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !util.FileExists(expanded) {
		return config.DefaultConfig(), fmt.Errorf("config %s not found, using defaults", path)
	}

	cfg, err := config.LoadConfig(expanded)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*logger.Logger, error) {
	if cfg.File == "" {
		return logger.NewLogger(cfg.Level), nil
	}
	return logger.NewMultiLogger(cfg.Level, cfg.File)
}

func runPreview(cfg *config.Config, configPath string, settings *config.Settings, compositor *pipeline.Compositor, logger *logger.Logger) error {
	var source scene.Source
	if cfg.Scene.Image != "" {
		img, err := scene.NewImageSource(cfg.Scene.Image)
		if err != nil {
			return fmt.Errorf("failed to open scene image: %w", err)
		}
		source = img
	} else {
		source = scene.NewProceduralSource(cfg.Scene)
	}

	if cfg.Control.Watch {
		watcher, err := config.WatchConfig(configPath, settings, logger, nil)
		if err != nil {
			logger.Warnf("config reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if cfg.Control.Listen != "" {
		server := control.NewServer(settings, logger)
		go func() {
			if err := server.ListenAndServe(cfg.Control.Listen); err != nil {
				logger.Errorf("%v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	game, err := engine.NewEngine(cfg, settings, compositor, source, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize preview: %w", err)
	}

	logger.Info("Engine initialized, starting preview loop...")
	game.Run()
	return nil
}

// runRender processes every input concurrently and stops at the first error
func runRender(cfg *config.Config, compositor *pipeline.Compositor, inputs []string, logger *logger.Logger) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input images")
	}
	if err := util.CreateDirIfNotExist(cfg.Render.OutDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	elapsed := time.Duration(cfg.Render.Time * float64(time.Second))
	ext := "." + strings.ToLower(cfg.Render.Format)

	g, ctx := errgroup.WithContext(context.Background())
	if cfg.Render.Concurrency > 0 {
		g.SetLimit(cfg.Render.Concurrency)
	}

	for _, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src, err := frame.Load(in)
			if err != nil {
				return err
			}
			if cfg.Render.Resize {
				src = src.Resize(cfg.Graphics.Width, cfg.Graphics.Height)
			}

			out, err := compositor.Render(src, elapsed)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			path := filepath.Join(cfg.Render.OutDir, util.GetFileNameWithoutExt(in)+ext)
			if err := out.Save(path); err != nil {
				return err
			}

			logger.Infof("rendered %s -> %s (%dx%d)", in, path, out.Width, out.Height)
			return nil
		})
	}

	return g.Wait()
}
