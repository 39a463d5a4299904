// Package engine runs the interactive preview window.
package engine

import (
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"retrofx/internal/logger"
	"retrofx/pkg/config"
	"retrofx/pkg/control"
	"retrofx/pkg/pipeline"
	"retrofx/pkg/scene"
)

// Engine drives the tick loop: source frame, effect chain, presentation
type Engine struct {
	window     *glfw.Window
	config     *config.Config
	logger     *logger.Logger
	settings   *config.Settings
	source     scene.Source
	compositor *pipeline.Compositor
	renderer   *OpenGLRenderer
	input      *InputHandler
	isRunning  bool
	startTime  time.Time
	frameRate  int

	// render resolution, follows the framebuffer size
	width  int
	height int
}

// NewEngine opens the preview window. It must be called from the main OS thread.
func NewEngine(cfg *config.Config, settings *config.Settings, compositor *pipeline.Compositor, source scene.Source, log *logger.Logger) (*Engine, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Graphics.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, cfg.Graphics.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v", err)
	}

	window.MakeContextCurrent()
	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	renderer, err := NewOpenGLRenderer()
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize renderer: %v", err)
	}

	width, height := window.GetFramebufferSize()

	engine := &Engine{
		window:     window,
		config:     cfg,
		logger:     log,
		settings:   settings,
		source:     source,
		compositor: compositor,
		renderer:   renderer,
		input:      NewInputHandler(window, DefaultBindings()),
		frameRate:  cfg.Graphics.FrameRate,
		width:      width,
		height:     height,
	}

	window.SetFramebufferSizeCallback(engine.resizeCallback)

	return engine, nil
}

// Run starts the main loop and returns when the window is closed
func (e *Engine) Run() {
	e.isRunning = true
	e.startTime = time.Now()

	e.logger.Infof("preview running at %dx%d, effects: %v", e.width, e.height, e.compositor.Chain())

	for e.isRunning && !e.window.ShouldClose() {
		frameStart := time.Now()

		e.processInput()
		e.render(frameStart.Sub(e.startTime))

		e.window.SwapBuffers()
		glfw.PollEvents()

		// Cap the frame rate
		if e.frameRate > 0 {
			frameTime := time.Since(frameStart)
			targetFrameTime := time.Second / time.Duration(e.frameRate)
			if frameTime < targetFrameTime {
				time.Sleep(targetFrameTime - frameTime)
			}
		}
	}

	e.cleanup()
}

// processInput applies the actions of this frame's key presses
func (e *Engine) processInput() {
	e.input.Update()

	for _, action := range e.input.Actions() {
		quit, err := control.Apply(e.settings, action)
		if err != nil {
			e.logger.Warnf("key action rejected: %v", err)
			continue
		}
		if quit {
			e.isRunning = false
		}
	}
}

// render composites and presents one frame
func (e *Engine) render(elapsed time.Duration) {
	src := e.source.Next(elapsed, e.width, e.height)
	if src == nil {
		e.renderer.Render(nil, e.width, e.height)
		return
	}

	out, err := e.compositor.Render(src, elapsed)
	if err != nil {
		e.logger.Errorf("render failed: %v", err)
		out = src
	}

	e.renderer.Render(out, e.width, e.height)
}

func (e *Engine) resizeCallback(_ *glfw.Window, width int, height int) {
	e.logger.Debugf("window resized to %dx%d", width, height)
	e.width = width
	e.height = height
}

// cleanup performs necessary cleanup before exiting
func (e *Engine) cleanup() {
	e.logger.Info("shutting down preview")
	e.renderer.Close()
	e.window.Destroy()
	glfw.Terminate()
}
