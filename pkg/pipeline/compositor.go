// Package pipeline runs the configured effect chain over frames.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"retrofx/internal/logger"
	"retrofx/pkg/config"
	"retrofx/pkg/effects"
	"retrofx/pkg/frame"
)

// Compositor applies the enabled effects of the settings, in order, to
// every frame. It observes the settings and rebuilds its chain lazily on
// the next Render after a change.
type Compositor struct {
	settings    *config.Settings
	textures    Textures
	workers     int
	logger      *logger.Logger
	unsubscribe func()

	dirty atomic.Bool

	mu    sync.Mutex
	chain []effects.Effect
	err   error
}

// NewCompositor creates a compositor bound to settings. workers <= 0 uses
// one worker per CPU.
func NewCompositor(settings *config.Settings, textures Textures, workers int, log *logger.Logger) *Compositor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	c := &Compositor{
		settings: settings,
		textures: textures,
		workers:  workers,
		logger:   log,
	}
	c.dirty.Store(true)
	c.unsubscribe = settings.Subscribe(c)

	return c
}

// SettingsChanged marks the chain for rebuild
func (c *Compositor) SettingsChanged(config.Change) {
	c.dirty.Store(true)
}

// Close detaches the compositor from its settings
func (c *Compositor) Close() {
	c.unsubscribe()
}

// Err returns the error of the last rejected rebuild, or nil when the active
// chain matches the settings.
func (c *Compositor) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Chain lists the kinds of the active stages in order
func (c *Compositor) Chain() []effects.Kind {
	chain := c.activeChain()
	kinds := make([]effects.Kind, len(chain))
	for i, e := range chain {
		kinds[i] = e.Kind()
	}
	return kinds
}

func (c *Compositor) activeChain() []effects.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty.Swap(false) {
		c.rebuild()
	}
	return c.chain
}

// rebuild must be called with mu held
func (c *Compositor) rebuild() {
	snapshot := c.settings.Snapshot()
	if err := config.ValidateDescriptors(snapshot); err != nil {
		c.err = err
		if c.logger != nil {
			c.logger.Errorf("effect chain rejected, keeping previous chain: %v", err)
		}
		return
	}

	chain := make([]effects.Effect, 0, len(snapshot))
	for _, d := range snapshot {
		if d.Enabled {
			chain = append(chain, d.Effect)
		}
	}

	c.chain = chain
	c.err = nil
	if c.logger != nil {
		c.logger.Debugf("effect chain rebuilt with %d active stages", len(chain))
	}
}

// Render runs src through the active chain. Each stage writes a fresh frame
// of the same resolution; src is never modified.
func (c *Compositor) Render(src *frame.Frame, elapsed time.Duration) (*frame.Frame, error) {
	if src == nil {
		return nil, fmt.Errorf("render: nil frame")
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	chain := c.activeChain()
	ctx := &effects.Context{
		Time:    float32(elapsed.Seconds()),
		Noise:   c.textures.Noise,
		Palette: c.textures.Palette,
	}

	out := src.Clone()
	for _, e := range chain {
		out = c.applyStage(ctx, e, out)
	}

	return out, nil
}

// applyStage shades src into a new frame, splitting rows into bands across
// the workers.
func (c *Compositor) applyStage(ctx *effects.Context, e effects.Effect, src *frame.Frame) *frame.Frame {
	dst := frame.New(src.Width, src.Height)

	numWorkers := c.workers
	if numWorkers > src.Height {
		numWorkers = src.Height
	}
	if numWorkers <= 1 {
		effects.ApplyRows(ctx, e, src, dst, 0, src.Height)
		return dst
	}

	var wg sync.WaitGroup
	rowsPerWorker := src.Height / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if w == numWorkers-1 {
			endRow = src.Height
		}

		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			effects.ApplyRows(ctx, e, src, dst, startRow, endRow)
		}(startRow, endRow)
	}

	wg.Wait()
	return dst
}
