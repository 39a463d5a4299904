// Package scene provides the frames fed into the effect chain.
package scene

import (
	"fmt"
	"sync"
	"time"

	"retrofx/pkg/frame"
)

// Source produces the input frame for a tick. Returned frames are read-only
// for the caller and may be reused by the source on later calls. A
// non-positive size yields nil.
type Source interface {
	Next(elapsed time.Duration, width, height int) *frame.Frame
}

// ImageSource serves a static image scaled to the requested resolution
type ImageSource struct {
	image *frame.Frame

	mu     sync.Mutex
	scaled *frame.Frame
}

// NewImageSource loads the image at path
func NewImageSource(path string) (*ImageSource, error) {
	f, err := frame.Load(path)
	if err != nil {
		return nil, fmt.Errorf("image source: %w", err)
	}
	return &ImageSource{image: f}, nil
}

// NewImageSourceFromFrame wraps an already decoded frame
func NewImageSourceFromFrame(f *frame.Frame) *ImageSource {
	return &ImageSource{image: f}
}

// Next returns the image at width×height. The scaled copy is cached until
// the resolution changes.
func (s *ImageSource) Next(_ time.Duration, width, height int) *frame.Frame {
	if width <= 0 || height <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scaled == nil || s.scaled.Width != width || s.scaled.Height != height {
		s.scaled = s.image.Resize(width, height)
	}
	return s.scaled
}
