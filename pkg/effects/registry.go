package effects

import (
	"errors"
	"fmt"
	"sort"
)

// Factory returns a new effect with default parameters
type Factory func() Effect

// Registry maps effect kinds to their factories
type Registry struct {
	factories map[Kind]Factory
}

// ErrDuplicateEffect is returned when a kind is registered twice
var ErrDuplicateEffect = errors.New("duplicate effect kind")

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// DefaultRegistry returns a registry holding every built-in effect
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(KindPixelize, func() Effect { return NewPixelize() })
	r.MustRegister(KindBayerDither, func() Effect { return NewBayerDither() })
	r.MustRegister(KindBlueNoise, func() Effect { return NewBlueNoiseDither() })
	r.MustRegister(KindColorQuantization, func() Effect { return NewColorQuantization() })
	r.MustRegister(KindCRT, func() Effect { return NewCathodeRayTube() })
	r.MustRegister(KindCRTAnimated, func() Effect { return NewCRTAnimated() })
	r.MustRegister(KindRGBShift, func() Effect { return NewRGBShift() })
	r.MustRegister(KindPalette, func() Effect { return NewPalette() })
	r.MustRegister(KindLightness, func() Effect { return NewLightness() })
	r.MustRegister(KindASCII, func() Effect { return NewASCII() })
	r.MustRegister(KindLego, func() Effect { return NewLego() })
	return r
}

// Register adds a factory for the given kind
func (r *Registry) Register(kind Kind, factory Factory) error {
	if kind == "" {
		return errors.New("empty effect kind")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEffect, kind)
	}

	r.factories[kind] = factory

	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(kind Kind, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic("effects registry: " + err.Error())
	}
}

// Lookup returns the factory for the given kind, or nil
func (r *Registry) Lookup(kind Kind) Factory {
	return r.factories[kind]
}

// New builds a default-parameter effect of the given kind
func (r *Registry) New(kind Kind) (Effect, error) {
	factory := r.Lookup(kind)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, kind)
	}
	return factory(), nil
}

// Kinds lists the registered kinds in lexical order
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
