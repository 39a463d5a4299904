package effects

import (
	"fmt"
	"math"
)

// Parameter describes one tunable value of an effect. Booleans are exposed
// as 0/1 with Options {0, 1}.
type Parameter struct {
	Name    string    `json:"name"`
	Value   float64   `json:"value"`
	Default float64   `json:"default"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Integer bool      `json:"integer,omitempty"`
	Options []float64 `json:"options,omitempty"`
}

// binding ties a Parameter description to a field of a concrete effect
type binding struct {
	Parameter
	get func() float64
	set func(float64)
}

func intParam(name string, p *int, def, min, max int, options ...float64) binding {
	return binding{
		Parameter: Parameter{Name: name, Default: float64(def), Min: float64(min), Max: float64(max), Integer: true, Options: options},
		get:       func() float64 { return float64(*p) },
		set:       func(v float64) { *p = int(v) },
	}
}

func floatParam(name string, p *float32, def, min, max float64, options ...float64) binding {
	return binding{
		// defaults are reported at the storage precision
		Parameter: Parameter{Name: name, Default: float64(float32(def)), Min: min, Max: max, Options: options},
		get:       func() float64 { return float64(*p) },
		set:       func(v float64) { *p = float32(v) },
	}
}

func boolParam(name string, p *bool, def bool) binding {
	return binding{
		Parameter: Parameter{Name: name, Default: b2f(def), Min: 0, Max: 1, Integer: true, Options: []float64{0, 1}},
		get:       func() float64 { return b2f(*p) },
		set:       func(v float64) { *p = v != 0 },
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (b binding) check(kind Kind, v float64) error {
	if math.IsNaN(v) || v < b.Min || v > b.Max {
		return fmt.Errorf("%w: %s.%s = %v, want [%v, %v]", ErrInvalidParameter, kind, b.Name, v, b.Min, b.Max)
	}
	if b.Integer && v != math.Trunc(v) {
		return fmt.Errorf("%w: %s.%s = %v, want an integer", ErrInvalidParameter, kind, b.Name, v)
	}
	return nil
}

func describe(bs []binding) []Parameter {
	out := make([]Parameter, len(bs))
	for i, b := range bs {
		out[i] = b.Parameter
		out[i].Value = b.get()
		if b.Options != nil {
			out[i].Options = append([]float64(nil), b.Options...)
		}
	}
	return out
}

func validateBindings(kind Kind, bs []binding) error {
	for _, b := range bs {
		if err := b.check(kind, b.get()); err != nil {
			return err
		}
	}
	return nil
}

// assign sets a parameter and revalidates the effect, restoring the previous
// value when the new one is rejected.
func assign(e Effect, bs []binding, name string, v float64) error {
	for _, b := range bs {
		if b.Name != name {
			continue
		}
		if err := b.check(e.Kind(), v); err != nil {
			return err
		}
		old := b.get()
		b.set(v)
		if err := e.Validate(); err != nil {
			b.set(old)
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, e.Kind(), name)
}

// FindParameter returns the named parameter of e
func FindParameter(e Effect, name string) (Parameter, bool) {
	for _, p := range e.Parameters() {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
