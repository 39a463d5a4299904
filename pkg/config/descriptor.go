package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"

	"retrofx/pkg/effects"
)

// Registry resolves effect types found in config files
var Registry = effects.DefaultRegistry()

// Descriptor is one entry of the effect chain. The concrete type of Effect
// is the variant tag.
type Descriptor struct {
	Enabled bool
	Effect  effects.Effect
}

// Kind returns the effect kind, or "" when Effect is unset
func (d Descriptor) Kind() effects.Kind {
	if d.Effect == nil {
		return ""
	}
	return d.Effect.Kind()
}

// Clone copies the descriptor and its effect parameters
func (d Descriptor) Clone() Descriptor {
	if d.Effect != nil {
		d.Effect = d.Effect.Clone()
	}
	return d
}

// CloneDescriptors deep-copies a chain
func CloneDescriptors(ds []Descriptor) []Descriptor {
	out := make([]Descriptor, len(ds))
	for i, d := range ds {
		out[i] = d.Clone()
	}
	return out
}

type descriptorDoc struct {
	Type    string        `yaml:"type"`
	Enabled *bool         `yaml:"enabled,omitempty"`
	Params  yaml.MapSlice `yaml:"params,omitempty"`
}

// MarshalYAML writes {type, enabled, params}
func (d Descriptor) MarshalYAML() (interface{}, error) {
	if d.Effect == nil {
		return nil, errors.New("descriptor has no effect")
	}

	data, err := yaml.Marshal(d.Effect)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", d.Effect.Kind(), err)
	}
	var params yaml.MapSlice
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("effect %s: %w", d.Effect.Kind(), err)
	}

	enabled := d.Enabled
	return descriptorDoc{Type: string(d.Effect.Kind()), Enabled: &enabled, Params: params}, nil
}

// UnmarshalYAML builds the effect from the registry defaults and overlays
// params. Unknown names or mistyped values are rejected; enabled defaults to true.
func (d *Descriptor) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var doc descriptorDoc
	if err := unmarshal(&doc); err != nil {
		return err
	}

	e, err := Registry.New(effects.Kind(doc.Type))
	if err != nil {
		return err
	}

	if len(doc.Params) > 0 {
		data, err := yaml.Marshal(doc.Params)
		if err != nil {
			return fmt.Errorf("effect %s: %w", doc.Type, err)
		}
		if err := yaml.UnmarshalStrict(data, e); err != nil {
			return fmt.Errorf("effect %s: %w: %v", doc.Type, effects.ErrInvalidParameter, err)
		}
	}

	d.Enabled = doc.Enabled == nil || *doc.Enabled
	d.Effect = e
	return nil
}
