package control

import (
	"fmt"
	"math"

	"retrofx/pkg/config"
	"retrofx/pkg/effects"
)

// ActionType enumerates what a key press does to the settings
type ActionType int

const (
	ActionNone ActionType = iota
	ActionQuit
	ActionSelect
	ActionToggle
	ActionScale
	ActionFlip
)

// Action is a settings command independent of the input device
type Action struct {
	Type   ActionType
	Kind   effects.Kind // Select, Toggle
	Param  string       // Scale, Flip
	Factor float64      // Scale
}

// SelectOrder is the effect chosen by the number keys 1 to 9
var SelectOrder = []effects.Kind{
	effects.KindBayerDither,
	effects.KindBlueNoise,
	effects.KindColorQuantization,
	effects.KindCRT,
	effects.KindCRTAnimated,
	effects.KindASCII,
	effects.KindLightness,
	effects.KindPalette,
	effects.KindLego,
}

// SelectAction returns the action bound to number key n (0 selects none)
func SelectAction(n int) Action {
	if n == 0 {
		return Action{Type: ActionSelect, Kind: config.KindNone}
	}
	if n < 1 || n > len(SelectOrder) {
		return Action{}
	}
	return Action{Type: ActionSelect, Kind: SelectOrder[n-1]}
}

// Apply runs a on settings. It reports whether the caller should quit.
// Scaling and flipping target the selected effect; pixel size falls back to
// Pixelize when the selection has none. Actions without a target are no-ops.
func Apply(settings *config.Settings, a Action) (bool, error) {
	switch a.Type {
	case ActionNone:
		return false, nil
	case ActionQuit:
		return true, nil
	case ActionSelect:
		return false, settings.Select(a.Kind)
	case ActionToggle:
		d, ok := settings.Get(a.Kind)
		if !ok {
			return false, fmt.Errorf("%w: %q not in chain", effects.ErrUnknownEffect, a.Kind)
		}
		return false, settings.SetEnabled(a.Kind, !d.Enabled)
	case ActionScale:
		kind, p, ok := target(settings, a.Param)
		if !ok {
			return false, nil
		}
		v := math.Max(p.Min, math.Min(p.Max, math.Round(p.Value*a.Factor)))
		if v == p.Value {
			return false, nil
		}
		return false, settings.SetParameter(kind, a.Param, v)
	case ActionFlip:
		kind, p, ok := target(settings, a.Param)
		if !ok {
			return false, nil
		}
		return false, settings.SetParameter(kind, a.Param, 1-p.Value)
	default:
		return false, fmt.Errorf("unknown action %d", a.Type)
	}
}

func target(settings *config.Settings, param string) (effects.Kind, effects.Parameter, bool) {
	candidates := []effects.Kind{settings.Selected()}
	if param == "pixel_size" {
		candidates = append(candidates, effects.KindPixelize)
	}

	for _, kind := range candidates {
		d, ok := settings.Get(kind)
		if !ok {
			continue
		}
		if p, ok := effects.FindParameter(d.Effect, param); ok {
			return kind, p, true
		}
	}
	return "", effects.Parameter{}, false
}
