package engine

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"retrofx/pkg/control"
	"retrofx/pkg/effects"
)

// DefaultBindings maps keys of the preview window to settings actions
func DefaultBindings() map[glfw.Key]control.Action {
	bindings := map[glfw.Key]control.Action{
		glfw.KeyEscape:       {Type: control.ActionQuit},
		glfw.KeyP:            {Type: control.ActionToggle, Kind: effects.KindPixelize},
		glfw.KeyR:            {Type: control.ActionToggle, Kind: effects.KindRGBShift},
		glfw.KeyLeftBracket:  {Type: control.ActionScale, Param: "pixel_size", Factor: 0.5},
		glfw.KeyRightBracket: {Type: control.ActionScale, Param: "pixel_size", Factor: 2},
		glfw.KeyMinus:        {Type: control.ActionScale, Param: "color_num", Factor: 0.5},
		glfw.KeyEqual:        {Type: control.ActionScale, Param: "color_num", Factor: 2},
		glfw.KeyB:            {Type: control.ActionFlip, Param: "blending"},
	}
	for n := 0; n <= len(control.SelectOrder); n++ {
		bindings[glfw.Key0+glfw.Key(n)] = control.SelectAction(n)
	}
	return bindings
}

// InputHandler turns key presses into settings actions
type InputHandler struct {
	window       *glfw.Window
	bindings     map[glfw.Key]control.Action
	currentKeys  map[glfw.Key]bool
	previousKeys map[glfw.Key]bool
}

// NewInputHandler creates an input handler for window
func NewInputHandler(window *glfw.Window, bindings map[glfw.Key]control.Action) *InputHandler {
	return &InputHandler{
		window:       window,
		bindings:     bindings,
		currentKeys:  make(map[glfw.Key]bool),
		previousKeys: make(map[glfw.Key]bool),
	}
}

// Update samples the bound keys
func (ih *InputHandler) Update() {
	for key := range ih.bindings {
		ih.previousKeys[key] = ih.currentKeys[key]
		ih.currentKeys[key] = ih.window.GetKey(key) == glfw.Press
	}
}

// IsKeyDown reports whether key is held
func (ih *InputHandler) IsKeyDown(key glfw.Key) bool {
	return ih.currentKeys[key]
}

// IsKeyPressed reports whether key went down this frame
func (ih *InputHandler) IsKeyPressed(key glfw.Key) bool {
	return ih.currentKeys[key] && !ih.previousKeys[key]
}

// Actions returns the actions of the keys pressed this frame
func (ih *InputHandler) Actions() []control.Action {
	var actions []control.Action
	for key, action := range ih.bindings {
		if ih.IsKeyPressed(key) {
			actions = append(actions, action)
		}
	}
	return actions
}
