package config

import (
	"fmt"
	"sort"
	"sync"

	"retrofx/pkg/effects"
)

// KindNone selects no exclusive effect
const KindNone effects.Kind = "none"

// Exclusive reports whether kind takes part in Select. Pixelize and the
// RGB shift are independent toggles that combine with any other effect.
func Exclusive(kind effects.Kind) bool {
	return kind != effects.KindPixelize && kind != effects.KindRGBShift
}

// Change describes one mutation of the settings
type Change struct {
	Kind    effects.Kind
	Param   string
	Value   float64
	Enabled bool
	// Reset is set when the whole chain was replaced
	Reset bool
}

// Observer is notified synchronously after every successful mutation
type Observer interface {
	SettingsChanged(Change)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(Change)

// SettingsChanged calls f(c)
func (f ObserverFunc) SettingsChanged(c Change) { f(c) }

// Settings is the live, ordered effect chain shared by the control
// surfaces and the compositor.
type Settings struct {
	mu          sync.RWMutex
	descriptors []Descriptor
	observers   map[int]Observer
	nextID      int
}

// NewSettings creates settings holding a copy of ds
func NewSettings(ds []Descriptor) *Settings {
	return &Settings{
		descriptors: CloneDescriptors(ds),
		observers:   make(map[int]Observer),
	}
}

// Snapshot returns a deep copy of the chain
func (s *Settings) Snapshot() []Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CloneDescriptors(s.descriptors)
}

// Get returns a copy of the descriptor for kind
func (s *Settings) Get(kind effects.Kind) (Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(kind)
	if i < 0 {
		return Descriptor{}, false
	}
	return s.descriptors[i].Clone(), true
}

// Selected returns the first enabled exclusive effect, or KindNone
func (s *Settings) Selected() effects.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.descriptors {
		if d.Enabled && Exclusive(d.Kind()) {
			return d.Kind()
		}
	}
	return KindNone
}

func (s *Settings) indexOf(kind effects.Kind) int {
	for i, d := range s.descriptors {
		if d.Kind() == kind {
			return i
		}
	}
	return -1
}

// SetEnabled switches one effect on or off without touching the others
func (s *Settings) SetEnabled(kind effects.Kind, enabled bool) error {
	s.mu.Lock()
	i := s.indexOf(kind)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q not in chain", effects.ErrUnknownEffect, kind)
	}
	s.descriptors[i].Enabled = enabled
	s.mu.Unlock()

	s.notify([]Change{{Kind: kind, Enabled: enabled}})
	return nil
}

// Select enables the exclusive effect kind and disables every other
// exclusive effect. KindNone disables them all. Non-exclusive effects are
// left as they are.
func (s *Settings) Select(kind effects.Kind) error {
	if kind != KindNone && !Exclusive(kind) {
		return fmt.Errorf("%s is a toggle, not a selectable effect", kind)
	}

	s.mu.Lock()
	if kind != KindNone && s.indexOf(kind) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q not in chain", effects.ErrUnknownEffect, kind)
	}

	var changes []Change
	for i := range s.descriptors {
		d := &s.descriptors[i]
		if !Exclusive(d.Kind()) {
			continue
		}
		want := d.Kind() == kind
		if d.Enabled != want {
			d.Enabled = want
			changes = append(changes, Change{Kind: d.Kind(), Enabled: want})
		}
	}
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

// SetParameter validates and applies one effect parameter
func (s *Settings) SetParameter(kind effects.Kind, name string, value float64) error {
	s.mu.Lock()
	i := s.indexOf(kind)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q not in chain", effects.ErrUnknownEffect, kind)
	}

	// Mutate a copy so readers holding a previous Snapshot never see a
	// half-applied value.
	d := s.descriptors[i].Clone()
	if err := d.Effect.SetParameter(name, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.descriptors[i] = d
	s.mu.Unlock()

	s.notify([]Change{{Kind: kind, Param: name, Value: value, Enabled: d.Enabled}})
	return nil
}

// Replace swaps in a new chain after validating it
func (s *Settings) Replace(ds []Descriptor) error {
	if err := ValidateDescriptors(ds); err != nil {
		return err
	}

	s.mu.Lock()
	s.descriptors = CloneDescriptors(ds)
	s.mu.Unlock()

	s.notify([]Change{{Reset: true}})
	return nil
}

// Subscribe registers o and returns a function that removes it
func (s *Settings) Subscribe(o Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// notify runs outside the lock so observers may read the settings back
func (s *Settings) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}

	s.mu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	observers := make([]Observer, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	s.mu.RUnlock()

	for _, c := range changes {
		for _, o := range observers {
			o.SettingsChanged(c)
		}
	}
}
