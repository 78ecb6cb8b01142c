// Package catalog provides the immutable biome, trail-type and travel-mode
// reference libraries and their table loaders.
package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id does not resolve in a library.
var ErrNotFound = errors.New("not found")

// Entry is a catalog record addressable by id.
type Entry interface {
	Key() string
}

// Library is an immutable id-keyed catalog. It is built once by a loader
// and never mutated afterwards.
type Library[T Entry] struct {
	kind   string
	byID   map[string]T
	order  []string
	loaded bool
}

// NewLibrary builds a Library from entries. Later entries with a repeated id
// replace earlier ones but keep the first position.
//
// Precondition: every entry has a non-empty Key().
// Postcondition: Returns a Library or an error naming the first empty id.
func NewLibrary[T Entry](kind string, entries []T) (*Library[T], error) {
	l := &Library[T]{
		kind: kind,
		byID: make(map[string]T, len(entries)),
	}
	for i, e := range entries {
		id := e.Key()
		if id == "" {
			return nil, fmt.Errorf("%s entry %d: empty id", kind, i)
		}
		if _, exists := l.byID[id]; !exists {
			l.order = append(l.order, id)
		}
		l.byID[id] = e
	}
	return l, nil
}

func mustLibrary[T Entry](kind string, entries []T) *Library[T] {
	l, err := NewLibrary(kind, entries)
	if err != nil {
		panic("catalog: building fallback " + kind + ": " + err.Error())
	}
	return l
}

// Get returns the entry for id.
//
// Postcondition: Returns the entry, or an error wrapping ErrNotFound. No
// default is ever substituted.
func (l *Library[T]) Get(id string) (T, error) {
	e, ok := l.byID[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", l.kind, id, ErrNotFound)
	}
	return e, nil
}

// Has reports whether id resolves.
func (l *Library[T]) Has(id string) bool {
	_, ok := l.byID[id]
	return ok
}

// IDs returns the ids in load order.
func (l *Library[T]) IDs() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// All returns the entries in load order.
func (l *Library[T]) All() []T {
	out := make([]T, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

// Len returns the number of entries.
func (l *Library[T]) Len() int {
	return len(l.order)
}

// FromSource reports whether the library was read from a table rather than
// built from the fallback set.
func (l *Library[T]) FromSource() bool {
	return l.loaded
}

// Catalogs bundles the three reference libraries.
type Catalogs struct {
	Biomes *Library[Biome]
	Trails *Library[TrailType]
	Modes  *Library[TravelMode]
}

// Paths names the table files for Load. An empty path selects the fallback
// catalog.
type Paths struct {
	Biomes string
	Trails string
	Modes  string
}

// Load reads all three libraries and validates cross references.
//
// Postcondition: Returns validated Catalogs or the first error.
func Load(p Paths) (*Catalogs, error) {
	biomes, err := LoadBiomes(p.Biomes)
	if err != nil {
		return nil, err
	}
	trails, err := LoadTrails(p.Trails)
	if err != nil {
		return nil, err
	}
	modes, err := LoadModes(p.Modes)
	if err != nil {
		return nil, err
	}
	c := &Catalogs{Biomes: biomes, Trails: trails, Modes: modes}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Fallback returns Catalogs built entirely from the fallback sets.
func Fallback() *Catalogs {
	return &Catalogs{
		Biomes: FallbackBiomes(),
		Trails: FallbackTrails(),
		Modes:  FallbackModes(),
	}
}

// Validate checks that every travel mode's trail_type resolves.
//
// Postcondition: Returns nil, or an error describing the first dangling reference.
func (c *Catalogs) Validate() error {
	for _, m := range c.Modes.All() {
		if m.TrailType == "" {
			continue
		}
		if !c.Trails.Has(m.TrailType) {
			return fmt.Errorf("travel mode %q: trail_type %q: %w", m.ID, m.TrailType, ErrNotFound)
		}
	}
	return nil
}
