// Package grid provides the hex tile map: tile storage, biome painting,
// mirrored trails, map generation and the persisted record format.
package grid

import (
	"maps"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// NoTrail marks a trail slot that holds no trail.
const NoTrail = "none"

// Trails holds one trail slot per direction, indexed by hexmath.Direction.
type Trails [hexmath.DirectionCount]string

// EmptyTrails returns a Trails value with every slot set to NoTrail.
func EmptyTrails() Trails {
	var t Trails
	for i := range t {
		t[i] = NoTrail
	}
	return t
}

// Tile is one hex of the map.
type Tile struct {
	// BiomeID keys into the biome catalog.
	BiomeID string
	// Elevation is cosmetic and has no effect on travel.
	Elevation int
	// Trails holds the trail type id (or NoTrail) per direction.
	Trails Trails
	// Data is an open bag for extensions; the core never reads it.
	Data map[string]any
}

// NewTile returns a tile of the given biome with no trails and an empty bag.
func NewTile(biomeID string) *Tile {
	return &Tile{
		BiomeID: biomeID,
		Trails:  EmptyTrails(),
		Data:    make(map[string]any),
	}
}

// Trail returns the trail id in direction d, or NoTrail.
//
// Precondition: d.Valid().
func (t *Tile) Trail(d hexmath.Direction) string {
	v := t.Trails[d]
	if v == "" {
		return NoTrail
	}
	return v
}

// HasTrail reports whether direction d holds a trail.
func (t *Tile) HasTrail(d hexmath.Direction) bool {
	return t.Trail(d) != NoTrail
}

// Clone returns a copy of t. The data bag is copied one level deep.
func (t *Tile) Clone() *Tile {
	c := *t
	c.Data = maps.Clone(t.Data)
	if c.Data == nil {
		c.Data = make(map[string]any)
	}
	return &c
}
