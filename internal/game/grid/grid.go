package grid

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// Grid maps axial coordinates to tiles and keeps trails mirrored between
// neighbors.
//
// A Grid is not safe for concurrent use; it is owned by one session and
// mutated only through edit commands.
type Grid struct {
	tiles map[hexmath.Coord]*Tile
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{tiles: make(map[hexmath.Coord]*Tile)}
}

// Has reports whether a tile exists at c.
func (g *Grid) Has(c hexmath.Coord) bool {
	_, ok := g.tiles[c]
	return ok
}

// Get returns the tile at c. The tile remains owned by the grid.
//
// Postcondition: Returns (tile, true) if present, or (nil, false).
func (g *Grid) Get(c hexmath.Coord) (*Tile, bool) {
	t, ok := g.tiles[c]
	return t, ok
}

// Remove deletes the tile at c.
//
// Postcondition: Returns true if a tile was removed.
func (g *Grid) Remove(c hexmath.Coord) bool {
	if _, ok := g.tiles[c]; !ok {
		return false
	}
	delete(g.tiles, c)
	return true
}

// Len returns the number of tiles.
func (g *Grid) Len() int {
	return len(g.tiles)
}

// Clear removes every tile.
func (g *Grid) Clear() {
	clear(g.tiles)
}

// BiomeAt returns the biome id at c.
//
// Postcondition: Returns (id, true) if a tile exists, or ("", false).
func (g *Grid) BiomeAt(c hexmath.Coord) (string, bool) {
	t, ok := g.tiles[c]
	if !ok {
		return "", false
	}
	return t.BiomeID, true
}

// SetBiome sets the biome of the tile at c, creating a trail-less tile when
// none exists.
//
// Postcondition: g.Has(c) and the tile's BiomeID == biomeID.
func (g *Grid) SetBiome(c hexmath.Coord, biomeID string) {
	if t, ok := g.tiles[c]; ok {
		t.BiomeID = biomeID
		return
	}
	g.tiles[c] = NewTile(biomeID)
}

// Trail returns the trail in direction d of the tile at c.
//
// Postcondition: Returns (value, true) if the tile exists, or (NoTrail, false).
func (g *Grid) Trail(c hexmath.Coord, d hexmath.Direction) (string, bool) {
	t, ok := g.tiles[c]
	if !ok {
		return NoTrail, false
	}
	return t.Trail(d), true
}

// SetTrail sets the trail in direction d of the tile at c and mirrors the
// same value onto the neighbor's opposite slot when the neighbor exists.
// An empty value is stored as NoTrail.
//
// If no tile exists at c the call does nothing. If the neighbor is absent
// only the source side is written.
//
// Precondition: d.Valid().
// Postcondition: Returns true if the source tile was written. When both tiles
// exist, tile(c).Trails[d] == tile(c+d).Trails[d.Opposite()].
func (g *Grid) SetTrail(c hexmath.Coord, d hexmath.Direction, value string) bool {
	t, ok := g.tiles[c]
	if !ok {
		return false
	}
	if value == "" {
		value = NoTrail
	}
	t.Trails[d] = value
	if n, ok := g.tiles[c.Neighbor(d)]; ok {
		n.Trails[d.Opposite()] = value
	}
	return true
}

// GenerateRectangle fills q in [0,width) and r in [0,height) with fresh tiles
// of biomeID. Existing tiles at those coordinates are overwritten; tiles
// outside the block are kept.
//
// Precondition: width >= 0 and height >= 0.
func (g *Grid) GenerateRectangle(width, height int, biomeID string) {
	for q := 0; q < width; q++ {
		for r := 0; r < height; r++ {
			g.tiles[hexmath.Coord{Q: q, R: r}] = NewTile(biomeID)
		}
	}
}

// GenerateHexRadius clears the grid and fills every coordinate within
// radius of the origin with fresh tiles of biomeID.
//
// Precondition: radius >= 0.
// Postcondition: g.Len() == 3*radius*(radius+1) + 1.
func (g *Grid) GenerateHexRadius(radius int, biomeID string) {
	g.Clear()
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			c := hexmath.Coord{Q: q, R: r}
			if hexmath.Distance(hexmath.Origin, c) <= radius {
				g.tiles[c] = NewTile(biomeID)
			}
		}
	}
}

// Coords returns every occupied coordinate sorted by r then q.
func (g *Grid) Coords() []hexmath.Coord {
	out := make([]hexmath.Coord, 0, len(g.tiles))
	for c := range g.tiles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].R != out[j].R {
			return out[i].R < out[j].R
		}
		return out[i].Q < out[j].Q
	})
	return out
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{tiles: make(map[hexmath.Coord]*Tile, len(g.tiles))}
	for coord, t := range g.tiles {
		c.tiles[coord] = t.Clone()
	}
	return c
}

// Equal reports whether g and o hold the same coordinates with equal biome,
// elevation, trails and data.
func (g *Grid) Equal(o *Grid) bool {
	if len(g.tiles) != len(o.tiles) {
		return false
	}
	for c, a := range g.tiles {
		b, ok := o.tiles[c]
		if !ok {
			return false
		}
		if a.BiomeID != b.BiomeID || a.Elevation != b.Elevation || a.Trails != b.Trails {
			return false
		}
		if len(a.Data) != 0 || len(b.Data) != 0 {
			if !reflect.DeepEqual(a.Data, b.Data) {
				return false
			}
		}
	}
	return true
}

// Resolver reports whether a catalog id exists.
type Resolver interface {
	Has(id string) bool
}

// Validate checks that every tile's biome resolves in biomes and every trail
// slot is NoTrail or resolves in trails.
//
// Postcondition: Returns nil, or an error naming the first offending tile.
func (g *Grid) Validate(biomes, trails Resolver) error {
	for _, c := range g.Coords() {
		t := g.tiles[c]
		if !biomes.Has(t.BiomeID) {
			return fmt.Errorf("tile %s: unknown biome %q", c, t.BiomeID)
		}
		for _, d := range hexmath.AllDirections {
			if v := t.Trail(d); v != NoTrail && !trails.Has(v) {
				return fmt.Errorf("tile %s: trail %s: unknown trail type %q", c, d, v)
			}
		}
	}
	return nil
}
