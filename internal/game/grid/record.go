package grid

import (
	"errors"
	"fmt"
	"maps"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// Document is the persisted map format: one record per occupied coordinate.
type Document struct {
	Tiles []TileRecord `json:"tiles" yaml:"tiles"`
}

// TileRecord is the persisted form of one tile. Pointer fields distinguish a
// missing key from a zero value when decoding.
type TileRecord struct {
	Q         *int           `json:"q" yaml:"q"`
	R         *int           `json:"r" yaml:"r"`
	Biome     *string        `json:"biome,omitempty" yaml:"biome,omitempty"`
	Elevation int            `json:"elevation" yaml:"elevation"`
	Trails    []string       `json:"trails,omitempty" yaml:"trails,omitempty"`
	Data      map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// ErrMissingCoordinate is returned when a tile record lacks q or r.
var ErrMissingCoordinate = errors.New("tile record missing coordinate")

// DecodeOptions controls the fallback policy of FromDocument.
type DecodeOptions struct {
	// DefaultBiome is used for records without a biome. Empty means such
	// records are rejected.
	DefaultBiome string
}

// ToDocument returns the persisted form of g, tiles sorted by r then q.
//
// Postcondition: FromDocument(g.ToDocument(), opts) is Equal to g.
func (g *Grid) ToDocument() Document {
	coords := g.Coords()
	doc := Document{Tiles: make([]TileRecord, 0, len(coords))}
	for _, c := range coords {
		t := g.tiles[c]
		q, r, biome := c.Q, c.R, t.BiomeID
		trails := make([]string, hexmath.DirectionCount)
		for i := range trails {
			trails[i] = t.Trail(hexmath.Direction(i))
		}
		rec := TileRecord{
			Q:         &q,
			R:         &r,
			Biome:     &biome,
			Elevation: t.Elevation,
			Trails:    trails,
		}
		if len(t.Data) > 0 {
			rec.Data = maps.Clone(t.Data)
		}
		doc.Tiles = append(doc.Tiles, rec)
	}
	return doc
}

// FromDocument builds a grid from its persisted form.
//
// Fallback policy: a record without q or r is rejected; a record without a
// biome takes opts.DefaultBiome (rejected when that is empty); missing trails
// become all NoTrail and empty trail strings become NoTrail; a trails list
// whose length is not 6 is rejected; missing data becomes an empty bag; a
// repeated coordinate is rejected.
//
// Postcondition: Returns a populated Grid or a non-nil error naming the record index.
func FromDocument(doc Document, opts DecodeOptions) (*Grid, error) {
	g := New()
	for i, rec := range doc.Tiles {
		if rec.Q == nil || rec.R == nil {
			return nil, fmt.Errorf("tile record %d: %w", i, ErrMissingCoordinate)
		}
		c := hexmath.Coord{Q: *rec.Q, R: *rec.R}
		if g.Has(c) {
			return nil, fmt.Errorf("tile record %d: duplicate coordinate %s", i, c)
		}

		biome := opts.DefaultBiome
		if rec.Biome != nil && *rec.Biome != "" {
			biome = *rec.Biome
		}
		if biome == "" {
			return nil, fmt.Errorf("tile record %d at %s: missing biome", i, c)
		}

		t := NewTile(biome)
		t.Elevation = rec.Elevation
		if rec.Trails != nil {
			if len(rec.Trails) != hexmath.DirectionCount {
				return nil, fmt.Errorf("tile record %d at %s: trails has %d entries, want %d",
					i, c, len(rec.Trails), hexmath.DirectionCount)
			}
			for j, v := range rec.Trails {
				if v == "" {
					v = NoTrail
				}
				t.Trails[j] = v
			}
		}
		if rec.Data != nil {
			t.Data = maps.Clone(rec.Data)
		}
		g.tiles[c] = t
	}
	return g, nil
}
