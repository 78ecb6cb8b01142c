package catalog

import "fmt"

// DefaultStealthDC is the stealth DC of a biome row that omits stealth_dc.
const DefaultStealthDC = 12.0

// Biome describes a terrain type referenced by tiles.
type Biome struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	BaseCost       float64 `yaml:"base_cost" json:"base_cost"`
	Danger         float64 `yaml:"danger" json:"danger"`
	MoveDifficulty float64 `yaml:"move_difficulty" json:"move_difficulty"`
	StealthDC      float64 `yaml:"stealth_dc" json:"stealth_dc"`
	Color          string  `yaml:"color" json:"color"`
	Description    string  `yaml:"description" json:"description"`
}

// Key implements Entry.
func (b Biome) Key() string { return b.ID }

// FallbackBiomes returns the built-in biome set used when no table exists.
func FallbackBiomes() *Library[Biome] {
	return mustLibrary("biome", []Biome{
		{ID: "plains", Name: "Plains", BaseCost: 1.0, Danger: 0.2, MoveDifficulty: 1, StealthDC: 14, Color: "#9acd32", Description: "Open grassland with long sight lines."},
		{ID: "forest", Name: "Forest", BaseCost: 2.0, Danger: 0.8, MoveDifficulty: 2, StealthDC: 10, Color: "#228b22", Description: "Dense woodland; slow going but good cover."},
		{ID: "mountain", Name: "Mountain", BaseCost: 3.0, Danger: 1.5, MoveDifficulty: 3, StealthDC: 12, Color: "#8b8989", Description: "Steep rock and scree."},
		{ID: "swamp", Name: "Swamp", BaseCost: 3.0, Danger: 1.0, MoveDifficulty: 3, StealthDC: 11, Color: "#556b2f", Description: "Sucking mud and standing water."},
	})
}

// LoadBiomes reads the biome table at path. A missing file (or empty path)
// yields FallbackBiomes.
//
// Postcondition: Returns a non-empty Library or a non-nil error.
func LoadBiomes(path string) (*Library[Biome], error) {
	return loadLibrary("biome", path, "biomes", parseBiome, FallbackBiomes)
}

func parseBiome(r Row) (Biome, error) {
	id, err := r.Required("id")
	if err != nil {
		return Biome{}, err
	}
	b := Biome{
		ID:          id,
		Name:        r.String("name", id),
		Color:       r.String("color", "#cccccc"),
		Description: r.String("description", ""),
	}
	if b.BaseCost, err = r.Float("base_cost", 1); err != nil {
		return Biome{}, err
	}
	if b.Danger, err = r.Float("danger", 0); err != nil {
		return Biome{}, err
	}
	if b.MoveDifficulty, err = r.Float("move_difficulty", 0); err != nil {
		return Biome{}, err
	}
	if b.StealthDC, err = r.Float("stealth_dc", DefaultStealthDC); err != nil {
		return Biome{}, err
	}
	return b, nil
}

func loadLibrary[T Entry](kind, path, key string, parse func(Row) (T, error), fallback func() *Library[T]) (*Library[T], error) {
	if path == "" {
		return fallback(), nil
	}
	rows, err := ReadTable(path, key)
	if err != nil {
		if IsMissing(err) {
			return fallback(), nil
		}
		return nil, fmt.Errorf("loading %s table: %w", kind, err)
	}
	entries := make([]T, 0, len(rows))
	for _, row := range rows {
		e, err := parse(row)
		if err != nil {
			return nil, fmt.Errorf("loading %s table %s: %w", kind, path, err)
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("loading %s table %s: no rows", kind, path)
	}
	lib, err := NewLibrary(kind, entries)
	if err != nil {
		return nil, err
	}
	lib.loaded = true
	return lib, nil
}
