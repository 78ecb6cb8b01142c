package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBiomes_MissingFileUsesFallback(t *testing.T) {
	lib, err := LoadBiomes(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.False(t, lib.FromSource())
	assert.Equal(t, []string{"plains", "forest", "mountain", "swamp"}, lib.IDs())

	plains, err := lib.Get("plains")
	require.NoError(t, err)
	assert.Equal(t, 1.0, plains.BaseCost)
	assert.Equal(t, 0.2, plains.Danger)
	assert.Equal(t, 1.0, plains.MoveDifficulty)

	mountain, err := lib.Get("mountain")
	require.NoError(t, err)
	assert.Equal(t, 3.0, mountain.BaseCost)
	assert.Equal(t, 1.5, mountain.Danger)
}

func TestLoadBiomes_EmptyPathUsesFallback(t *testing.T) {
	lib, err := LoadBiomes("")
	require.NoError(t, err)
	assert.Equal(t, 4, lib.Len())
}

func TestLoadBiomes_CSV(t *testing.T) {
	path := writeFile(t, "biomes.csv", `id,name,base_cost,danger,move_difficulty,color,stealth_dc,description,extra
tundra,Tundra,2,0.5,2,#ffffff,13,Frozen waste,ignored
desert,,1.5,,,,,,
`)
	lib, err := LoadBiomes(path)
	require.NoError(t, err)
	assert.True(t, lib.FromSource())
	assert.Equal(t, []string{"tundra", "desert"}, lib.IDs())

	tundra, err := lib.Get("tundra")
	require.NoError(t, err)
	assert.Equal(t, "Tundra", tundra.Name)
	assert.Equal(t, 2.0, tundra.MoveDifficulty)
	assert.Equal(t, 13.0, tundra.StealthDC)
	assert.Equal(t, "Frozen waste", tundra.Description)

	desert, err := lib.Get("desert")
	require.NoError(t, err)
	assert.Equal(t, "desert", desert.Name, "name defaults to id")
	assert.Equal(t, 1.5, desert.BaseCost)
	assert.Equal(t, 0.0, desert.Danger)
	assert.Equal(t, 0.0, desert.MoveDifficulty)
	assert.Equal(t, DefaultStealthDC, desert.StealthDC)
	assert.Equal(t, "", desert.Description)
}

func TestLoadBiomes_YAML(t *testing.T) {
	path := writeFile(t, "biomes.yaml", `
biomes:
  - id: hills
    name: Hills
    move_difficulty: 2
    stealth_dc: 11.5
    unknown_key: whatever
`)
	lib, err := LoadBiomes(path)
	require.NoError(t, err)
	hills, err := lib.Get("hills")
	require.NoError(t, err)
	assert.Equal(t, 2.0, hills.MoveDifficulty)
	assert.Equal(t, 11.5, hills.StealthDC)
	assert.Equal(t, 1.0, hills.BaseCost)
}

func TestLoadBiomes_MissingIDIsError(t *testing.T) {
	path := writeFile(t, "biomes.csv", "id,name\n,Nameless\n")
	_, err := LoadBiomes(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"id"`)
}

func TestLoadBiomes_MalformedNumberIsError(t *testing.T) {
	path := writeFile(t, "biomes.csv", "id,base_cost\nbog,lots\n")
	_, err := LoadBiomes(path)
	assert.Error(t, err)
}

func TestLoadBiomes_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "biomes.txt", "id\nx\n")
	_, err := LoadBiomes(path)
	assert.Error(t, err)
}

func TestLibrary_GetMissingIsNotFound(t *testing.T) {
	lib := FallbackBiomes()
	_, err := lib.Get("lava")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "lava")
	assert.False(t, lib.Has("lava"))
}

func TestFallbackTrails(t *testing.T) {
	lib, err := LoadTrails("")
	require.NoError(t, err)
	assert.Equal(t, []string{"footpath", "road", "highway"}, lib.IDs())
	for id, want := range map[string]float64{"footpath": 1, "road": 2, "highway": 3} {
		tt, err := lib.Get(id)
		require.NoError(t, err)
		assert.Equal(t, want, tt.CostMod, id)
	}
}

func TestLoadTrails_CSVDefaults(t *testing.T) {
	path := writeFile(t, "trails.csv", "id,name,cost_mod\ncanal,Canal,-1.5\nlane,,\n")
	lib, err := LoadTrails(path)
	require.NoError(t, err)
	canal, err := lib.Get("canal")
	require.NoError(t, err)
	assert.Equal(t, -1.5, canal.CostMod)
	lane, err := lib.Get("lane")
	require.NoError(t, err)
	assert.Equal(t, 0.0, lane.CostMod)
	assert.Equal(t, defaultTrailWidth, lane.Width)
	assert.Equal(t, defaultTrailColor, lane.Color)
}

func TestFallbackModes(t *testing.T) {
	lib := FallbackModes()
	want := map[string]float64{"reckless": -1, "normal": 0, "cautious": 1, "exploring": 2, "trailblazing": 1}
	assert.Equal(t, []string{"reckless", "normal", "cautious", "exploring", "trailblazing"}, lib.IDs())
	for id, speed := range want {
		m, err := lib.Get(id)
		require.NoError(t, err)
		assert.Equal(t, speed, m.SpeedMod, id)
	}
	tb, _ := lib.Get("trailblazing")
	assert.True(t, tb.LaysTrail())
	assert.Equal(t, "footpath", tb.TrailType)
	normal, _ := lib.Get("normal")
	assert.False(t, normal.LaysTrail())
}

func TestLoadModes_NoneTrailTypeIsEmpty(t *testing.T) {
	path := writeFile(t, "modes.csv", "id,speed_mod,trail_type\nsneak,1,none\n")
	lib, err := LoadModes(path)
	require.NoError(t, err)
	m, err := lib.Get("sneak")
	require.NoError(t, err)
	assert.False(t, m.LaysTrail())
}

func TestCatalogs_ValidateDanglingTrailType(t *testing.T) {
	dir := t.TempDir()
	modes := filepath.Join(dir, "modes.csv")
	require.NoError(t, os.WriteFile(modes, []byte("id,speed_mod,trail_type\npave,1,cobbles\n"), 0644))
	_, err := Load(Paths{Modes: modes})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallbackCatalogsValidate(t *testing.T) {
	assert.NoError(t, Fallback().Validate())
}

func TestNewLibrary_EmptyID(t *testing.T) {
	_, err := NewLibrary("biome", []Biome{{ID: ""}})
	assert.Error(t, err)
}

func TestPropertyLibraryResolvesEveryLoadedID(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,8}`), 1, 20, rapid.ID[string]).Draw(t, "ids")
		entries := make([]Biome, len(ids))
		for i, id := range ids {
			entries[i] = Biome{ID: id}
		}
		lib, err := NewLibrary("biome", entries)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, ids, lib.IDs())
		for _, id := range ids {
			if _, err := lib.Get(id); err != nil {
				t.Fatalf("id %q did not resolve: %v", id, err)
			}
		}
	})
}
