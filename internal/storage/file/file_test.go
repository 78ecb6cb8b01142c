package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
	"github.com/cory-johannsen/hexcrawl/internal/storage/file"
)

func sampleCampaign(t testing.TB, name string) *campaign.Campaign {
	t.Helper()
	g := grid.New()
	g.GenerateHexRadius(1, "plains")
	g.SetBiome(hexmath.Coord{Q: 1, R: 0}, "forest")
	require.True(t, g.SetTrail(hexmath.Coord{}, hexmath.SE, "road"))
	p, err := party.FromRoster(party.FallbackRoster())
	require.NoError(t, err)
	p.ApplyCost(3)
	return &campaign.Campaign{
		ID:       uuid.New(),
		Name:     name,
		SavedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Map:      g.ToDocument(),
		Party:    p.ToRecord(),
		TimeDays: 0.5,
	}
}

func TestStore_SaveLoad(t *testing.T) {
	for _, compress := range []bool{false, true} {
		store, err := file.Open(t.TempDir(), compress, nil)
		require.NoError(t, err)
		ctx := context.Background()

		c := sampleCampaign(t, "Western Marches")
		require.NoError(t, store.Save(ctx, c))

		got, err := store.Load(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, c.Name, got.Name)
		assert.True(t, c.SavedAt.Equal(got.SavedAt))
		assert.Equal(t, c.Map, got.Map)
		assert.Equal(t, c.Party, got.Party)
		assert.Equal(t, c.TimeDays, got.TimeDays)
	}
}

func TestStore_CompressedFileIsZstd(t *testing.T) {
	dir := t.TempDir()
	store, err := file.Open(dir, true, nil)
	require.NoError(t, err)
	c := sampleCampaign(t, "z")
	require.NoError(t, store.Save(context.Background(), c))

	b, err := os.ReadFile(filepath.Join(dir, c.ID.String()+".json.zst"))
	require.NoError(t, err)
	// zstd frame magic number, little endian.
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, b[:4])
}

func TestStore_SwitchingCompressionReplacesDocument(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	plain, err := file.Open(dir, false, nil)
	require.NoError(t, err)
	c := sampleCampaign(t, "first")
	require.NoError(t, plain.Save(ctx, c))

	packed, err := file.Open(dir, true, nil)
	require.NoError(t, err)
	c.Name = "second"
	require.NoError(t, packed.Save(ctx, c))

	_, err = os.Stat(filepath.Join(dir, c.ID.String()+".json"))
	assert.True(t, os.IsNotExist(err))

	list, err := plain.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Name)
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := file.Open(t.TempDir(), false, nil)
	require.NoError(t, err)
	_, err = store.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestStore_SaveRequiresID(t *testing.T) {
	store, err := file.Open(t.TempDir(), false, nil)
	require.NoError(t, err)
	c := sampleCampaign(t, "x")
	c.ID = uuid.Nil
	assert.Error(t, store.Save(context.Background(), c))
}

func TestStore_ListNewestFirstSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	store, err := file.Open(dir, false, nil)
	require.NoError(t, err)
	ctx := context.Background()

	older := sampleCampaign(t, "older")
	older.SavedAt = older.SavedAt.Add(-time.Hour)
	newer := sampleCampaign(t, "newer")
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"id": 1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte(`notes`), 0o644))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Name)
	assert.Equal(t, "older", list[1].Name)
	assert.Equal(t, 7, list[0].Tiles)
}

func TestStore_LoadRejectsSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	store, err := file.Open(dir, false, nil)
	require.NoError(t, err)
	id := uuid.New()
	doc := `{"id":"` + id.String() + `","name":"bad","saved_at":"2026-01-01T00:00:00Z","time_days":0,
		"map":{"tiles":[{"q":0,"r":0,"biome":"plains","trails":["none"]}]},
		"party":{"members":[{"name":"A","speed":30,"con":10}]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, id.String()+".json"), []byte(doc), 0o644))

	_, err = store.Load(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestExportImportMap(t *testing.T) {
	dir := t.TempDir()
	c := sampleCampaign(t, "map")
	for _, name := range []string{"map.json", "map.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, file.ExportMap(path, c.Map))
		doc, err := file.ImportMap(path)
		require.NoError(t, err)
		assert.Equal(t, c.Map, doc)
	}
}

func TestImportMap_MissingCoordinateRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tiles":[{"r":0,"biome":"plains"}]}`), 0o644))
	_, err := file.ImportMap(path)
	assert.Error(t, err)
}

func TestImportMap_OptionalFieldsAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tiles":[{"q":2,"r":-1}]}`), 0o644))
	doc, err := file.ImportMap(path)
	require.NoError(t, err)
	require.Len(t, doc.Tiles, 1)
	assert.Nil(t, doc.Tiles[0].Biome)

	g, err := grid.FromDocument(doc, grid.DecodeOptions{DefaultBiome: "plains"})
	require.NoError(t, err)
	b, ok := g.BiomeAt(hexmath.Coord{Q: 2, R: -1})
	require.True(t, ok)
	assert.Equal(t, "plains", b)
}

func TestProperty_MapRoundTrip(t *testing.T) {
	dir := t.TempDir()
	biomes := []string{"plains", "forest", "mountain", "swamp"}
	rapid.Check(t, func(rt *rapid.T) {
		g := grid.New()
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			c := hexmath.Coord{Q: rapid.IntRange(-5, 5).Draw(rt, "q"), R: rapid.IntRange(-5, 5).Draw(rt, "r")}
			g.SetBiome(c, rapid.SampledFrom(biomes).Draw(rt, "biome"))
		}
		path := filepath.Join(dir, "prop.json.zst")
		if err := file.ExportMap(path, g.ToDocument()); err != nil {
			rt.Fatal(err)
		}
		doc, err := file.ImportMap(path)
		if err != nil {
			rt.Fatal(err)
		}
		back, err := grid.FromDocument(doc, grid.DecodeOptions{})
		if err != nil {
			rt.Fatal(err)
		}
		if !back.Equal(g) {
			rt.Fatalf("round trip changed the map")
		}
	})
}
