package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexcrawl/internal/game/catalog"
	"github.com/cory-johannsen/hexcrawl/internal/game/dice"
	"github.com/cory-johannsen/hexcrawl/internal/game/events"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
	"github.com/cory-johannsen/hexcrawl/internal/game/session"
	"github.com/cory-johannsen/hexcrawl/internal/game/travel"
)

type options struct {
	faces   []int
	stealth bool
}

func newSession(tb testing.TB, o options) *session.Session {
	tb.Helper()
	p, err := party.FromRoster(party.FallbackRoster())
	require.NoError(tb, err)
	g := grid.New()
	g.GenerateRectangle(3, 3, "plains")
	p.Position = hexmath.Coord{Q: 1, R: 1}
	faces := o.faces
	if len(faces) == 0 {
		faces = []int{20}
	}
	s, err := session.New(session.Options{
		Catalogs:      catalog.Fallback(),
		Party:         p,
		Grid:          g,
		Roller:        dice.NewRoller(dice.NewFixedSource(faces...), nil),
		DefaultMode:   "normal",
		StealthOnMove: o.stealth,
		DefaultBiome:  "plains",
	})
	require.NoError(tb, err)
	return s
}

func record(s *session.Session, names ...string) *[]events.Event {
	var got []events.Event
	for _, n := range names {
		s.Bus().Subscribe(n, func(e events.Event) { got = append(got, e) })
	}
	return &got
}

func TestNew_RequiresCatalogsAndParty(t *testing.T) {
	_, err := session.New(session.Options{})
	assert.Error(t, err)
	_, err = session.New(session.Options{Catalogs: catalog.Fallback()})
	assert.Error(t, err)

	p, _ := party.FromRoster(party.FallbackRoster())
	_, err = session.New(session.Options{Catalogs: catalog.Fallback(), Party: p, DefaultMode: "warp"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMove_Scenario(t *testing.T) {
	s := newSession(t, options{})
	start := s.Party().Position

	r1, err := s.Move(hexmath.N, "normal")
	require.NoError(t, err)
	require.False(t, r1.Quote.Blocked)
	r2, err := s.Move(hexmath.S, "normal")
	require.NoError(t, err)
	require.False(t, r2.Quote.Blocked)

	assert.Equal(t, start, s.Party().Position)
	assert.Equal(t, 3, r1.Quote.Cost)
	assert.InDelta(t, 2*3.0/6, s.Time(), 1e-9)
	assert.Equal(t, 2.0, s.Party().Members[0].Tokens)
	assert.Equal(t, 2, s.History().Len())
}

func TestMove_BlockedChangesNothing(t *testing.T) {
	s := newSession(t, options{})
	s.Party().Position = hexmath.Coord{}
	before := s.Party().Clone()
	moved := record(s, events.PartyMoved, events.TimeAdvanced)

	res, err := s.Move(hexmath.NW, "")
	require.NoError(t, err)
	assert.True(t, res.Quote.Blocked)
	assert.Equal(t, before, s.Party())
	assert.Zero(t, s.Time())
	assert.Zero(t, s.History().Len())
	assert.Empty(t, *moved)
}

func TestMove_UndoKeepsTokensSpent(t *testing.T) {
	s := newSession(t, options{})
	start := s.Party().Position
	_, err := s.Move(hexmath.SE, "normal")
	require.NoError(t, err)
	tokens := s.Party().Members[0].Tokens
	elapsed := s.Time()

	require.True(t, s.Undo())
	assert.Equal(t, start, s.Party().Position)
	assert.Equal(t, tokens, s.Party().Members[0].Tokens)
	assert.Equal(t, 5.0, tokens)
	assert.Equal(t, elapsed, s.Time())

	require.True(t, s.Redo())
	assert.Equal(t, start.Neighbor(hexmath.SE), s.Party().Position)
	assert.Equal(t, 5.0, s.Party().Members[0].Tokens, "redo does not charge again")
}

func TestMove_TrailblazingLaysTrailAsOneStep(t *testing.T) {
	s := newSession(t, options{})
	start := s.Party().Position

	res, err := s.Move(hexmath.N, "trailblazing")
	require.NoError(t, err)
	assert.True(t, res.TrailLaid)
	v, _ := s.Grid().Trail(start, hexmath.N)
	assert.Equal(t, "footpath", v)
	v, _ = s.Grid().Trail(start.Neighbor(hexmath.N), hexmath.S)
	assert.Equal(t, "footpath", v)
	assert.Equal(t, 1, s.History().Len())

	s.Undo()
	assert.Equal(t, start, s.Party().Position)
	v, _ = s.Grid().Trail(start, hexmath.N)
	assert.Equal(t, grid.NoTrail, v)

	// Walking back along the new trail pays the footpath and lays nothing new.
	s.Redo()
	res, err = s.Move(hexmath.S, "trailblazing")
	require.NoError(t, err)
	assert.False(t, res.TrailLaid)
	// 2 + 1 (trailblazing) + 1 (plains) + 1 (footpath)
	assert.Equal(t, 5, res.Quote.Cost)
}

func TestMove_UnrollableStealthStillReportsMove(t *testing.T) {
	s := newSession(t, options{stealth: true})
	// A subscriber repaints the destination with a biome the catalog lacks,
	// so the stealth check after the move cannot resolve it.
	s.Bus().Subscribe(events.PartyMoved, func(e events.Event) {
		s.Grid().SetBiome(e.Coord, "lava")
	})
	start := s.Party().Position

	res, err := s.Move(hexmath.N, "normal")
	require.NoError(t, err)
	assert.Nil(t, res.Stealth)
	assert.Equal(t, start.Neighbor(hexmath.N), s.Party().Position)
	assert.Equal(t, 1, s.History().Len())
	assert.Greater(t, s.Time(), 0.0)
}

func TestMove_StealthFailurePublishesEncounter(t *testing.T) {
	// plains dc 14 under normal mode
	s := newSession(t, options{faces: []int{13, 14}, stealth: true})
	enc := record(s, events.Encounter)

	res, err := s.Move(hexmath.N, "normal")
	require.NoError(t, err)
	require.NotNil(t, res.Stealth)
	assert.False(t, res.Stealth.Success)
	require.Len(t, *enc, 1)
	assert.Equal(t, s.Party().Position, (*enc)[0].Coord)
	assert.Equal(t, *res.Stealth, (*enc)[0].Payload.(travel.StealthResult))

	res, err = s.Move(hexmath.S, "normal")
	require.NoError(t, err)
	assert.True(t, res.Stealth.Success)
	assert.Len(t, *enc, 1)
}

func TestMove_UnknownMode(t *testing.T) {
	s := newSession(t, options{})
	_, err := s.Move(hexmath.N, "warp")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Zero(t, s.Time())
}

func TestQuote_DefaultMode(t *testing.T) {
	s := newSession(t, options{})
	q, err := s.Quote(hexmath.N, "")
	require.NoError(t, err)
	assert.Equal(t, "normal", q.Mode)
	assert.Equal(t, 3, q.Cost)
}

func TestPaintBiome(t *testing.T) {
	s := newSession(t, options{})
	c := hexmath.Coord{}
	require.NoError(t, s.PaintBiome(c, "forest"))
	require.NoError(t, s.PaintBiome(c, "forest"))
	assert.Equal(t, 1, s.History().Len(), "repainting the same biome records nothing")

	assert.ErrorIs(t, s.PaintBiome(c, "lava"), catalog.ErrNotFound)

	require.NoError(t, s.PaintBiome(hexmath.Coord{Q: 9, R: 9}, "swamp"))
	assert.True(t, s.Grid().Has(hexmath.Coord{Q: 9, R: 9}))
	s.Undo()
	assert.False(t, s.Grid().Has(hexmath.Coord{Q: 9, R: 9}))
}

func TestSetTrail(t *testing.T) {
	s := newSession(t, options{})
	c := hexmath.Coord{Q: 1, R: 1}
	require.NoError(t, s.SetTrail(c, hexmath.NE, "road"))
	v, _ := s.Grid().Trail(c.Neighbor(hexmath.NE), hexmath.SW)
	assert.Equal(t, "road", v)

	require.NoError(t, s.SetTrail(c, hexmath.NE, grid.NoTrail))
	v, _ = s.Grid().Trail(c, hexmath.NE)
	assert.Equal(t, grid.NoTrail, v)

	assert.ErrorIs(t, s.SetTrail(c, hexmath.NE, "canal"), catalog.ErrNotFound)
	assert.ErrorIs(t, s.SetTrail(hexmath.Coord{Q: 7}, hexmath.N, "road"), session.ErrNoTile)
}

func TestBiomeStroke_IsOneUndoStep(t *testing.T) {
	s := newSession(t, options{})
	before := s.Grid().Clone()

	require.NoError(t, s.BeginStroke(session.StrokeBiome, "forest", hexmath.Coord{}))
	s.StrokeTo(hexmath.Coord{Q: 1})
	s.StrokeTo(hexmath.Coord{Q: 2})
	s.StrokeTo(hexmath.Coord{Q: 1})  // revisit
	s.StrokeTo(hexmath.Coord{Q: 20}) // off the map
	b, _ := s.Grid().BiomeAt(hexmath.Coord{})
	assert.Equal(t, "plains", b, "nothing applies before the stroke ends")
	assert.ErrorIs(t, s.PaintBiome(hexmath.Coord{}, "swamp"), session.ErrStrokeOpen)

	require.True(t, s.EndStroke())
	for q := 0; q < 3; q++ {
		b, _ := s.Grid().BiomeAt(hexmath.Coord{Q: q})
		assert.Equal(t, "forest", b)
	}
	assert.False(t, s.Grid().Has(hexmath.Coord{Q: 20}))
	assert.Equal(t, 1, s.History().Len())

	s.Undo()
	assert.True(t, s.Grid().Equal(before))
}

func TestStroke_UndoRedoRefusedWhileOpen(t *testing.T) {
	s := newSession(t, options{})
	require.NoError(t, s.PaintBiome(hexmath.Coord{Q: 2}, "forest"))
	require.NoError(t, s.BeginStroke(session.StrokeBiome, "swamp", hexmath.Coord{}))

	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	b, _ := s.Grid().BiomeAt(hexmath.Coord{Q: 2})
	assert.Equal(t, "forest", b)

	require.True(t, s.EndStroke())
	assert.True(t, s.Undo())
}

func TestTrailStroke(t *testing.T) {
	s := newSession(t, options{})
	before := s.Grid().Clone()
	a, b, c := hexmath.Coord{Q: 0, R: 0}, hexmath.Coord{Q: 0, R: 1}, hexmath.Coord{Q: 1, R: 1}

	require.NoError(t, s.BeginStroke(session.StrokeTrail, "road", a))
	s.StrokeTo(b)
	s.StrokeTo(c)
	s.StrokeTo(b) // back along the same edge: already road within the stroke
	s.StrokeTo(hexmath.Coord{Q: 2, R: -1})
	require.True(t, s.EndStroke())

	v, _ := s.Grid().Trail(a, hexmath.S)
	assert.Equal(t, "road", v)
	v, _ = s.Grid().Trail(b, hexmath.N)
	assert.Equal(t, "road", v)
	v, _ = s.Grid().Trail(b, hexmath.SE)
	assert.Equal(t, "road", v)
	v, _ = s.Grid().Trail(c, hexmath.NW)
	assert.Equal(t, "road", v)

	s.Undo()
	assert.True(t, s.Grid().Equal(before))
	s.Redo()
	v, _ = s.Grid().Trail(c, hexmath.NW)
	assert.Equal(t, "road", v)
}

func TestEraseStroke(t *testing.T) {
	s := newSession(t, options{})
	a, b := hexmath.Coord{Q: 1, R: 0}, hexmath.Coord{Q: 1, R: 1}
	require.NoError(t, s.SetTrail(a, hexmath.S, "highway"))
	withTrail := s.Grid().Clone()

	require.NoError(t, s.BeginStroke(session.StrokeErase, "", a))
	s.StrokeTo(b)
	require.True(t, s.EndStroke())
	v, _ := s.Grid().Trail(b, hexmath.N)
	assert.Equal(t, grid.NoTrail, v)

	s.Undo()
	assert.True(t, s.Grid().Equal(withTrail))
}

func TestStroke_NothingPaintedRecordsNothing(t *testing.T) {
	s := newSession(t, options{})
	require.NoError(t, s.PaintBiome(hexmath.Coord{Q: 2}, "forest"))
	require.True(t, s.Undo())

	require.NoError(t, s.BeginStroke(session.StrokeBiome, "plains", hexmath.Coord{}))
	s.StrokeTo(hexmath.Coord{Q: 1})
	assert.False(t, s.EndStroke())
	assert.False(t, s.Stroking())
	assert.False(t, s.History().InTransaction())
	assert.Zero(t, s.History().Len())
	assert.Equal(t, 1, s.History().RedoLen(), "an empty stroke keeps redo")
}

func TestStroke_Cancel(t *testing.T) {
	s := newSession(t, options{})
	before := s.Grid().Clone()
	require.NoError(t, s.BeginStroke(session.StrokeBiome, "swamp", hexmath.Coord{}))
	s.StrokeTo(hexmath.Coord{Q: 1})
	s.CancelStroke()

	assert.False(t, s.Stroking())
	assert.True(t, s.Grid().Equal(before))
	assert.Zero(t, s.History().Len())
}

func TestStroke_Errors(t *testing.T) {
	s := newSession(t, options{})
	assert.ErrorIs(t, s.BeginStroke(session.StrokeBiome, "lava", hexmath.Coord{}), catalog.ErrNotFound)
	assert.ErrorIs(t, s.BeginStroke(session.StrokeTrail, "canal", hexmath.Coord{}), catalog.ErrNotFound)
	require.NoError(t, s.BeginStroke(session.StrokeTrail, "road", hexmath.Coord{}))
	assert.ErrorIs(t, s.BeginStroke(session.StrokeTrail, "road", hexmath.Coord{}), session.ErrStrokeOpen)
	_, err := s.Move(hexmath.N, "")
	assert.ErrorIs(t, err, session.ErrStrokeOpen)
	assert.False(t, s.Undo())
}

func TestReplaceGrid_ClearsHistory(t *testing.T) {
	s := newSession(t, options{})
	require.NoError(t, s.PaintBiome(hexmath.Coord{}, "forest"))
	got := record(s, events.GridReplaced, events.GridChanged)

	require.NoError(t, s.Generate(session.GenerateOptions{Radius: 2, Biome: "swamp"}))
	assert.Equal(t, 19, s.Grid().Len())
	assert.Zero(t, s.History().Len())
	assert.False(t, s.Undo())
	require.Len(t, *got, 2)
	assert.Equal(t, events.GridReplaced, (*got)[0].Name)
	assert.Equal(t, events.GridChanged, (*got)[1].Name)
}

func TestReplaceGrid_RelocatesStrandedParty(t *testing.T) {
	s := newSession(t, options{})
	s.Party().Position = hexmath.Coord{Q: 2, R: 2}
	require.NoError(t, s.Generate(session.GenerateOptions{Width: 2, Height: 1, Biome: "plains"}))
	assert.Equal(t, hexmath.Coord{}, s.Party().Position)
}

func TestGenerate_Errors(t *testing.T) {
	s := newSession(t, options{})
	assert.ErrorIs(t, s.Generate(session.GenerateOptions{Radius: 2, Biome: "lava"}), catalog.ErrNotFound)
	assert.Error(t, s.Generate(session.GenerateOptions{Biome: "plains"}))
	assert.Equal(t, 9, s.Grid().Len())
}

func TestGenerate_Elevation(t *testing.T) {
	s := newSession(t, options{})
	cfg := grid.DefaultElevationConfig(3)
	require.NoError(t, s.Generate(session.GenerateOptions{Radius: 5, Biome: "plains", Elevation: &cfg}))
	seen := map[int]bool{}
	for _, c := range s.Grid().Coords() {
		tile, _ := s.Grid().Get(c)
		seen[tile.Elevation] = true
	}
	assert.Greater(t, len(seen), 1, "noise should vary elevation")
}

func TestSnapshotRestore(t *testing.T) {
	s := newSession(t, options{})
	require.NoError(t, s.PaintBiome(hexmath.Coord{}, "forest"))
	require.NoError(t, s.SetTrail(hexmath.Coord{}, hexmath.SE, "road"))
	_, err := s.Move(hexmath.N, "normal")
	require.NoError(t, err)

	snap := s.Snapshot("north march")
	assert.Equal(t, "north march", snap.Name)
	assert.Equal(t, 9, len(snap.Map.Tiles))
	again := s.Snapshot("")
	assert.Equal(t, snap.ID, again.ID, "later saves reuse the id")

	other := newSession(t, options{})
	require.NoError(t, other.Restore(snap))
	assert.True(t, other.Grid().Equal(s.Grid()))
	assert.Equal(t, s.Party().Position, other.Party().Position)
	assert.Equal(t, s.Party().Members[1].Tokens, other.Party().Members[1].Tokens)
	assert.Equal(t, s.Time(), other.Time())
	assert.Zero(t, other.History().Len())
	assert.Equal(t, snap.ID, other.Snapshot("").ID)
}

func TestRestore_RejectsUnknownBiome(t *testing.T) {
	s := newSession(t, options{})
	snap := s.Snapshot("x")
	lava := "lava"
	snap.Map.Tiles[0].Biome = &lava
	before := s.Grid().Clone()

	assert.Error(t, s.Restore(snap))
	assert.True(t, s.Grid().Equal(before))
}

func TestImportMap(t *testing.T) {
	s := newSession(t, options{})
	g := grid.New()
	g.GenerateHexRadius(1, "mountain")
	require.NoError(t, s.ImportMap(g.ToDocument()))
	assert.True(t, s.Grid().Equal(g))
	assert.Equal(t, hexmath.Coord{Q: 0, R: -1}, s.Party().Position, "stranded party moves to the first coordinate")
}

func TestPropertyMovesAlwaysChargeAndUndoOnlyPosition(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newSession(t, options{})
		modes := []string{"reckless", "normal", "cautious", "exploring"}
		n := rapid.IntRange(1, 12).Draw(rt, "moves")
		for i := 0; i < n; i++ {
			d := hexmath.Direction(rapid.IntRange(0, 5).Draw(rt, "dir"))
			m := rapid.SampledFrom(modes).Draw(rt, "mode")
			pos, tm := s.Party().Position, s.Time()
			res, err := s.Move(d, m)
			if err != nil {
				rt.Fatal(err)
			}
			if res.Quote.Blocked {
				if s.Party().Position != pos || s.Time() != tm {
					rt.Fatalf("blocked move changed state")
				}
				continue
			}
			if res.Quote.Cost < 1 {
				rt.Fatalf("cost %d", res.Quote.Cost)
			}
		}
		spentTime := s.Time()
		tokens := s.Party().Members[0].Tokens
		for s.Undo() {
		}
		if s.Party().Position != (hexmath.Coord{Q: 1, R: 1}) {
			rt.Fatalf("undo all did not return to start")
		}
		if s.Time() != spentTime || s.Party().Members[0].Tokens != tokens {
			rt.Fatalf("undo restored resources")
		}
	})
}

func TestRest_RestoresTokensKeepsExhaustionAndTime(t *testing.T) {
	s := newSession(t, options{})
	for i := 0; i < 4; i++ {
		_, err := s.Move(hexmath.N, "normal")
		require.NoError(t, err)
		_, err = s.Move(hexmath.S, "normal")
		require.NoError(t, err)
	}
	lira := s.Party().Members[1]
	require.Greater(t, lira.Exhaustion, 0.0)
	exhaustion, elapsed, undoable := lira.Exhaustion, s.Time(), s.History().Len()

	s.Rest()
	for _, m := range s.Party().Members {
		assert.Equal(t, float64(m.MaxTokens()), m.Tokens)
	}
	assert.Equal(t, exhaustion, lira.Exhaustion)
	assert.Equal(t, elapsed, s.Time())
	assert.Equal(t, undoable, s.History().Len())
}
