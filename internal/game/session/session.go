// Package session owns one campaign's live state: the grid, the party, the
// undo history, the travel engine and the event bus. Every other component
// borrows from it.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/catalog"
	"github.com/cory-johannsen/hexcrawl/internal/game/dice"
	"github.com/cory-johannsen/hexcrawl/internal/game/edit"
	"github.com/cory-johannsen/hexcrawl/internal/game/events"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
	"github.com/cory-johannsen/hexcrawl/internal/game/travel"
)

// ErrStrokeOpen is returned by operations that cannot run while a paint
// stroke is in progress.
var ErrStrokeOpen = errors.New("a paint stroke is in progress")

// ErrNoTile is returned when an operation targets a coordinate with no tile.
var ErrNoTile = errors.New("no tile at coordinate")

// Options configures a new Session.
type Options struct {
	// Catalogs must be non-nil and validated.
	Catalogs *catalog.Catalogs
	// Party must be non-nil.
	Party *party.Party
	// Grid is the initial map. Nil starts with an empty grid.
	Grid *grid.Grid
	// Roller drives stealth checks. Nil uses a crypto-backed roller.
	Roller *dice.Roller
	// Rule is the optional leader-stat cost rule.
	Rule travel.CostRule
	// DefaultMode is used when Move is called with an empty mode id.
	DefaultMode string
	// StealthOnMove rolls a stealth check against every destination.
	StealthOnMove bool
	// DefaultBiome fills tile records that lack a biome on Restore.
	DefaultBiome string
	Logger       *zap.Logger
}

// Session is single-threaded: callers must not use it from more than one
// goroutine at a time.
type Session struct {
	grid          *grid.Grid
	party         *party.Party
	catalogs      *catalog.Catalogs
	history       *edit.History
	engine        *travel.Engine
	bus           *events.Bus
	stroke        *stroke
	defaultMode   string
	stealthOnMove bool
	defaultBiome  string
	campaign      campaignRef
	logger        *zap.Logger
}

// New builds a session from opts.
//
// Postcondition: Returns a ready Session or an error naming the missing option.
func New(opts Options) (*Session, error) {
	if opts.Catalogs == nil {
		return nil, errors.New("session: catalogs are required")
	}
	if opts.Party == nil {
		return nil, errors.New("session: party is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	g := opts.Grid
	if g == nil {
		g = grid.New()
	}
	roller := opts.Roller
	if roller == nil {
		roller = dice.NewRoller(dice.NewCryptoSource(), logger.Named("dice"))
	}
	mode := opts.DefaultMode
	if mode == "" {
		mode = "normal"
	}
	if _, err := opts.Catalogs.Modes.Get(mode); err != nil {
		return nil, fmt.Errorf("session: default mode: %w", err)
	}

	s := &Session{
		grid:          g,
		party:         opts.Party,
		catalogs:      opts.Catalogs,
		bus:           events.NewBus(logger.Named("events")),
		defaultMode:   mode,
		stealthOnMove: opts.StealthOnMove,
		defaultBiome:  opts.DefaultBiome,
		logger:        logger,
	}
	s.history = edit.NewHistory(s, logger.Named("history"))
	var engineOpts []travel.Option
	if opts.Rule != nil {
		engineOpts = append(engineOpts, travel.WithCostRule(opts.Rule))
	}
	s.engine = travel.NewEngine(s, opts.Catalogs, roller, logger.Named("travel"), engineOpts...)
	return s, nil
}

// Grid implements edit.Target and travel.World.
func (s *Session) Grid() *grid.Grid { return s.grid }

// Party implements edit.Target and travel.World.
func (s *Session) Party() *party.Party { return s.party }

// Publish implements edit.Target.
func (s *Session) Publish(e events.Event) { s.bus.Publish(e) }

// Bus and the accessors that follow expose the session's owned parts.
// Callers borrow them and must not retain the grid across ReplaceGrid.
func (s *Session) Bus() *events.Bus            { return s.bus }
func (s *Session) History() *edit.History      { return s.history }
func (s *Session) Engine() *travel.Engine      { return s.engine }
func (s *Session) Catalogs() *catalog.Catalogs { return s.catalogs }
func (s *Session) DefaultMode() string         { return s.defaultMode }
func (s *Session) DefaultBiome() string        { return s.defaultBiome }
func (s *Session) Time() float64               { return s.engine.Time() }
func (s *Session) Stroking() bool              { return s.stroke != nil }

// PaintBiome sets the biome at c as one undo step, creating the tile if
// needed. Painting the biome a tile already has records nothing.
//
// Postcondition: Returns an ErrNotFound-wrapped error for an unknown biome.
func (s *Session) PaintBiome(c hexmath.Coord, biomeID string) error {
	if s.stroke != nil {
		return ErrStrokeOpen
	}
	if _, err := s.catalogs.Biomes.Get(biomeID); err != nil {
		return err
	}
	if cur, ok := s.grid.BiomeAt(c); ok && cur == biomeID {
		return nil
	}
	s.history.Add(edit.NewChangeBiome(s.grid, c, biomeID))
	return nil
}

// SetTrail sets (or, with grid.NoTrail, clears) the trail leaving c in
// direction d as one undo step.
//
// Postcondition: Returns ErrNoTile when c has no tile and an
// ErrNotFound-wrapped error for an unknown trail type.
func (s *Session) SetTrail(c hexmath.Coord, d hexmath.Direction, trailID string) error {
	if s.stroke != nil {
		return ErrStrokeOpen
	}
	if err := s.checkTrail(trailID); err != nil {
		return err
	}
	cur, ok := s.grid.Trail(c, d)
	if !ok {
		return fmt.Errorf("%w %s", ErrNoTile, c)
	}
	if cur == normalizeTrail(trailID) {
		return nil
	}
	s.history.Add(edit.NewSetTrail(s.grid, c, d, trailID))
	return nil
}

func (s *Session) checkTrail(trailID string) error {
	if trailID == "" || trailID == grid.NoTrail {
		return nil
	}
	_, err := s.catalogs.Trails.Get(trailID)
	return err
}

func normalizeTrail(v string) string {
	if v == "" {
		return grid.NoTrail
	}
	return v
}

// Undo reverts the last edit or move. Spent tokens and elapsed time stay
// spent.
func (s *Session) Undo() bool {
	if s.stroke != nil {
		return false
	}
	return s.history.Undo()
}

// Redo re-applies the last undone step.
func (s *Session) Redo() bool {
	if s.stroke != nil {
		return false
	}
	return s.history.Redo()
}

// ReplaceGrid swaps in g wholesale. History is cleared because old commands
// refer to the previous grid. A party standing off the new map is moved to
// its first coordinate.
//
// Precondition: g must be non-nil.
func (s *Session) ReplaceGrid(g *grid.Grid) {
	s.CancelStroke()
	s.grid = g
	s.history.Clear()
	if !g.Has(s.party.Position) {
		if coords := g.Coords(); len(coords) > 0 {
			s.party.Position = coords[0]
		}
	}
	s.logger.Info("grid replaced", zap.Int("tiles", g.Len()))
	s.bus.Publish(events.Event{Name: events.GridReplaced})
	s.bus.Publish(events.Event{Name: events.GridChanged})
}

// GenerateOptions describes a freshly generated map.
type GenerateOptions struct {
	// Radius > 0 selects a hexagon around the origin; otherwise Width x
	// Height selects a rectangle.
	Radius int
	Width  int
	Height int
	Biome  string
	// Elevation, when set, adds cosmetic noise elevation.
	Elevation *grid.ElevationConfig
}

// Generate builds a new grid and replaces the current one.
func (s *Session) Generate(opts GenerateOptions) error {
	if _, err := s.catalogs.Biomes.Get(opts.Biome); err != nil {
		return err
	}
	g := grid.New()
	switch {
	case opts.Radius > 0:
		g.GenerateHexRadius(opts.Radius, opts.Biome)
	case opts.Width > 0 && opts.Height > 0:
		g.GenerateRectangle(opts.Width, opts.Height, opts.Biome)
	default:
		return fmt.Errorf("generate: need a positive radius or width and height")
	}
	if opts.Elevation != nil {
		g.GenerateElevation(*opts.Elevation)
	}
	s.ReplaceGrid(g)
	return nil
}

// Rest restores every member's tokens. Exhaustion and world time are
// unchanged, and nothing is recorded for undo.
func (s *Session) Rest() {
	s.party.Rest()
	s.logger.Info("party rested", zap.Int("members", len(s.party.Members)))
}

// ResetTime sets world time back to zero.
func (s *Session) ResetTime() {
	s.engine.ResetTime()
	s.bus.Publish(events.Event{Name: events.TimeAdvanced, Payload: 0.0})
}
