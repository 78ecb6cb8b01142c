// Package travel prices movement across the hex map, spends party
// resources, tracks world time and resolves stealth checks.
package travel

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/catalog"
	"github.com/cory-johannsen/hexcrawl/internal/game/dice"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
)

// TokensPerDay is the number of cost tokens that make one in-world day.
const TokensPerDay = 6

// BaseCost is the constant term of every move's raw cost.
const BaseCost = 2.0

// World exposes the state the engine reads. The engine borrows it and never
// keeps copies.
type World interface {
	Grid() *grid.Grid
	Party() *party.Party
}

// Quote is the priced outcome of a prospective move. A blocked quote has no
// cost and must not be applied.
type Quote struct {
	From      hexmath.Coord
	To        hexmath.Coord
	Direction hexmath.Direction
	Mode      string
	Raw       float64
	Cost      int
	Blocked   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCostRule installs an optional leader-stat rule applied to the raw
// cost before rounding.
func WithCostRule(rule CostRule) Option {
	return func(e *Engine) { e.rule = rule }
}

// Engine prices moves and applies their cost. It owns only the world clock.
type Engine struct {
	world    World
	catalogs *catalog.Catalogs
	roller   *dice.Roller
	rule     CostRule
	days     float64
	logger   *zap.Logger
}

// NewEngine returns an engine over world.
//
// Precondition: world, catalogs and roller must be non-nil.
func NewEngine(world World, catalogs *catalog.Catalogs, roller *dice.Roller, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{world: world, catalogs: catalogs, roller: roller, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalogs returns the reference libraries the engine prices against.
func (e *Engine) Catalogs() *catalog.Catalogs {
	return e.catalogs
}

// MoveDir prices a one-hex move of the party in direction d under modeID.
// Nothing is mutated.
//
// Precondition: d.Valid().
// Postcondition: Returns a blocked quote with nil error when the destination
// has no tile; an ErrNotFound-wrapped error when modeID, the destination
// biome or a source trail type does not resolve; otherwise Cost >= 1.
func (e *Engine) MoveDir(d hexmath.Direction, modeID string) (Quote, error) {
	from := e.world.Party().Position
	q := Quote{From: from, To: from.Neighbor(d), Direction: d, Mode: modeID}
	if _, err := e.catalogs.Modes.Get(modeID); err != nil {
		return Quote{}, err
	}
	if !e.world.Grid().Has(q.To) {
		q.Blocked = true
		e.logger.Debug("move blocked",
			zap.Stringer("from", from),
			zap.Stringer("direction", d),
		)
		return q, nil
	}
	raw, cost, err := e.Cost(from, d, modeID)
	if err != nil {
		return Quote{}, err
	}
	q.Raw, q.Cost = raw, cost
	return q, nil
}

// Cost computes the price of moving from src in direction d:
//
//	raw  = 2 + mode.speed_mod + dest.move_difficulty + trail_mod(src, d)
//	cost = max(round(raw), 1)
//
// Rounding is half-to-even. A configured CostRule adjusts raw before rounding.
//
// Precondition: the destination tile exists.
func (e *Engine) Cost(src hexmath.Coord, d hexmath.Direction, modeID string) (float64, int, error) {
	g := e.world.Grid()
	mode, err := e.catalogs.Modes.Get(modeID)
	if err != nil {
		return 0, 0, err
	}
	dst := src.Neighbor(d)
	biomeID, ok := g.BiomeAt(dst)
	if !ok {
		return 0, 0, fmt.Errorf("pricing move to %s: no tile", dst)
	}
	biome, err := e.catalogs.Biomes.Get(biomeID)
	if err != nil {
		return 0, 0, err
	}
	trailMod, err := e.trailMod(src, d)
	if err != nil {
		return 0, 0, err
	}

	raw := BaseCost + mode.SpeedMod + biome.MoveDifficulty + trailMod
	if e.rule != nil {
		adjusted, err := e.rule.Adjust(raw, RuleInput{
			Leader: e.world.Party().Leader(),
			Mode:   mode,
			Biome:  biome,
		})
		if err != nil {
			return 0, 0, fmt.Errorf("applying cost rule: %w", err)
		}
		raw = adjusted
	}
	cost := max(int(math.RoundToEven(raw)), 1)

	e.logger.Debug("move priced",
		zap.Stringer("from", src),
		zap.Stringer("to", dst),
		zap.String("mode", modeID),
		zap.String("biome", biomeID),
		zap.Float64("speed_mod", mode.SpeedMod),
		zap.Float64("move_difficulty", biome.MoveDifficulty),
		zap.Float64("trail_mod", trailMod),
		zap.Float64("raw", raw),
		zap.Int("cost", cost),
	)
	return raw, cost, nil
}

// trailMod returns the cost_mod of the trail leaving src in direction d, or
// 0 when there is no trail or no source tile.
func (e *Engine) trailMod(src hexmath.Coord, d hexmath.Direction) (float64, error) {
	v, ok := e.world.Grid().Trail(src, d)
	if !ok || v == grid.NoTrail {
		return 0, nil
	}
	tt, err := e.catalogs.Trails.Get(v)
	if err != nil {
		return 0, err
	}
	return tt.CostMod, nil
}

// ApplyMovementCost charges every party member cost tokens and advances
// world time by cost/TokensPerDay days. Neither effect can be undone.
//
// Postcondition: Returns the number of days advanced.
func (e *Engine) ApplyMovementCost(cost int) float64 {
	e.world.Party().ApplyCost(float64(cost))
	days := float64(cost) / TokensPerDay
	e.days += days
	e.logger.Debug("movement cost applied",
		zap.Int("cost", cost),
		zap.Float64("days", days),
		zap.Float64("time", e.days),
	)
	return days
}

// Time returns the accumulated world time in days.
func (e *Engine) Time() float64 {
	return e.days
}

// ResetTime sets world time back to zero.
func (e *Engine) ResetTime() {
	e.days = 0
}

// SetTime restores world time, as when loading a saved campaign.
func (e *Engine) SetTime(days float64) {
	e.days = days
}
