package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/edit"
	"github.com/cory-johannsen/hexcrawl/internal/game/events"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/travel"
)

// MoveResult reports what a move did.
type MoveResult struct {
	Quote travel.Quote
	// Days is the world time the move consumed.
	Days float64
	// TrailLaid is set when the travel mode laid a trail behind the party.
	TrailLaid bool
	// Stealth is set when a stealth check was rolled.
	Stealth *travel.StealthResult
}

// Quote prices a move without performing it. An empty modeID selects the
// default mode.
func (s *Session) Quote(d hexmath.Direction, modeID string) (travel.Quote, error) {
	if modeID == "" {
		modeID = s.defaultMode
	}
	return s.engine.MoveDir(d, modeID)
}

// Move moves the party one hex in direction d.
//
// A blocked move changes nothing. Otherwise the cost is charged to every
// member and world time advances; neither can be undone. The position change,
// plus the trail a trail-laying mode leaves behind, is recorded as one undo
// step. With stealth-on-move enabled a failed check against the destination
// biome publishes an encounter event. A stealth check that cannot be rolled
// is logged and leaves Stealth nil; the move itself has already happened.
func (s *Session) Move(d hexmath.Direction, modeID string) (MoveResult, error) {
	if s.stroke != nil {
		return MoveResult{}, ErrStrokeOpen
	}
	if modeID == "" {
		modeID = s.defaultMode
	}
	q, err := s.engine.MoveDir(d, modeID)
	if err != nil {
		return MoveResult{}, err
	}
	res := MoveResult{Quote: q}
	if q.Blocked {
		return res, nil
	}
	mode, err := s.catalogs.Modes.Get(modeID)
	if err != nil {
		return MoveResult{}, err
	}

	res.Days = s.engine.ApplyMovementCost(q.Cost)
	s.bus.Publish(events.Event{Name: events.TimeAdvanced, Payload: s.engine.Time()})

	s.history.Begin()
	if mode.LaysTrail() {
		if cur, _ := s.grid.Trail(q.From, d); cur != mode.TrailType {
			s.history.Add(edit.NewSetTrail(s.grid, q.From, d, mode.TrailType))
			res.TrailLaid = true
		}
	}
	s.history.Add(&edit.MoveParty{From: q.From, To: q.To})
	s.history.Commit()

	s.logger.Info("party moved",
		zap.Stringer("from", q.From),
		zap.Stringer("to", q.To),
		zap.String("mode", modeID),
		zap.Int("cost", q.Cost),
		zap.Float64("time", s.engine.Time()),
	)

	if s.stealthOnMove {
		sr, err := s.Stealth(modeID)
		if err != nil {
			s.logger.Warn("stealth check after move failed",
				zap.Stringer("at", q.To),
				zap.Error(err),
			)
			return res, nil
		}
		res.Stealth = &sr
	}
	return res, nil
}

// Stealth rolls a stealth check for the biome under the party. A failed
// check publishes an encounter event carrying the result.
func (s *Session) Stealth(modeID string) (travel.StealthResult, error) {
	if modeID == "" {
		modeID = s.defaultMode
	}
	biomeID, ok := s.grid.BiomeAt(s.party.Position)
	if !ok {
		return travel.StealthResult{}, ErrNoTile
	}
	res, err := s.engine.StealthCheck(biomeID, modeID)
	if err != nil {
		return travel.StealthResult{}, err
	}
	if !res.Success {
		s.bus.Publish(events.Event{Name: events.Encounter, Coord: s.party.Position, Payload: res})
	}
	return res, nil
}
