package session

import (
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/game/edit"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// StrokeKind selects what a drag stroke paints.
type StrokeKind int

const (
	// StrokeBiome paints Value onto every tile the stroke visits.
	StrokeBiome StrokeKind = iota
	// StrokeTrail lays Value along each step between adjacent tiles.
	StrokeTrail
	// StrokeErase clears the trail along each step.
	StrokeErase
)

// String returns the console name of k.
func (k StrokeKind) String() string {
	switch k {
	case StrokeBiome:
		return "biome"
	case StrokeTrail:
		return "trail"
	case StrokeErase:
		return "erase"
	default:
		return fmt.Sprintf("stroke(%d)", int(k))
	}
}

type trailSlot struct {
	c hexmath.Coord
	d hexmath.Direction
}

// stroke tracks one drag. Commands are buffered in the history transaction
// and not yet applied, so the overlays hold the values the buffered commands
// will write; old values are read through them.
type stroke struct {
	kind   StrokeKind
	value  string
	last   hexmath.Coord
	biomes map[hexmath.Coord]string
	trails map[trailSlot]string
}

// BeginStroke starts a drag at c. Everything the stroke paints becomes a
// single undo step when EndStroke is called.
//
// Postcondition: Returns ErrStrokeOpen if a stroke is already running, or an
// ErrNotFound-wrapped error for an unknown biome or trail id.
func (s *Session) BeginStroke(kind StrokeKind, value string, c hexmath.Coord) error {
	if s.stroke != nil {
		return ErrStrokeOpen
	}
	switch kind {
	case StrokeBiome:
		if _, err := s.catalogs.Biomes.Get(value); err != nil {
			return err
		}
	case StrokeTrail:
		if err := s.checkTrail(value); err != nil {
			return err
		}
		value = normalizeTrail(value)
	case StrokeErase:
		value = grid.NoTrail
	default:
		return fmt.Errorf("unknown stroke kind %s", kind)
	}
	s.stroke = &stroke{
		kind:   kind,
		value:  value,
		last:   c,
		biomes: make(map[hexmath.Coord]string),
		trails: make(map[trailSlot]string),
	}
	s.history.Begin()
	if kind == StrokeBiome {
		s.paintAt(c)
	}
	return nil
}

// StrokeTo extends the current stroke to c. Biome strokes paint c when it
// holds a tile. Trail strokes paint the edge from the previous point when c
// is adjacent to it; a jump to a non-adjacent coordinate only re-anchors.
// Without an open stroke the call does nothing.
func (s *Session) StrokeTo(c hexmath.Coord) {
	st := s.stroke
	if st == nil || c == st.last {
		return
	}
	if st.kind == StrokeBiome {
		s.paintAt(c)
		st.last = c
		return
	}
	d, ok := hexmath.DirectionBetween(st.last, c)
	if ok && s.grid.Has(st.last) {
		s.trailAt(st.last, d)
	}
	st.last = c
}

// EndStroke commits the stroke as one undo step. A stroke that changed
// nothing is dropped without touching history.
//
// Postcondition: Returns true if anything was recorded.
func (s *Session) EndStroke() bool {
	if s.stroke == nil {
		return false
	}
	s.stroke = nil
	if s.history.Pending() == 0 {
		s.history.Rollback()
		return false
	}
	return s.history.Commit()
}

// CancelStroke abandons the stroke; nothing it painted is applied.
func (s *Session) CancelStroke() {
	if s.stroke == nil {
		return
	}
	s.stroke = nil
	s.history.Rollback()
}

func (s *Session) paintAt(c hexmath.Coord) {
	st := s.stroke
	old, ok := st.biomes[c]
	if !ok {
		if old, ok = s.grid.BiomeAt(c); !ok {
			return
		}
	}
	if old == st.value {
		return
	}
	st.biomes[c] = st.value
	s.history.Add(&edit.ChangeBiome{Coord: c, Old: old, New: st.value})
}

func (s *Session) trailAt(c hexmath.Coord, d hexmath.Direction) {
	st := s.stroke
	n := c.Neighbor(d)
	old := s.strokeTrail(c, d)
	if old == st.value {
		return
	}
	cmd := &edit.SetTrail{Coord: c, Dir: d, Old: old, New: st.value}
	if s.grid.Has(n) {
		cmd.HasNeighbor = true
		cmd.OldMirror = s.strokeTrail(n, d.Opposite())
		st.trails[trailSlot{n, d.Opposite()}] = st.value
	}
	st.trails[trailSlot{c, d}] = st.value
	s.history.Add(cmd)
}

func (s *Session) strokeTrail(c hexmath.Coord, d hexmath.Direction) string {
	if v, ok := s.stroke.trails[trailSlot{c, d}]; ok {
		return v
	}
	v, _ := s.grid.Trail(c, d)
	return v
}
