// Package hexmath provides axial hex coordinates, the six fixed neighbor
// directions, and hex distance.
package hexmath

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is an axial hex coordinate. The third cube coordinate is S() = -Q-R.
type Coord struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// Origin is the axial coordinate (0, 0).
var Origin = Coord{}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}
}

// Neighbor returns the coordinate one step from c in direction d.
//
// Precondition: d.Valid().
func (c Coord) Neighbor(d Direction) Coord {
	return c.Add(d.Vector())
}

// Neighbors returns the six adjacent coordinates in direction order.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, v := range vectors {
		out[i] = c.Add(v)
	}
	return out
}

// String returns "(q,r)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

// Distance returns the hex distance between a and b:
// max(|dq|, |dr|, |ds|).
//
// Postcondition: Distance(a, b) == Distance(b, a) and Distance(a, a) == 0.
func Distance(a, b Coord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction indexes the six neighbor directions in fixed order.
type Direction int

// The six directions. Direction i and (i+3) mod 6 are opposites.
const (
	N Direction = iota
	NE
	SE
	S
	SW
	NW
)

// DirectionCount is the number of neighbor directions.
const DirectionCount = 6

// AllDirections lists every direction in index order.
var AllDirections = [DirectionCount]Direction{N, NE, SE, S, SW, NW}

var vectors = [DirectionCount]Coord{
	{Q: 0, R: -1}, // N
	{Q: 1, R: -1}, // NE
	{Q: 1, R: 0},  // SE
	{Q: 0, R: 1},  // S
	{Q: -1, R: 1}, // SW
	{Q: -1, R: 0}, // NW
}

var shortNames = [DirectionCount]string{"n", "ne", "se", "s", "sw", "nw"}

var longNames = [DirectionCount]string{"north", "northeast", "southeast", "south", "southwest", "northwest"}

// Valid reports whether d is in 0..5.
func (d Direction) Valid() bool {
	return d >= 0 && d < DirectionCount
}

// Vector returns the axial offset for d.
//
// Precondition: d.Valid(). Panics otherwise; an out-of-range index is a
// programming error.
func (d Direction) Vector() Coord {
	d.mustValid()
	return vectors[d]
}

// Opposite returns (d+3) mod 6.
//
// Precondition: d.Valid().
// Postcondition: d.Opposite().Opposite() == d.
func (d Direction) Opposite() Direction {
	d.mustValid()
	return (d + 3) % DirectionCount
}

// String returns the upper-case short name ("N", "NE", ...).
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return strings.ToUpper(shortNames[d])
}

// LongName returns the lower-case compass name ("north", ...).
//
// Precondition: d.Valid().
func (d Direction) LongName() string {
	d.mustValid()
	return longNames[d]
}

func (d Direction) mustValid() {
	if !d.Valid() {
		panic(fmt.Sprintf("hexmath: direction index %d out of range 0..5", int(d)))
	}
}

// DirectionVector returns the axial offset for direction index i.
//
// Precondition: 0 <= i < 6.
func DirectionVector(i int) Coord {
	return Direction(i).Vector()
}

// Opposite returns (i+3) mod 6.
//
// Precondition: 0 <= i < 6.
func Opposite(i int) int {
	return int(Direction(i).Opposite())
}

// ParseDirection resolves a direction from its short name ("ne"), long name
// ("northeast") or index ("1"). Matching is case-insensitive.
//
// Postcondition: Returns a valid Direction or a non-nil error.
func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i := range AllDirections {
		if key == shortNames[i] || key == longNames[i] {
			return Direction(i), nil
		}
	}
	if n, err := strconv.Atoi(key); err == nil && Direction(n).Valid() {
		return Direction(n), nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// DirectionBetween returns the direction d with from.Neighbor(d) == to.
//
// Postcondition: Returns (d, true) when from and to are adjacent, or
// (0, false) otherwise.
func DirectionBetween(from, to Coord) (Direction, bool) {
	delta := Coord{Q: to.Q - from.Q, R: to.R - from.R}
	for i, v := range vectors {
		if v == delta {
			return Direction(i), true
		}
	}
	return 0, false
}
