package party

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// ErrEmpty is returned when a party would have no members.
var ErrEmpty = errors.New("party has no members")

// Party is an ordered list of members sharing one map position.
type Party struct {
	Members     []*Member
	LeaderIndex int
	Position    hexmath.Coord
}

// New returns a party at the origin led by its first member.
//
// Precondition: members must be non-empty.
func New(members []*Member) (*Party, error) {
	if len(members) == 0 {
		return nil, ErrEmpty
	}
	return &Party{Members: members}, nil
}

// Leader returns the member at LeaderIndex.
func (p *Party) Leader() *Member {
	return p.Members[p.LeaderIndex]
}

// SetLeader makes the member at index the leader.
//
// Postcondition: Returns an error and leaves the leader unchanged when index is out of range.
func (p *Party) SetLeader(index int) error {
	if index < 0 || index >= len(p.Members) {
		return fmt.Errorf("leader index %d out of range 0..%d", index, len(p.Members)-1)
	}
	p.LeaderIndex = index
	return nil
}

// ApplyCost charges every member the full cost. The cost is not split.
//
// This is not reversible.
func (p *Party) ApplyCost(cost float64) {
	for _, m := range p.Members {
		m.ApplyCost(cost)
	}
}

// Rest restores every member's tokens.
func (p *Party) Rest() {
	for _, m := range p.Members {
		m.Rest()
	}
}

// Clone returns a deep copy of p.
func (p *Party) Clone() *Party {
	c := &Party{LeaderIndex: p.LeaderIndex, Position: p.Position}
	c.Members = make([]*Member, len(p.Members))
	for i, m := range p.Members {
		cp := *m
		c.Members[i] = &cp
	}
	return c
}
