// Package party models the travelling party: its members' travel tokens and
// exhaustion, its leader and its shared map position.
package party

import (
	"fmt"
	"math"
)

// Member is one traveller.
//
// Tokens starts at MaxTokens(); Exhaustion starts at 0 and never decreases.
type Member struct {
	Name       string
	Speed      int
	Con        int
	Tokens     float64
	Exhaustion float64
}

// NewMember returns a rested member with full tokens.
//
// Precondition: name must be non-empty.
func NewMember(name string, speed, con int) (*Member, error) {
	if name == "" {
		return nil, fmt.Errorf("party member name must not be empty")
	}
	m := &Member{Name: name, Speed: speed, Con: con}
	m.Tokens = float64(m.MaxTokens())
	return m, nil
}

// MaxTokens returns floor(min(speed*2/5, con*3/5)).
func (m *Member) MaxTokens() int {
	v := math.Floor(math.Min(float64(m.Speed)*2/5, float64(m.Con)*3/5))
	if v < 0 {
		return 0
	}
	return int(v)
}

// ApplyCost spends cost tokens. When tokens run short they drop to zero and
// the shortfall is added to Exhaustion.
//
// Precondition: cost >= 0.
// Postcondition: Tokens >= 0; Exhaustion never decreases.
func (m *Member) ApplyCost(cost float64) {
	if m.Tokens >= cost {
		m.Tokens -= cost
		return
	}
	m.Exhaustion += cost - m.Tokens
	m.Tokens = 0
}

// Rest restores tokens to MaxTokens. Exhaustion is untouched.
func (m *Member) Rest() {
	m.Tokens = float64(m.MaxTokens())
}

// String renders a one-line status.
func (m *Member) String() string {
	return fmt.Sprintf("%s (speed %d, con %d): tokens %.1f/%d, exhaustion %.1f",
		m.Name, m.Speed, m.Con, m.Tokens, m.MaxTokens(), m.Exhaustion)
}
