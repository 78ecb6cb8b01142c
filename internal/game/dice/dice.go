// Package dice provides the random source behind stealth checks and
// encounter rolls, plus a small dice expression evaluator.
package dice

import (
	"fmt"
	"strings"
)

// RollResult records one evaluated expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of the dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d20+2: [14] = 16".
func (r RollResult) String() string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s: [%s] = %d", r.Expression, strings.Join(parts, " "), r.Total())
}

// Source supplies uniformly distributed integers.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
