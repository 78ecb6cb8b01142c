package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed "NdS+M" expression.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// D20 is the single twenty-sided die used by stealth checks.
var D20 = MustParse("1d20")

// Parse parses expressions such as "d20", "2d6" and "3d8-2".
//
// Postcondition: Count >= 1 and Sides >= 2, or a non-nil error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		e.Modifier, _ = strconv.Atoi(m[3])
	}
	if e.Count < 1 || e.Count > 100 {
		return Expression{}, fmt.Errorf("dice: die count in %q must be 1..100", expr)
	}
	if e.Sides < 2 {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", expr)
	}
	return e, nil
}

// MustParse is Parse for package-level constants; it panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}
