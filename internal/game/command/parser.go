package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing for
	// campaign names and paths).
	RawArgs string
}

// Parse splits a text line into a command and arguments. Lines starting with
// '#' are comments and parse as empty.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ParseResult{}
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	rest := strings.TrimSpace(line[spaceIdx+1:])
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{
		Command: strings.ToLower(line[:spaceIdx]),
		Args:    args,
		RawArgs: rest,
	}
}

// ParseCoord reads an axial coordinate from the first two args and returns
// the remaining args.
//
// Postcondition: Returns an error when fewer than two args are given or
// either is not an integer.
func ParseCoord(args []string) (hexmath.Coord, []string, error) {
	if len(args) < 2 {
		return hexmath.Coord{}, args, fmt.Errorf("expected <q> <r>")
	}
	q, err := strconv.Atoi(args[0])
	if err != nil {
		return hexmath.Coord{}, args, fmt.Errorf("q: %q is not an integer", args[0])
	}
	r, err := strconv.Atoi(args[1])
	if err != nil {
		return hexmath.Coord{}, args, fmt.Errorf("r: %q is not an integer", args[1])
	}
	return hexmath.Coord{Q: q, R: r}, args[2:], nil
}

// ParsePositive reads a positive integer argument named name.
func ParsePositive(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: %q is not a positive integer", name, arg)
	}
	return n, nil
}
