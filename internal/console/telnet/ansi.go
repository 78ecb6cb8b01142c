// Package telnet serves the hexcrawl command console to a single telnet
// operator.
package telnet

// ANSI escape codes used by the console.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
// Empty text is returned unchanged.
//
// Precondition: color must be a valid ANSI escape sequence.
func Colorize(color, text string) string {
	if text == "" {
		return text
	}
	return color + text + Reset
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
