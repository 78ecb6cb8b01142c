package command

import (
	"fmt"
	"slices"
	"strings"
)

// Registry resolves console words (names and aliases) to commands.
type Registry struct {
	byWord map[string]*Command
	names  []string
}

// NewRegistry builds a Registry from cmds.
//
// Precondition: No two commands may share a name or alias, and every command
// needs a handler and one of the CategoryOrder categories.
// Postcondition: Returns a Registry or an error naming the first bad command.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Handler == "" {
			return nil, fmt.Errorf("command %q has no handler", cmd.Name)
		}
		if !slices.Contains(CategoryOrder, cmd.Category) {
			return nil, fmt.Errorf("command %q has unknown category %q", cmd.Name, cmd.Category)
		}
		for _, word := range append([]string{cmd.Name}, cmd.Aliases...) {
			word = strings.ToLower(word)
			if prev, ok := r.byWord[word]; ok {
				return nil, fmt.Errorf("%q is claimed by both %q and %q", word, prev.Name, cmd.Name)
			}
			r.byWord[word] = cmd
		}
		r.names = append(r.names, cmd.Name)
	}
	slices.Sort(r.names)
	return r, nil
}

// DefaultRegistry returns a Registry of BuiltinCommands. It panics if the
// built-in table is inconsistent.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias, ignoring case.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[strings.ToLower(word)]
	return cmd, ok
}

// Suggest returns the command names the operator may have meant by word:
// those it is a prefix of, and those one edit away from it. Compass
// shortcuts are left out.
func (r *Registry) Suggest(word string) []string {
	word = strings.ToLower(word)
	if len(word) < 2 {
		return nil
	}
	var out []string
	for _, name := range r.names {
		if IsMovementCommand(name) {
			continue
		}
		if strings.HasPrefix(name, word) || withinOneEdit(word, name) {
			out = append(out, name)
		}
	}
	return out
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byWord[name])
	}
	return out
}

// CommandsByCategory groups Commands by category; each group is sorted by
// name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command, len(CategoryOrder))
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion or substitution.
func withinOneEdit(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > 1 {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if len(a) == len(b) {
		return i == len(a) || a[i+1:] == b[i+1:]
	}
	return a[i:] == b[i+1:]
}
