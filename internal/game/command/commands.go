// Package command provides the console command registry, parser, and
// built-in command definitions.
package command

import (
	"strings"

	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
)

// Categories for organizing commands in help output.
const (
	CategoryTravel  = "travel"
	CategoryEdit    = "edit"
	CategoryParty   = "party"
	CategoryStorage = "storage"
	CategorySystem  = "system"
)

// CategoryOrder is the order help lists categories in.
var CategoryOrder = []string{CategoryTravel, CategoryEdit, CategoryParty, CategoryStorage, CategorySystem}

// Handler identifiers mapping commands to console handlers.
const (
	HandlerMove      = "move"
	HandlerQuote     = "quote"
	HandlerLook      = "look"
	HandlerStealth   = "stealth"
	HandlerTime      = "time"
	HandlerResetTime = "reset-time"
	HandlerPaint     = "paint"
	HandlerTrail     = "trail"
	HandlerStroke    = "stroke"
	HandlerStrokeTo  = "to"
	HandlerEndStroke = "end"
	HandlerCancel    = "cancel"
	HandlerUndo      = "undo"
	HandlerRedo      = "redo"
	HandlerGenerate  = "generate"
	HandlerParty     = "party"
	HandlerLeader    = "leader"
	HandlerRest      = "rest"
	HandlerSave      = "save"
	HandlerLoad      = "load"
	HandlerCampaigns = "campaigns"
	HandlerExport    = "export"
	HandlerImport    = "import"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help, without the name.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the console handler.
	Handler string
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	cmds := []Command{
		{Name: "move", Aliases: []string{"go", "m"}, Usage: "<dir> [mode]", Help: "Move the party one hex", Category: CategoryTravel, Handler: HandlerMove},
		{Name: "quote", Aliases: []string{"cost"}, Usage: "<dir> [mode]", Help: "Price a move without making it", Category: CategoryTravel, Handler: HandlerQuote},
		{Name: "look", Aliases: []string{"l"}, Help: "Describe the party's hex and its neighbors", Category: CategoryTravel, Handler: HandlerLook},
		{Name: "stealth", Usage: "[mode]", Help: "Roll a stealth check in the current biome", Category: CategoryTravel, Handler: HandlerStealth},
		{Name: "time", Aliases: []string{"t"}, Help: "Show elapsed world time", Category: CategoryTravel, Handler: HandlerTime},
		{Name: "reset-time", Help: "Set world time back to zero", Category: CategoryTravel, Handler: HandlerResetTime},

		{Name: "paint", Usage: "<q> <r> <biome>", Help: "Set the biome of one hex", Category: CategoryEdit, Handler: HandlerPaint},
		{Name: "trail", Usage: "<q> <r> <dir> <type|none>", Help: "Set or clear the trail along one edge", Category: CategoryEdit, Handler: HandlerTrail},
		{Name: "stroke", Usage: "<biome|trail|erase> [value] <q> <r>", Help: "Start a drag stroke at a hex", Category: CategoryEdit, Handler: HandlerStroke},
		{Name: "to", Usage: "<q> <r>", Help: "Extend the open stroke to a hex", Category: CategoryEdit, Handler: HandlerStrokeTo},
		{Name: "end", Help: "Finish the open stroke as one undo step", Category: CategoryEdit, Handler: HandlerEndStroke},
		{Name: "cancel", Help: "Abandon the open stroke", Category: CategoryEdit, Handler: HandlerCancel},
		{Name: "undo", Aliases: []string{"u"}, Help: "Undo the last edit or move", Category: CategoryEdit, Handler: HandlerUndo},
		{Name: "redo", Aliases: []string{"r"}, Help: "Redo the last undone step", Category: CategoryEdit, Handler: HandlerRedo},
		{Name: "generate", Aliases: []string{"gen"}, Usage: "rect <w> <h> [biome] | radius <n> [biome]", Help: "Replace the map with a generated one", Category: CategoryEdit, Handler: HandlerGenerate},

		{Name: "party", Aliases: []string{"p"}, Help: "Show members, tokens and exhaustion", Category: CategoryParty, Handler: HandlerParty},
		{Name: "leader", Usage: "<index>", Help: "Choose the member whose stats drive cost rules", Category: CategoryParty, Handler: HandlerLeader},
		{Name: "rest", Help: "Restore every member's tokens", Category: CategoryParty, Handler: HandlerRest},

		{Name: "save", Usage: "[name]", Help: "Save the campaign", Category: CategoryStorage, Handler: HandlerSave},
		{Name: "load", Usage: "<id>", Help: "Load a saved campaign", Category: CategoryStorage, Handler: HandlerLoad},
		{Name: "campaigns", Aliases: []string{"ls"}, Help: "List saved campaigns", Category: CategoryStorage, Handler: HandlerCampaigns},
		{Name: "export", Usage: "<path>", Help: "Write the map as a JSON document (.zst compresses)", Category: CategoryStorage, Handler: HandlerExport},
		{Name: "import", Usage: "<path>", Help: "Replace the map with a JSON map document", Category: CategoryStorage, Handler: HandlerImport},

		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the console", Category: CategorySystem, Handler: HandlerQuit},
	}
	// One shortcut per compass direction: "ne [mode]" moves north-east.
	for _, d := range hexmath.AllDirections {
		cmds = append(cmds, Command{
			Name:     d.LongName(),
			Aliases:  []string{shortName(d)},
			Usage:    "[mode]",
			Help:     "Move " + d.LongName(),
			Category: CategoryTravel,
			Handler:  HandlerMove,
		})
	}
	return cmds
}

func shortName(d hexmath.Direction) string {
	return strings.ToLower(d.String())
}

// IsMovementCommand reports whether name is a compass direction shortcut.
func IsMovementCommand(name string) bool {
	_, ok := MovementDirection(name)
	return ok
}

// MovementDirection returns the direction a shortcut command moves in.
func MovementDirection(name string) (hexmath.Direction, bool) {
	for _, d := range hexmath.AllDirections {
		if name == d.LongName() || name == shortName(d) {
			return d, true
		}
	}
	return 0, false
}
