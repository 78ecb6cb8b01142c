// Package console turns text command lines into session operations and
// renders the results as plain text.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/game/command"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/session"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// ErrNoStore is returned by storage commands when no store is configured.
var ErrNoStore = errors.New("no campaign store configured")

// Options configures a Handler.
type Options struct {
	// Store backs save, load and campaigns. Nil disables them.
	Store campaign.Store
	// Elevation, when set, adds noise elevation to generated maps.
	Elevation *grid.ElevationConfig
	// Color highlights prompts and errors with ANSI escapes.
	Color  bool
	Logger *zap.Logger
}

type handlerFunc func(ctx context.Context, cmd *command.Command, in command.ParseResult) (string, error)

// Handler executes console lines against one session.
//
// Handler is not safe for concurrent use; neither is the session it drives.
type Handler struct {
	session   *session.Session
	store     campaign.Store
	elevation *grid.ElevationConfig
	registry  *command.Registry
	handlers  map[string]handlerFunc
	color     bool
	logger    *zap.Logger
}

// NewHandler returns a Handler for s.
//
// Precondition: s must be non-nil.
func NewHandler(s *session.Session, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		session:   s,
		store:     opts.Store,
		elevation: opts.Elevation,
		registry:  command.DefaultRegistry(),
		color:     opts.Color,
		logger:    logger,
	}
	h.handlers = map[string]handlerFunc{
		command.HandlerMove:      h.move,
		command.HandlerQuote:     h.quote,
		command.HandlerLook:      h.look,
		command.HandlerStealth:   h.stealth,
		command.HandlerTime:      h.time,
		command.HandlerResetTime: h.resetTime,
		command.HandlerPaint:     h.paint,
		command.HandlerTrail:     h.trail,
		command.HandlerStroke:    h.beginStroke,
		command.HandlerStrokeTo:  h.strokeTo,
		command.HandlerEndStroke: h.endStroke,
		command.HandlerCancel:    h.cancelStroke,
		command.HandlerUndo:      h.undo,
		command.HandlerRedo:      h.redo,
		command.HandlerGenerate:  h.generate,
		command.HandlerParty:     h.party,
		command.HandlerLeader:    h.leader,
		command.HandlerRest:      h.rest,
		command.HandlerSave:      h.save,
		command.HandlerLoad:      h.load,
		command.HandlerCampaigns: h.campaigns,
		command.HandlerExport:    h.exportMap,
		command.HandlerImport:    h.importMap,
		command.HandlerHelp:      h.help,
		command.HandlerQuit:      h.quit,
	}
	return h
}

// Execute runs one line. An empty or comment line returns ("", nil).
//
// Postcondition: Returns the text to show, or an error describing why the
// command did nothing. ErrQuit signals the caller to stop reading.
func (h *Handler) Execute(ctx context.Context, line string) (string, error) {
	in := command.Parse(line)
	if in.Command == "" {
		return "", nil
	}
	cmd, ok := h.registry.Resolve(in.Command)
	if !ok {
		if hint := h.registry.Suggest(in.Command); len(hint) > 0 {
			return "", fmt.Errorf("unknown command %q (did you mean %s?)", in.Command, strings.Join(hint, " or "))
		}
		return "", fmt.Errorf("unknown command %q (try help)", in.Command)
	}
	fn, ok := h.handlers[cmd.Handler]
	if !ok {
		return "", fmt.Errorf("command %q has no handler", cmd.Name)
	}
	out, err := fn(ctx, cmd, in)
	if err != nil && !errors.Is(err, ErrQuit) {
		h.logger.Debug("command failed", zap.String("command", cmd.Name), zap.Error(err))
	}
	return out, err
}

func usage(cmd *command.Command) error {
	return fmt.Errorf("usage: %s %s", cmd.Name, cmd.Usage)
}

func (h *Handler) help(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	byCat := h.registry.CommandsByCategory()
	var b strings.Builder
	for _, cat := range command.CategoryOrder {
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, c := range byCat[cat] {
			if command.IsMovementCommand(c.Name) {
				continue
			}
			syn := c.Name
			if c.Usage != "" {
				syn += " " + c.Usage
			}
			fmt.Fprintf(&b, "  %-44s %s\n", syn, c.Help)
		}
		if cat == command.CategoryTravel {
			fmt.Fprintf(&b, "  %-44s %s\n", "n|ne|se|s|sw|nw [mode]", "Move in a compass direction")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *Handler) quit(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	return "", ErrQuit
}
