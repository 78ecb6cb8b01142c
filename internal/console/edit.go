package console

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/hexcrawl/internal/game/command"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/session"
)

func (h *Handler) paint(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	c, rest, err := command.ParseCoord(in.Args)
	if err != nil || len(rest) != 1 {
		return "", usage(cmd)
	}
	if err := h.session.PaintBiome(c, rest[0]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is now %s", c, rest[0]), nil
}

func (h *Handler) trail(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	c, rest, err := command.ParseCoord(in.Args)
	if err != nil || len(rest) != 2 {
		return "", usage(cmd)
	}
	d, err := hexmath.ParseDirection(rest[0])
	if err != nil {
		return "", err
	}
	if err := h.session.SetTrail(c, d, rest[1]); err != nil {
		return "", err
	}
	if rest[1] == grid.NoTrail {
		return fmt.Sprintf("cleared the trail %s of %s", d, c), nil
	}
	return fmt.Sprintf("%s trail %s of %s", rest[1], d, c), nil
}

var strokeKinds = map[string]session.StrokeKind{
	"biome": session.StrokeBiome,
	"trail": session.StrokeTrail,
	"erase": session.StrokeErase,
}

func (h *Handler) beginStroke(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if len(in.Args) < 1 {
		return "", usage(cmd)
	}
	kind, ok := strokeKinds[in.Args[0]]
	if !ok {
		return "", usage(cmd)
	}
	args := in.Args[1:]
	value := ""
	if kind != session.StrokeErase {
		if len(args) != 3 {
			return "", usage(cmd)
		}
		value, args = args[0], args[1:]
	}
	c, rest, err := command.ParseCoord(args)
	if err != nil || len(rest) != 0 {
		return "", usage(cmd)
	}
	if err := h.session.BeginStroke(kind, value, c); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s stroke started at %s", kind, c), nil
}

func (h *Handler) strokeTo(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if !h.session.Stroking() {
		return "", fmt.Errorf("no stroke in progress")
	}
	c, rest, err := command.ParseCoord(in.Args)
	if err != nil || len(rest) != 0 {
		return "", usage(cmd)
	}
	h.session.StrokeTo(c)
	return fmt.Sprintf("stroke at %s", c), nil
}

func (h *Handler) endStroke(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	if !h.session.Stroking() {
		return "", fmt.Errorf("no stroke in progress")
	}
	if h.session.EndStroke() {
		return "stroke recorded", nil
	}
	return "stroke changed nothing", nil
}

func (h *Handler) cancelStroke(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	if !h.session.Stroking() {
		return "", fmt.Errorf("no stroke in progress")
	}
	h.session.CancelStroke()
	return "stroke abandoned", nil
}

func (h *Handler) undo(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	if h.session.Stroking() {
		return "", session.ErrStrokeOpen
	}
	if !h.session.Undo() {
		return "nothing to undo", nil
	}
	return "undone", nil
}

func (h *Handler) redo(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	if h.session.Stroking() {
		return "", session.ErrStrokeOpen
	}
	if !h.session.Redo() {
		return "nothing to redo", nil
	}
	return "redone", nil
}

func (h *Handler) generate(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	args := in.Args
	if len(args) < 2 {
		return "", usage(cmd)
	}
	opts := session.GenerateOptions{Biome: h.session.DefaultBiome(), Elevation: h.elevation}
	switch args[0] {
	case "rect", "rectangle":
		if len(args) < 3 || len(args) > 4 {
			return "", usage(cmd)
		}
		var err error
		if opts.Width, err = command.ParsePositive("width", args[1]); err != nil {
			return "", err
		}
		if opts.Height, err = command.ParsePositive("height", args[2]); err != nil {
			return "", err
		}
		args = args[3:]
	case "radius", "hex":
		if len(args) > 3 {
			return "", usage(cmd)
		}
		var err error
		if opts.Radius, err = command.ParsePositive("radius", args[1]); err != nil {
			return "", err
		}
		args = args[2:]
	default:
		return "", usage(cmd)
	}
	if len(args) == 1 {
		opts.Biome = args[0]
	}
	if opts.Biome == "" {
		return "", fmt.Errorf("generate: name a biome")
	}
	if err := h.session.Generate(opts); err != nil {
		return "", err
	}
	return fmt.Sprintf("generated %d %s tiles; party at %s",
		h.session.Grid().Len(), opts.Biome, h.session.Party().Position), nil
}
