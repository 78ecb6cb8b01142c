package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/cory-johannsen/hexcrawl/internal/game/command"
	"github.com/cory-johannsen/hexcrawl/internal/game/hexmath"
	"github.com/cory-johannsen/hexcrawl/internal/game/travel"
)

// moveArgs resolves the direction and optional mode of move, quote and the
// compass shortcuts.
func moveArgs(cmd *command.Command, args []string) (hexmath.Direction, string, error) {
	if d, ok := command.MovementDirection(cmd.Name); ok {
		if len(args) > 1 {
			return 0, "", usage(cmd)
		}
		mode := ""
		if len(args) == 1 {
			mode = args[0]
		}
		return d, mode, nil
	}
	if len(args) < 1 || len(args) > 2 {
		return 0, "", usage(cmd)
	}
	d, err := hexmath.ParseDirection(args[0])
	if err != nil {
		return 0, "", err
	}
	mode := ""
	if len(args) == 2 {
		mode = args[1]
	}
	return d, mode, nil
}

func (h *Handler) move(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	d, mode, err := moveArgs(cmd, in.Args)
	if err != nil {
		return "", err
	}
	res, err := h.session.Move(d, mode)
	if err != nil {
		return "", err
	}
	q := res.Quote
	if q.Blocked {
		return fmt.Sprintf("no tile %s of %s; the party stays put", q.Direction, q.From), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "moved %s to %s [%s]: cost %d (%.2f days, %.2f elapsed)",
		q.Direction, q.To, q.Mode, q.Cost, res.Days, h.session.Time())
	if res.TrailLaid {
		m, _ := h.session.Catalogs().Modes.Get(q.Mode)
		fmt.Fprintf(&b, "\nleft a %s behind", m.TrailType)
	}
	if res.Stealth != nil {
		b.WriteString("\n" + describeStealth(*res.Stealth))
	}
	return b.String(), nil
}

func (h *Handler) quote(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	d, mode, err := moveArgs(cmd, in.Args)
	if err != nil {
		return "", err
	}
	q, err := h.session.Quote(d, mode)
	if err != nil {
		return "", err
	}
	if q.Blocked {
		return fmt.Sprintf("%s of %s is off the map", q.Direction, q.From), nil
	}
	return fmt.Sprintf("%s to %s [%s]: raw %.2f, cost %d (%.2f days)",
		q.Direction, q.To, q.Mode, q.Raw, q.Cost, float64(q.Cost)/travel.TokensPerDay), nil
}

func (h *Handler) look(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	s := h.session
	pos := s.Party().Position
	tile, ok := s.Grid().Get(pos)
	if !ok {
		return fmt.Sprintf("the party is at %s, off the map", pos), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, elevation %d\n", pos, tile.BiomeID, tile.Elevation)
	var trails []string
	for _, d := range hexmath.AllDirections {
		if tile.HasTrail(d) {
			trails = append(trails, fmt.Sprintf("%s %s", d, tile.Trail(d)))
		}
	}
	if len(trails) > 0 {
		fmt.Fprintf(&b, "trails: %s\n", strings.Join(trails, ", "))
	}
	for _, d := range hexmath.AllDirections {
		q, err := s.Quote(d, "")
		if err != nil {
			return "", err
		}
		if q.Blocked {
			fmt.Fprintf(&b, "  %-2s %-9s -\n", d, q.To)
			continue
		}
		biome, _ := s.Grid().BiomeAt(q.To)
		fmt.Fprintf(&b, "  %-2s %-9s %-10s cost %d\n", d, q.To, biome, q.Cost)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func describeStealth(r travel.StealthResult) string {
	outcome := "unnoticed"
	if !r.Success {
		outcome = "spotted: encounter!"
	}
	return fmt.Sprintf("stealth: rolled %d vs DC %d, %s", r.Roll, r.DC, outcome)
}

func (h *Handler) stealth(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if len(in.Args) > 1 {
		return "", usage(cmd)
	}
	mode := ""
	if len(in.Args) == 1 {
		mode = in.Args[0]
	}
	r, err := h.session.Stealth(mode)
	if err != nil {
		return "", err
	}
	return describeStealth(r), nil
}

func (h *Handler) time(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	days := h.session.Time()
	return fmt.Sprintf("%.2f days elapsed (%.0f tokens)", days, days*travel.TokensPerDay), nil
}

func (h *Handler) resetTime(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	h.session.ResetTime()
	return "world time reset to 0", nil
}
