package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/command"
	"github.com/cory-johannsen/hexcrawl/internal/game/session"
	"github.com/cory-johannsen/hexcrawl/internal/storage/file"
)

func (h *Handler) save(ctx context.Context, _ *command.Command, in command.ParseResult) (string, error) {
	if h.store == nil {
		return "", ErrNoStore
	}
	if h.session.Stroking() {
		return "", session.ErrStrokeOpen
	}
	c := h.session.Snapshot(in.RawArgs)
	if c.Name == "" {
		return "", fmt.Errorf("usage: save <name> (the first save needs a name)")
	}
	if err := h.store.Save(ctx, c); err != nil {
		return "", fmt.Errorf("saving %q: %w", c.Name, err)
	}
	h.logger.Info("campaign saved", zap.String("id", c.ID.String()), zap.String("name", c.Name))
	return fmt.Sprintf("saved %q as %s", c.Name, c.ID), nil
}

func (h *Handler) load(ctx context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if h.store == nil {
		return "", ErrNoStore
	}
	if len(in.Args) != 1 {
		return "", usage(cmd)
	}
	id, err := uuid.Parse(in.Args[0])
	if err != nil {
		return "", fmt.Errorf("campaign id: %w", err)
	}
	c, err := h.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := h.session.Restore(c); err != nil {
		return "", err
	}
	return fmt.Sprintf("loaded %q: %d tiles, %.2f days elapsed", c.Name, len(c.Map.Tiles), c.TimeDays), nil
}

func (h *Handler) campaigns(ctx context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	if h.store == nil {
		return "", ErrNoStore
	}
	list, err := h.store.List(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "no saved campaigns", nil
	}
	var b strings.Builder
	for _, s := range list {
		fmt.Fprintf(&b, "%s  %-24s %s  %d tiles\n", s.ID, s.Name, s.SavedAt.Format("2006-01-02 15:04"), s.Tiles)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *Handler) exportMap(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if in.RawArgs == "" {
		return "", usage(cmd)
	}
	doc := h.session.Grid().ToDocument()
	if err := file.ExportMap(in.RawArgs, doc); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d tiles to %s", len(doc.Tiles), in.RawArgs), nil
}

func (h *Handler) importMap(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if in.RawArgs == "" {
		return "", usage(cmd)
	}
	doc, err := file.ImportMap(in.RawArgs)
	if err != nil {
		return "", err
	}
	if err := h.session.ImportMap(doc); err != nil {
		return "", err
	}
	return fmt.Sprintf("imported %d tiles from %s", h.session.Grid().Len(), in.RawArgs), nil
}
