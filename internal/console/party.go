package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/hexcrawl/internal/game/command"
)

func (h *Handler) party(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	p := h.session.Party()
	var b strings.Builder
	fmt.Fprintf(&b, "party at %s\n", p.Position)
	for i, m := range p.Members {
		marker := " "
		if i == p.LeaderIndex {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", marker, i, m)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *Handler) leader(_ context.Context, cmd *command.Command, in command.ParseResult) (string, error) {
	if len(in.Args) != 1 {
		return "", usage(cmd)
	}
	i, err := strconv.Atoi(in.Args[0])
	if err != nil {
		return "", usage(cmd)
	}
	p := h.session.Party()
	if err := p.SetLeader(i); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s now leads", p.Leader().Name), nil
}

func (h *Handler) rest(_ context.Context, _ *command.Command, _ command.ParseResult) (string, error) {
	h.session.Rest()
	return "the party rests; tokens restored", nil
}
