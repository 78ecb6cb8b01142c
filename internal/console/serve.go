package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/console/telnet"
)

// Prompt is written before every command line.
const Prompt = "> "

// Terminal is a line-oriented operator connection. *telnet.Conn satisfies it.
type Terminal interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

type streamTerminal struct {
	sc *bufio.Scanner
	w  io.Writer
}

// NewStreamTerminal returns a Terminal reading lines from r and writing to w.
func NewStreamTerminal(r io.Reader, w io.Writer) Terminal {
	return &streamTerminal{sc: bufio.NewScanner(r), w: w}
}

func (t *streamTerminal) ReadLine() (string, error) {
	if t.sc.Scan() {
		return t.sc.Text(), nil
	}
	if err := t.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (t *streamTerminal) WriteLine(text string) error {
	_, err := fmt.Fprintln(t.w, text)
	return err
}

func (t *streamTerminal) WritePrompt(prompt string) error {
	_, err := fmt.Fprint(t.w, prompt)
	return err
}

// Serve runs the command loop on term until quit, end of input or ctx is
// done. Command errors are written as "error: ..." lines and do not end the
// loop.
//
// Postcondition: Returns nil on quit, EOF or cancellation; otherwise the
// terminal's read or write error.
func (h *Handler) Serve(ctx context.Context, term Terminal) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := term.WritePrompt(h.style(telnet.Cyan, Prompt)); err != nil {
			return err
		}
		line, err := term.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		res, err := h.Execute(ctx, line)
		switch {
		case errors.Is(err, ErrQuit):
			h.logger.Debug("operator quit")
			return nil
		case err != nil:
			h.logger.Debug("command failed", zap.String("line", line), zap.Error(err))
			err = term.WriteLine(h.style(telnet.Red, "error: "+err.Error()))
		case res != "":
			err = term.WriteLine(res)
		}
		if err != nil {
			return err
		}
	}
}

// HandleSession implements telnet.SessionHandler.
func (h *Handler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	if err := conn.WriteLine(h.style(telnet.Bold, "hexcrawl console; type help for commands")); err != nil {
		return err
	}
	return h.Serve(ctx, conn)
}

func (h *Handler) style(color, text string) string {
	if !h.color {
		return text
	}
	return telnet.Colorize(color, text)
}
