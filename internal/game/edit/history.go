package edit

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/events"
)

// History is a linear undo/redo log with optional transactions.
//
// Outside a transaction Add executes the command at once. Between Begin and
// Commit commands are only buffered; Commit executes them as one history
// entry. A History is not safe for concurrent use.
type History struct {
	target  Target
	undo    []Command
	redo    []Command
	pending []Command
	open    bool
	logger  *zap.Logger
}

// NewHistory returns an empty history applying commands to target.
//
// Precondition: target must be non-nil.
func NewHistory(target Target, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{target: target, logger: logger}
}

// Begin opens a transaction. It does nothing if one is already open.
func (h *History) Begin() {
	if h.open {
		return
	}
	h.open = true
	h.pending = nil
}

// Add executes cmd, or buffers it while a transaction is open.
//
// Postcondition: Outside a transaction the redo stack is empty.
func (h *History) Add(cmd Command) {
	if h.open {
		h.pending = append(h.pending, cmd)
		return
	}
	h.execute(cmd)
}

// Commit closes the open transaction and executes its buffer as a single
// history entry: the lone command itself, otherwise a Composite (empty when
// nothing was buffered). Recording the entry clears the redo stack.
//
// Postcondition: Returns true if a transaction was closed.
func (h *History) Commit() bool {
	if !h.open {
		return false
	}
	buf := h.pending
	h.open = false
	h.pending = nil
	switch len(buf) {
	case 1:
		h.execute(buf[0])
	default:
		h.execute(&Composite{Commands: buf})
	}
	return true
}

// Rollback discards the open transaction without executing anything.
func (h *History) Rollback() {
	if h.open {
		h.logger.Debug("transaction rolled back", zap.Int("pending", len(h.pending)))
	}
	h.open = false
	h.pending = nil
}

// Undo reverts the most recent entry. It does nothing when history is
// empty. An open transaction is left untouched.
//
// Postcondition: Returns true if an entry was undone.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo(h.target)
	h.redo = append(h.redo, cmd)
	h.logger.Debug("undo", zap.String("command", cmd.Name()))
	h.changed()
	return true
}

// Redo re-executes the most recently undone entry. It does nothing when the
// redo stack is empty.
//
// Postcondition: Returns true if an entry was redone.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Do(h.target)
	h.undo = append(h.undo, cmd)
	h.logger.Debug("redo", zap.String("command", cmd.Name()))
	h.changed()
	return true
}

// Clear drops both stacks and any open transaction. It is called when the
// grid the commands refer to has been replaced.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.pending = nil
	h.open = false
}

// CanUndo reports whether Undo would revert an entry.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would re-execute an entry.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// InTransaction reports whether a transaction is open.
func (h *History) InTransaction() bool { return h.open }

// Pending returns the number of buffered commands.
func (h *History) Pending() int { return len(h.pending) }

// Len returns the number of undoable entries.
func (h *History) Len() int { return len(h.undo) }

// RedoLen returns the number of redoable entries.
func (h *History) RedoLen() int { return len(h.redo) }

func (h *History) execute(cmd Command) {
	cmd.Do(h.target)
	h.undo = append(h.undo, cmd)
	h.redo = nil
	h.logger.Debug("command executed", zap.String("command", cmd.Name()))
	h.changed()
}

func (h *History) changed() {
	h.target.Publish(events.Event{Name: events.GridChanged})
}
