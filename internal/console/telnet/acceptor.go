package telnet

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/config"
)

// BusyMessage is sent to a client that connects while another operator holds
// the console.
const BusyMessage = "another operator is connected; try again later"

// SessionHandler runs the console loop for one connected operator.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for telnet connections and hands them to a SessionHandler
// one at a time. While an operator is connected, further clients are told
// the console is busy and disconnected.
type Acceptor struct {
	cfg     config.ConsoleConfig
	handler SessionHandler
	logger  *zap.Logger

	listener net.Listener
	busy     atomic.Bool
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewAcceptor creates an acceptor for cfg.Listen.
//
// Precondition: handler must be non-nil.
func NewAcceptor(cfg config.ConsoleConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		quit:    make(chan struct{}),
	}
}

// ListenAndServe accepts connections until Stop is called. If Stop has
// already run it releases the port and returns nil at once.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Listen, err)
	}

	a.mu.Lock()
	select {
	case <-a.quit:
		a.mu.Unlock()
		listener.Close()
		return nil
	default:
	}
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("telnet console listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
				a.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}

		a.wg.Add(1)
		if !a.busy.CompareAndSwap(false, true) {
			go a.turnAway(conn)
			continue
		}
		go a.handleConn(conn)
	}
}

func (a *Acceptor) turnAway(raw net.Conn) {
	defer a.wg.Done()
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()
	a.logger.Info("console busy, turning client away",
		zap.String("remote_addr", raw.RemoteAddr().String()),
	)
	_ = conn.WriteLine(BusyMessage)
}

func (a *Acceptor) handleConn(raw net.Conn) {
	defer a.wg.Done()
	defer a.busy.Store(false)
	start := time.Now()
	addr := raw.RemoteAddr().String()

	a.logger.Info("operator connected", zap.String("remote_addr", addr))

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	if err := conn.Negotiate(); err != nil {
		a.logger.Error("telnet negotiation failed",
			zap.String("remote_addr", addr),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
			conn.Close()
		case <-ctx.Done():
		}
	}()

	if err := a.handler.HandleSession(ctx, conn); err != nil {
		a.logger.Debug("operator session ended",
			zap.String("remote_addr", addr),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return
	}
	a.logger.Info("operator disconnected",
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
	)
}

// Stop closes the listener, disconnects the operator and waits for the
// session goroutines to finish. Stop before ListenAndServe has bound keeps
// it from serving at all. Calling Stop again does nothing.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	select {
	case <-a.quit:
		return
	default:
	}
	a.running = false

	close(a.quit)
	if a.listener != nil {
		a.listener.Close()
	}
	a.wg.Wait()

	a.logger.Info("telnet console stopped")
}

// Addr returns the listening address, or "" before ListenAndServe binds.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
