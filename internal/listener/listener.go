// Package listener implements the consumer-side TCP connection manager: it
// accepts connections up to a soft limit, assigns each a session, and turns
// its byte stream into discrete raw records handed to a RecordHandler in
// arrival order.
package listener

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	ingestv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/ingest/v1"
	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/metrics"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/errors"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/util"
)

// Listener accepts inbound tick connections and drives one read loop per
// connection. A slow handler stalls only the connection that produced the
// record; other connections keep reading.
type Listener struct {
	config  config.ListenerConfig
	logger  logger.Interface
	handler ingestv1.RecordHandler

	mu       sync.Mutex
	ln       net.Listener
	sessions map[string]*session

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
	readWg   sync.WaitGroup
	acceptWg sync.WaitGroup
}

// New creates a connection manager that forwards raw records to handler.
func New(cfg config.ListenerConfig, log logger.Interface, handler ingestv1.RecordHandler) *Listener {
	return &Listener{
		config:   cfg,
		logger:   log,
		handler:  handler,
		sessions: make(map[string]*session),
	}
}

// Start binds the listen socket and launches the accept loop. A bind
// failure is fatal; the caller exits non-zero.
func (l *Listener) Start(ctx context.Context) error {
	l.ctx, l.cancel = context.WithCancel(ctx)

	addr := fmt.Sprintf("%s:%d", l.config.Host, l.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewTracer(errors.KindFatal,
			fmt.Sprintf("failed to bind listen socket on %s", addr)).Wrap(err)
	}

	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	l.logger.Info("listener started",
		logger.Field{Key: "addr", Value: ln.Addr().String()},
		logger.Field{Key: "max_connections", Value: l.config.MaxConnections},
	)

	l.acceptWg.Add(1)
	go l.acceptLoop()

	return nil
}

// Addr returns the bound listen address.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// ActiveSessions returns the number of currently open sessions.
func (l *Listener) ActiveSessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.sessions)
}

// Stop closes the listen socket, tears down every session and waits for the
// read loops to drain their in-flight records, bounded by ctx. The read
// contexts are cancelled only after that wait, so a record already handed to
// the pipeline keeps a live context for its delivery attempts.
func (l *Listener) Stop(ctx context.Context) error {
	l.stopping.Store(true)

	l.mu.Lock()
	if l.ln != nil {
		_ = l.ln.Close()
	}
	open := make([]*session, 0, len(l.sessions))
	for _, s := range l.sessions {
		open = append(open, s)
	}
	l.mu.Unlock()

	for _, s := range open {
		l.teardown(s, "shutdown")
	}

	done := make(chan struct{})
	go func() {
		l.acceptWg.Wait()
		l.readWg.Wait()
		close(done)
	}()

	var stopErr error
	select {
	case <-done:
		l.logger.Info("listener stopped")
	case <-ctx.Done():
		l.logger.Warn("listener stop timeout exceeded")
		stopErr = ctx.Err()
	}

	if l.cancel != nil {
		l.cancel()
	}
	return stopErr
}

// acceptLoop accepts connections until shutdown. A post-bind socket error
// triggers a listener restart after a fixed delay, retried indefinitely.
func (l *Listener) acceptLoop() {
	defer l.acceptWg.Done()

	for {
		l.mu.Lock()
		ln := l.ln
		l.mu.Unlock()

		conn, err := ln.Accept()
		if err != nil {
			if l.stopping.Load() || l.ctx.Err() != nil {
				return
			}

			l.logger.Error(errors.TracerFromError(errors.KindTransport, err),
				logger.Field{Key: "action", Value: "accept"},
			)
			_ = ln.Close()
			if !l.rebind() {
				return
			}
			continue
		}

		l.acceptConn(conn)
	}
}

// rebind re-creates the listen socket after a delay until it succeeds or
// shutdown begins.
func (l *Listener) rebind() bool {
	addr := fmt.Sprintf("%s:%d", l.config.Host, l.config.Port)

	for {
		select {
		case <-l.ctx.Done():
			return false
		case <-time.After(l.config.RestartDelay):
		}
		if l.stopping.Load() {
			return false
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			l.logger.Error(errors.TracerFromError(errors.KindTransport, err),
				logger.Field{Key: "action", Value: "rebind"},
				logger.Field{Key: "addr", Value: addr},
			)
			continue
		}

		l.mu.Lock()
		l.ln = ln
		l.mu.Unlock()

		l.logger.Info("listener restarted", logger.Field{Key: "addr", Value: addr})
		return true
	}
}

func (l *Listener) acceptConn(conn net.Conn) {
	l.mu.Lock()
	if len(l.sessions) >= l.config.MaxConnections {
		l.mu.Unlock()
		metrics.ConnectionsRejected.Inc()
		l.logger.Warn("connection rejected at soft limit",
			logger.Field{Key: "remote_addr", Value: conn.RemoteAddr().String()},
			logger.Field{Key: "max_connections", Value: l.config.MaxConnections},
		)
		_ = conn.Close()
		return
	}

	s := newSession(conn)
	l.sessions[s.id] = s
	l.mu.Unlock()

	// favor latency over throughput on the hot tick path
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	metrics.ConnectionsAccepted.Inc()
	metrics.ActiveConnections.Inc()

	l.logger.Info("connection accepted",
		logger.Field{Key: "connection_id", Value: s.id},
		logger.Field{Key: "remote_addr", Value: conn.RemoteAddr().String()},
	)

	l.readWg.Add(1)
	go l.readLoop(s)
}

// readLoop drives one connection: read, frame, hand records to the handler
// in arrival order. Per-record handler failures are logged and never
// terminate the connection.
func (l *Listener) readLoop(s *session) {
	defer l.readWg.Done()
	defer l.teardown(s, "read loop exit")

	ctx := util.WithConnectionID(l.ctx, s.id)
	ctx = util.WithRemoteAddr(ctx, s.conn.RemoteAddr().String())

	buf := make([]byte, l.config.ReadBufferSize)
	for {
		if l.ctx.Err() != nil {
			return
		}

		// inactivity beyond the idle window is a connection failure
		_ = s.conn.SetReadDeadline(time.Now().Add(l.config.IdleTimeout))

		n, err := s.conn.Read(buf)
		if n > 0 {
			receipt := time.Now()
			for _, line := range s.framer.push(buf[:n]) {
				metrics.RecordsReceived.Inc()
				s.messages.Add(1)

				raw := tickv1.RawRecord{
					Line:         line,
					ConnectionID: s.id,
					ReceiptTime:  receipt,
				}
				if herr := l.handler.Handle(ctx, raw); herr != nil {
					l.logger.ErrorContext(ctx, herr,
						logger.Field{Key: "action", Value: "handle_record"},
					)
				}
			}
		}

		if err != nil {
			if err != io.EOF && !l.stopping.Load() && l.ctx.Err() == nil {
				l.logger.WarnContext(ctx, "connection error",
					logger.Field{Key: "error", Value: err.Error()},
				)
			}
			return
		}
	}
}

// teardown removes the session and closes it exactly once; a partial
// buffered line is discarded, never treated as a trailing record.
func (l *Listener) teardown(s *session, cause string) {
	l.mu.Lock()
	_, tracked := l.sessions[s.id]
	delete(l.sessions, s.id)
	l.mu.Unlock()

	if !tracked {
		return
	}

	s.close(func(closed *session) {
		metrics.ActiveConnections.Dec()
		l.logger.Info("session closed",
			logger.Field{Key: "connection_id", Value: closed.id},
			logger.Field{Key: "cause", Value: cause},
			logger.Field{Key: "messages", Value: closed.messages.Load()},
			logger.Field{Key: "uptime", Value: time.Since(closed.acceptedAt).String()},
		)
	})
}
