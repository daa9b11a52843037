// Package feedclient implements the producer-side TCP client: it maintains
// one connection to the ingest listener, queues records while disconnected
// and replays them in order once the connection is back. Delivery is
// at-most-once; a record handed to a write that fails is lost, never resent.
package feedclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/errors"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/wire"
)

// State is the client's connection lifecycle phase.
type State string

const (
	// StateDisconnected means no connection exists and none is being made.
	StateDisconnected State = "disconnected"
	// StateConnecting means a dial or reconnect cycle is in progress.
	StateConnecting State = "connecting"
	// StateConnected means records are flowing to the listener.
	StateConnected State = "connected"
	// StateDraining means Stop was called and the queue is being flushed.
	StateDraining State = "draining"
)

// Config holds the feed client settings.
type Config struct {
	Target               string        `env:"TARGET" envDefault:"localhost:9000"`
	DialTimeout          time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
	ReconnectInterval    time.Duration `env:"RECONNECT_INTERVAL" envDefault:"1s"`
	MaxReconnectAttempts int           `env:"MAX_RECONNECT_ATTEMPTS" envDefault:"10"`
}

func (c Config) validate() error {
	if c.Target == "" {
		return errors.NewErrorDetails("feed target is empty", errors.KindFatal, "target")
	}
	if c.DialTimeout <= 0 {
		return errors.NewErrorDetails("invalid dial timeout", errors.KindFatal, "dialTimeout")
	}
	if c.WriteTimeout <= 0 {
		return errors.NewErrorDetails("invalid write timeout", errors.KindFatal, "writeTimeout")
	}
	if c.ReconnectInterval <= 0 {
		return errors.NewErrorDetails("invalid reconnect interval", errors.KindFatal, "reconnectInterval")
	}
	if c.MaxReconnectAttempts <= 0 {
		return errors.NewErrorDetailsWithObject("invalid reconnect attempt limit", errors.KindFatal, "maxReconnectAttempts", c.MaxReconnectAttempts)
	}
	return nil
}

// Client is the reconnecting feed producer. One background goroutine owns
// the connection and drains the queue, so records leave in the exact order
// they were handed to Send.
type Client struct {
	config Config
	logger logger.Interface

	queue queue
	wake  chan struct{}

	mu    sync.Mutex
	state State
	conn  net.Conn
	err   error
	sent  uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dial func(ctx context.Context) (net.Conn, error)
}

// New validates the configuration and creates a client in the disconnected
// state. Nothing is dialed until Start.
func New(cfg Config, log logger.Interface) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		logger: log,
		state:  StateDisconnected,
		wake:   make(chan struct{}, 1),
	}
	c.dial = c.dialTarget

	return c, nil
}

// Start launches the connection goroutine. The first dial happens in the
// background; Send can be called immediately.
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("feed client started",
		logger.Field{Key: "target", Value: c.config.Target},
	)

	return nil
}

// Send enqueues a record for delivery and never blocks on the network.
// Once the reconnect attempt cap is exhausted every call returns the terminal
// error.
func (c *Client) Send(record wire.Record) error {
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	if c.state == StateDraining {
		c.mu.Unlock()
		return errors.NewTracer(errors.KindTransport, "feed client is draining")
	}
	c.mu.Unlock()

	c.queue.push(record)
	select {
	case c.wake <- struct{}{}:
	default:
	}

	return nil
}

// State returns the current lifecycle phase.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the terminal failure, or nil while the client is viable.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// QueueDepth returns the number of records awaiting delivery.
func (c *Client) QueueDepth() int {
	return c.queue.depth()
}

// Sent returns the number of records written to the socket.
func (c *Client) Sent() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Stop flushes the queue bounded by ctx, then closes the connection.
// Records still queued when the bound expires are dropped and reported.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateDraining
	c.mu.Unlock()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

drain:
	for c.queue.depth() > 0 && c.Err() == nil {
		select {
		case <-ctx.Done():
			break drain
		case <-ticker.C:
		}
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	sent := c.sent
	c.mu.Unlock()

	if remaining := c.queue.depth(); remaining > 0 {
		c.logger.Warn("undelivered records dropped at stop",
			logger.Field{Key: "depth", Value: remaining},
		)
		return errors.NewTracer(errors.KindTransport,
			fmt.Sprintf("%d queued records were not delivered", remaining))
	}

	c.logger.Info("feed client stopped", logger.Field{Key: "sent", Value: sent})
	return nil
}

// run owns the connection: dial, drain the queue, redial on failure.
func (c *Client) run() {
	defer c.wg.Done()

	for {
		if c.ctx.Err() != nil {
			return
		}

		if !c.connected() {
			if !c.connect() {
				return
			}
		}

		record, ok := c.queue.pop()
		if !ok {
			select {
			case <-c.ctx.Done():
				return
			case <-c.wake:
			}
			continue
		}

		c.write(record)
	}
}

// connect dials until it succeeds or the attempt cap runs out. Running
// out is terminal; the client never recovers from it.
func (c *Client) connect() bool {
	for attempt := 1; ; attempt++ {
		c.setState(StateConnecting)
		conn, err := c.dial(c.ctx)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			if c.state == StateConnecting {
				c.state = StateConnected
			}
			c.mu.Unlock()

			c.logger.Info("connected to listener",
				logger.Field{Key: "target", Value: c.config.Target},
				logger.Field{Key: "queued", Value: c.queue.depth()},
			)
			return true
		}

		if c.ctx.Err() != nil {
			return false
		}

		c.logger.Warn("dial failed",
			logger.Field{Key: "target", Value: c.config.Target},
			logger.Field{Key: "attempt", Value: attempt},
			logger.Field{Key: "error", Value: err.Error()},
		)

		if attempt >= c.config.MaxReconnectAttempts {
			terminal := errors.NewTracer(errors.KindTransport,
				fmt.Sprintf("reconnect attempts exhausted after %d tries", attempt)).Wrap(err)
			c.mu.Lock()
			c.err = terminal
			c.state = StateDisconnected
			c.mu.Unlock()

			c.logger.Error(terminal,
				logger.Field{Key: "target", Value: c.config.Target},
				logger.Field{Key: "dropped", Value: c.queue.depth()},
			)
			return false
		}

		// the client is not mid-dial while it waits out the interval
		c.setState(StateDisconnected)

		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(c.config.ReconnectInterval):
		}
	}
}

// write delivers one record. A failed write drops both the record and the
// connection; the next loop iteration redials.
func (c *Client) write(record wire.Record) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if _, err := conn.Write([]byte(wire.Encode(record) + "\n")); err != nil {
		c.logger.Warn("record lost on write failure",
			logger.Field{Key: "instrument", Value: record.Instrument},
			logger.Field{Key: "error", Value: err.Error()},
		)

		c.mu.Lock()
		_ = c.conn.Close()
		c.conn = nil
		if c.state == StateConnected {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.sent++
	c.mu.Unlock()
}

func (c *Client) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDraining {
		return
	}
	c.state = state
}

func (c *Client) dialTarget(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.config.DialTimeout}

	conn, err := d.DialContext(ctx, "tcp", c.config.Target)
	if err != nil {
		return nil, err
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	return conn, nil
}
