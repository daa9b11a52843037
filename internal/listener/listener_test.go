package listener

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler collects every raw record it is handed.
type recordingHandler struct {
	mu      sync.Mutex
	records []tickv1.RawRecord
	err     error
}

func (h *recordingHandler) Handle(_ context.Context, raw tickv1.RawRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, raw)
	return h.err
}

func (h *recordingHandler) lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	lines := make([]string, 0, len(h.records))
	for _, r := range h.records {
		lines = append(lines, r.Line)
	}
	return lines
}

func testListenerConfig() config.ListenerConfig {
	return config.ListenerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		MaxConnections: 4,
		IdleTimeout:    time.Minute,
		RestartDelay:   10 * time.Millisecond,
		ReadBufferSize: 64,
	}
}

func startTestListener(t *testing.T, cfg config.ListenerConfig, handler *recordingHandler) *Listener {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	l := New(cfg, log, handler)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.Stop(ctx)
	})

	return l
}

func dial(t *testing.T, l *Listener) net.Conn {
	t.Helper()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestListener_DeliversRecordsInArrivalOrder(t *testing.T) {
	handler := &recordingHandler{}
	l := startTestListener(t, testListenerConfig(), handler)

	conn := dial(t, l)
	defer conn.Close()

	// the second write splits a record across two segments
	_, err := conn.Write([]byte("AAPL.O|150.60|1705323000000|1000000|150.10|150.75\nEUR=|1.08"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("50|1705323002000|||\nBTCUSDT|43250.5|1705323004000|||43251.0\n"))
	require.NoError(t, err)

	waitFor(t, func() bool { return len(handler.lines()) == 3 })
	assert.Equal(t, []string{
		"AAPL.O|150.60|1705323000000|1000000|150.10|150.75",
		"EUR=|1.0850|1705323002000|||",
		"BTCUSDT|43250.5|1705323004000|||43251.0",
	}, handler.lines())

	handler.mu.Lock()
	raw := handler.records[0]
	handler.mu.Unlock()
	assert.NotEmpty(t, raw.ConnectionID)
	assert.False(t, raw.ReceiptTime.IsZero())
}

func TestListener_HandlerErrorKeepsConnectionOpen(t *testing.T) {
	handler := &recordingHandler{err: assert.AnError}
	l := startTestListener(t, testListenerConfig(), handler)

	conn := dial(t, l)
	defer conn.Close()

	_, err := conn.Write([]byte("TOO|FEW|FIELDS\n"))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(handler.lines()) == 1 })

	// the same connection still carries subsequent records
	handler.mu.Lock()
	handler.err = nil
	handler.mu.Unlock()

	_, err = conn.Write([]byte("AAPL.O|150.60|1705323000000|||\n"))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(handler.lines()) == 2 })

	assert.Equal(t, "AAPL.O|150.60|1705323000000|||", handler.lines()[1])
	assert.Equal(t, 1, l.ActiveSessions())
}

func TestListener_RejectsBeyondSoftLimit(t *testing.T) {
	cfg := testListenerConfig()
	cfg.MaxConnections = 1

	handler := &recordingHandler{}
	l := startTestListener(t, cfg, handler)

	first := dial(t, l)
	defer first.Close()
	waitFor(t, func() bool { return l.ActiveSessions() == 1 })

	second := dial(t, l)
	defer second.Close()

	// the rejected connection is closed by the server; a read observes it
	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 1)
	_, err := second.Read(buf)
	require.Error(t, err)

	assert.Equal(t, 1, l.ActiveSessions())

	// the accepted connection keeps working
	_, err = first.Write([]byte("AAPL.O|150.60|1705323000000|||\n"))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(handler.lines()) == 1 })
}

func TestListener_TeardownIsIdempotent(t *testing.T) {
	handler := &recordingHandler{}
	l := startTestListener(t, testListenerConfig(), handler)

	conn := dial(t, l)
	waitFor(t, func() bool { return l.ActiveSessions() == 1 })

	require.NoError(t, conn.Close())
	waitFor(t, func() bool { return l.ActiveSessions() == 0 })

	// a second stop after the peer already went away must not fail
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Stop(ctx))
	require.NoError(t, l.Stop(ctx))
	assert.Zero(t, l.ActiveSessions())
}

func TestListener_IdleConnectionIsTornDown(t *testing.T) {
	cfg := testListenerConfig()
	cfg.IdleTimeout = 50 * time.Millisecond

	handler := &recordingHandler{}
	l := startTestListener(t, cfg, handler)

	conn := dial(t, l)
	defer conn.Close()
	waitFor(t, func() bool { return l.ActiveSessions() == 1 })

	// no data within the idle window closes the session
	waitFor(t, func() bool { return l.ActiveSessions() == 0 })

	// the peer observes the close
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	assert.Error(t, err)
}

func TestListener_RestartsAfterAcceptError(t *testing.T) {
	handler := &recordingHandler{}
	l := startTestListener(t, testListenerConfig(), handler)

	// fail the accept loop by closing the socket out from under it
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()
	require.NoError(t, ln.Close())

	// the loop rebinds after the restart delay
	waitFor(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.ln != ln
	})

	conn := dial(t, l)
	defer conn.Close()

	_, err := conn.Write([]byte("AAPL.O|150.60|1705323000000|||\n"))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(handler.lines()) == 1 })
}

func TestListener_StopClosesOpenSessions(t *testing.T) {
	handler := &recordingHandler{}

	log, err := logger.NewLogger()
	require.NoError(t, err)

	l := New(testListenerConfig(), log, handler)
	require.NoError(t, l.Start(context.Background()))

	conn := dial(t, l)
	defer conn.Close()
	waitFor(t, func() bool { return l.ActiveSessions() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Stop(ctx))
	assert.Zero(t, l.ActiveSessions())

	// further dials are refused once the socket is gone
	_, dialErr := net.DialTimeout("tcp", l.Addr().String(), 100*time.Millisecond)
	assert.Error(t, dialErr)
}
