package listener

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/util"
)

// session is the per-connection state owned exclusively by the connection's
// read goroutine. Only teardown is reachable from other goroutines, and it
// is idempotent; the message counter is atomic because teardown may report
// it while the read loop is still counting.
type session struct {
	id         string
	conn       net.Conn
	acceptedAt time.Time
	messages   atomic.Uint64
	framer     framer

	closeOnce sync.Once
}

func newSession(conn net.Conn) *session {
	return &session{
		id:         util.NewConnectionID(),
		conn:       conn,
		acceptedAt: time.Now(),
	}
}

// close shuts the socket exactly once. Multiple close signals for the same
// session must not double-decrement connection state, hence the Once.
func (s *session) close(onClose func(*session)) {
	s.closeOnce.Do(func() {
		s.framer.discard()
		_ = s.conn.Close()
		if onClose != nil {
			onClose(s)
		}
	})
}
