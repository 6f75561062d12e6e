package game

import (
	"context"
	"log/slog"

	"github.com/myrjola/whodunit/internal/models"
)

type matchRequest struct {
	conn Conn
	role models.Role
}

// pairFunc receives one detective-seeking and one controller-seeking
// connection that the matchmaker decided to pair.
type pairFunc func(detective, controller Conn)

// Matchmaker pairs anonymous quick-match participants into fresh rooms. One
// FIFO queue per role, strict arrival order, no skill matching. All queue
// state lives inside the Run goroutine, so there is no lock.
type Matchmaker struct {
	logger   *slog.Logger
	pair     pairFunc
	requests chan matchRequest
	cancels  chan string
	// done is closed when the Run loop exits, so that late Enqueue and
	// Cancel calls during shutdown return instead of blocking forever.
	done chan struct{}
}

func newMatchmaker(logger *slog.Logger, pair pairFunc) *Matchmaker {
	return &Matchmaker{
		logger:   logger.With("source", "Matchmaker"),
		pair:     pair,
		requests: make(chan matchRequest),
		cancels:  make(chan string),
		done:     make(chan struct{}),
	}
}

// Enqueue adds conn to the queue for role. Pairing is reported
// asynchronously through the connection's Matched event.
func (m *Matchmaker) Enqueue(conn Conn, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	select {
	case m.requests <- matchRequest{conn: conn, role: role}:
		return nil
	case <-m.done:
		return ErrShuttingDown
	}
}

// Cancel removes a disconnected participant from both queues.
func (m *Matchmaker) Cancel(connectionID string) {
	select {
	case m.cancels <- connectionID:
	case <-m.done:
	}
}

// Run processes enqueue and cancel requests until ctx is cancelled.
func (m *Matchmaker) Run(ctx context.Context) {
	defer close(m.done)
	var detectives, controllers []Conn
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-m.requests:
			// A connection waits in one queue at a time; re-enqueueing for
			// the other role switches queues instead of pairing with itself.
			switch req.role {
			case models.RoleDetective:
				controllers = removeConn(controllers, req.conn.ID())
				detectives = enqueueOnce(detectives, req.conn)
			case models.RoleCharacterController:
				detectives = removeConn(detectives, req.conn.ID())
				controllers = enqueueOnce(controllers, req.conn)
			}
			for len(detectives) > 0 && len(controllers) > 0 {
				var det, ctrl Conn
				det, detectives = detectives[0], detectives[1:]
				ctrl, controllers = controllers[0], controllers[1:]
				m.logger.Debug("paired participants",
					"detective", det.ID(), "controller", ctrl.ID())
				m.pair(det, ctrl)
			}
		case id := <-m.cancels:
			detectives = removeConn(detectives, id)
			controllers = removeConn(controllers, id)
		}
	}
}

// enqueueOnce appends conn unless it is already waiting in this queue.
func enqueueOnce(queue []Conn, conn Conn) []Conn {
	for _, c := range queue {
		if c.ID() == conn.ID() {
			return queue
		}
	}
	return append(queue, conn)
}

func removeConn(queue []Conn, id string) []Conn {
	for i, c := range queue {
		if c.ID() == id {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}
