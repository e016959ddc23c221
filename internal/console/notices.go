package console

import (
	"sync"
	"time"

	"github.com/ghaggin/part11/internal/model"
	"github.com/ghaggin/part11/internal/session"
)

const expiryMessage = "Your session has expired. Please log in again."

// noticeBoard follows the session controller and records the expiry notice
// for the page to show. Each expiry gets a new sequence number so a browser
// can acknowledge it once.
type noticeBoard struct {
	mu        sync.Mutex
	seq       int
	remaining time.Duration
}

var _ session.Observer = (*noticeBoard)(nil)

func (n *noticeBoard) SessionStarted(_ model.Session) {}

func (n *noticeBoard) SessionTick(remaining time.Duration) {
	n.mu.Lock()
	n.remaining = remaining
	n.mu.Unlock()
}

func (n *noticeBoard) SessionEnded(reason session.Reason) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.remaining = 0
	if reason == session.ReasonExpired {
		n.seq++
	}
}

// latest returns the sequence number of the last expiry, 0 if none.
func (n *noticeBoard) latest() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq
}

func (n *noticeBoard) lastTick() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.remaining
}
