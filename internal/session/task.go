package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// tickTask runs fn on every tick of a clock ticker until cancelled.
// Cancel is idempotent.
type tickTask struct {
	ticker clockwork.Ticker
	done   chan struct{}
	once   sync.Once
}

func startTickTask(clock clockwork.Clock, interval time.Duration, fn func()) *tickTask {
	t := &tickTask{
		ticker: clock.NewTicker(interval),
		done:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.Chan():
				fn()
			}
		}
	}()

	return t
}

func (t *tickTask) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
