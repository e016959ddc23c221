package session

import (
	"context"
	"sync"
	"time"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/model"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Controller owns the authenticated session and its countdown. A session
// exists if and only if a tick task is running for it.
type Controller struct {
	log      *zap.Logger
	clock    clockwork.Clock
	sink     logbook.Sink
	timeout  time.Duration
	interval time.Duration

	// notify serialises observer callbacks. mu may be taken while holding
	// notify, never the reverse.
	notify sync.Mutex

	mu        sync.Mutex
	session   *model.Session
	task      *tickTask
	gen       uint64
	observers []Observer
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clockwork.Clock
	Config *config.Config
	Sink   logbook.Sink
}

func New(p Params) *Controller {
	return &Controller{
		log:      p.Log,
		clock:    p.Clock,
		sink:     p.Sink,
		timeout:  p.Config.Session.Timeout,
		interval: p.Config.Session.TickInterval,
	}
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, c *Controller) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			c.Close()
			return nil
		},
	})
}

func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

func (c *Controller) Timeout() time.Duration {
	return c.timeout
}

// Begin starts a session from a login response. Nothing happens unless the
// response reports success. Any previous session is discarded.
func (c *Controller) Begin(resp model.LoginResponse) bool {
	if !resp.Success {
		return false
	}

	c.notify.Lock()
	defer c.notify.Unlock()

	c.mu.Lock()
	c.endLocked()

	s := &model.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
		StartedAt:    c.clock.Now(),
		Timeout:      c.timeout,
	}
	c.session = s
	gen := c.gen
	c.task = startTickTask(c.clock, c.interval, func() { c.tick(gen) })

	snapshot := *s
	observers := c.observersLocked()
	c.mu.Unlock()

	c.log.Info("session started", zap.String("username", username(s.User)))
	for _, o := range observers {
		o.SessionStarted(snapshot)
		o.SessionTick(c.timeout)
	}
	return true
}

// End is an explicit logout. Calling it without a session only logs.
func (c *Controller) End() {
	c.mu.Lock()
	had := c.endLocked()
	observers := c.observersLocked()
	c.mu.Unlock()

	c.sink.Append("User logged out", model.SeverityInfo)
	if had {
		c.notify.Lock()
		for _, o := range observers {
			o.SessionEnded(ReasonLogout)
		}
		c.notify.Unlock()
	}
}

// Close tears the controller down without logging.
func (c *Controller) Close() {
	c.mu.Lock()
	c.endLocked()
	c.mu.Unlock()
}

// endLocked cancels the tick task before clearing the session and bumps the
// generation so that a tick already in flight is ignored.
func (c *Controller) endLocked() bool {
	c.task.Cancel()
	c.task = nil
	c.gen++

	had := c.session != nil
	c.session = nil
	return had
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.session == nil {
		c.mu.Unlock()
		return
	}

	elapsed := c.clock.Since(c.session.StartedAt)
	remaining := c.timeout - elapsed
	if remaining < 0 {
		remaining = 0
	}
	expired := elapsed >= c.timeout
	if expired {
		c.endLocked()
	}
	observers := c.observersLocked()
	c.mu.Unlock()

	if !expired {
		c.notify.Lock()
		defer c.notify.Unlock()
		// an End that raced this tick has already reported the session gone
		if !c.current(gen) {
			return
		}
		for _, o := range observers {
			o.SessionTick(remaining)
		}
		return
	}

	c.log.Info("session expired", zap.Duration("elapsed", elapsed))
	c.sink.Append("Session timed out", model.SeverityWarning)
	c.sink.Append("User logged out", model.SeverityInfo)

	c.notify.Lock()
	defer c.notify.Unlock()
	for _, o := range observers {
		o.SessionTick(remaining)
		o.SessionEnded(ReasonExpired)
	}
}

// current reports whether gen is still the live session's generation.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen && c.session != nil
}

func (c *Controller) observersLocked() []Observer {
	out := make([]Observer, len(c.observers))
	copy(out, c.observers)
	return out
}

// AccessToken returns the bearer token, or "" when anonymous.
func (c *Controller) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Current returns a copy of the session, if any.
func (c *Controller) Current() (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return model.Session{}, false
	}
	return *c.session, true
}

// Remaining is the time left before the session expires, zero when
// anonymous.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0
	}
	remaining := c.timeout - c.clock.Since(c.session.StartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Controller) Claims() map[string]any {
	return parseClaims(c.AccessToken())
}

func (c *Controller) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.task != nil
}

func username(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}
