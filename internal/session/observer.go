package session

import (
	"time"

	"github.com/ghaggin/part11/internal/model"
)

type Reason int

const (
	ReasonLogout Reason = iota
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonLogout:
		return "logout"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Observer receives session events in order, one callback at a time.
// Callbacks run outside the state lock and may read the controller, but must
// not start or end a session.
type Observer interface {
	SessionStarted(s model.Session)
	SessionTick(remaining time.Duration)
	SessionEnded(reason Reason)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped.
type ObserverFuncs struct {
	Started func(s model.Session)
	Tick    func(remaining time.Duration)
	Ended   func(reason Reason)
}

func (o ObserverFuncs) SessionStarted(s model.Session) {
	if o.Started != nil {
		o.Started(s)
	}
}

func (o ObserverFuncs) SessionTick(remaining time.Duration) {
	if o.Tick != nil {
		o.Tick(remaining)
	}
}

func (o ObserverFuncs) SessionEnded(reason Reason) {
	if o.Ended != nil {
		o.Ended(reason)
	}
}
