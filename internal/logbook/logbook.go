package logbook

import (
	"sync"
	"time"

	"github.com/ghaggin/part11/internal/model"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const timeLayout = "15:04:05"

// Sink is the write side of the operator log. Components depend on this
// rather than on *Logbook.
type Sink interface {
	Append(message string, severity model.Severity)
}

// Logbook is the append-only operator log, kept newest first.
type Logbook struct {
	log   *zap.Logger
	clock clockwork.Clock

	mu      sync.RWMutex
	entries []model.LogEntry
}

var _ Sink = (*Logbook)(nil)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clockwork.Clock
}

func New(p Params) *Logbook {
	return &Logbook{
		log:   p.Log,
		clock: p.Clock,
	}
}

func (l *Logbook) Append(message string, severity model.Severity) {
	now := l.clock.Now().UTC()
	entry := model.LogEntry{
		Time:     now.Format(timeLayout),
		Severity: severity,
		Message:  message,
	}

	l.mu.Lock()
	l.entries = append(l.entries, model.LogEntry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
	l.mu.Unlock()

	l.mirror(entry)
}

func (l *Logbook) mirror(entry model.LogEntry) {
	fields := []zap.Field{
		zap.String("severity", string(entry.Severity)),
		zap.String("time", entry.Time),
	}
	switch entry.Severity {
	case model.SeverityError:
		l.log.Error(entry.Message, fields...)
	case model.SeverityWarning:
		l.log.Warn(entry.Message, fields...)
	default:
		l.log.Info(entry.Message, fields...)
	}
}

// Entries returns a copy of the log in display order.
func (l *Logbook) Entries() []model.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Logbook) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Logbook) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()

	l.Append("Log cleared", model.SeverityInfo)
}

// Now is exposed so exports share the logbook's clock.
func (l *Logbook) Now() time.Time {
	return l.clock.Now()
}
