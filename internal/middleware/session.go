package middleware

import (
	"context"
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/part11/internal/model"
)

const (
	resultKeyPrefix = "result:"
	noticeSeenKey   = "notice_seen"
)

// SessionManager keeps per-browser console state: the last outcome of each
// panel and which expiry notice has been acknowledged.
type SessionManager struct {
	impl *scs.SessionManager
}

func NewSessionManager() (*SessionManager, error) {
	gob.Register(&model.Outcome{})

	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Cookie.Name = "part11_console"
	sm.impl.Cookie.SameSite = http.SameSiteStrictMode

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

func (s *SessionManager) PutResult(ctx context.Context, o model.Outcome) {
	s.impl.Put(ctx, resultKeyPrefix+o.Panel, &o)
}

// Results returns the stored outcomes keyed by panel.
func (s *SessionManager) Results(ctx context.Context) map[string]model.Outcome {
	out := map[string]model.Outcome{}
	for _, key := range s.impl.Keys(ctx) {
		if !strings.HasPrefix(key, resultKeyPrefix) {
			continue
		}
		if o, ok := s.impl.Get(ctx, key).(*model.Outcome); ok {
			out[o.Panel] = *o
		}
	}
	return out
}

func (s *SessionManager) ClearResults(ctx context.Context) {
	for _, key := range s.impl.Keys(ctx) {
		if strings.HasPrefix(key, resultKeyPrefix) {
			s.impl.Remove(ctx, key)
		}
	}
}

// BaselineNotice marks every expiry up to seq as seen the first time this
// browser shows up, so it is only alerted about expiries that happen later.
func (s *SessionManager) BaselineNotice(ctx context.Context, seq int) {
	if !s.impl.Exists(ctx, noticeSeenKey) {
		s.impl.Put(ctx, noticeSeenKey, seq)
	}
}

// NoticeSeen reports whether this browser acknowledged the expiry notice
// with the given sequence number.
func (s *SessionManager) NoticeSeen(ctx context.Context, seq int) bool {
	return s.impl.GetInt(ctx, noticeSeenKey) >= seq
}

func (s *SessionManager) AckNotice(ctx context.Context, seq int) {
	if seq > s.impl.GetInt(ctx, noticeSeenKey) {
		s.impl.Put(ctx, noticeSeenKey, seq)
	}
}
