package suite

import (
	"context"
	"fmt"
	"time"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/gateway"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/model"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Requester is the part of the gateway the checks use.
type Requester interface {
	Issue(ctx context.Context, endpoint string, opts gateway.Options) gateway.Result
	PostXML(ctx context.Context, path string, envelope string, headers map[string]string) gateway.TextResult
	BaseURL() string
	SetBaseURL(u string)
}

type Sessions interface {
	Begin(resp model.LoginResponse) bool
	End()
	Timeout() time.Duration
}

// Suite runs the compliance checks against the remote system. Every check
// reports through the operator log and returns the panel outcome.
type Suite struct {
	log      *zap.Logger
	cfg      *config.Config
	clock    clockwork.Clock
	gw       Requester
	sessions Sessions
	sink     logbook.Sink
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Clock    clockwork.Clock
	Gateway  Requester
	Sessions Sessions
	Sink     logbook.Sink
}

func New(p Params) *Suite {
	return &Suite{
		log:      p.Log,
		cfg:      p.Config,
		clock:    p.Clock,
		gw:       p.Gateway,
		sessions: p.Sessions,
		sink:     p.Sink,
	}
}

func (s *Suite) info(format string, args ...any) {
	s.sink.Append(fmt.Sprintf(format, args...), model.SeverityInfo)
}

func (s *Suite) success(format string, args ...any) {
	s.sink.Append(fmt.Sprintf(format, args...), model.SeveritySuccess)
}

func (s *Suite) fail(format string, args ...any) {
	s.sink.Append(fmt.Sprintf(format, args...), model.SeverityError)
}

func (s *Suite) timestamp() string {
	return s.clock.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// query is the shape shared by most checks: one call, the body shown on
// success, the server message on failure.
func (s *Suite) query(ctx context.Context, panel, endpoint string, opts gateway.Options, onSuccess func(gateway.Result) string, failure string) model.Outcome {
	res := s.gw.Issue(ctx, endpoint, opts)
	if res.OK {
		s.success("%s", onSuccess(res))
		return model.Outcome{Panel: panel, Passed: true, Content: res.Pretty()}
	}

	s.fail("%s: %s", failure, res.Describe())
	return model.Outcome{Panel: panel, Content: "Failed: " + res.Describe()}
}

func fixed(msg string) func(gateway.Result) string {
	return func(gateway.Result) string { return msg }
}
