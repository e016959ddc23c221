package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/gateway"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/middleware"
	"github.com/ghaggin/part11/internal/model"
	"github.com/ghaggin/part11/internal/repository"
	"github.com/ghaggin/part11/internal/session"
	"github.com/ghaggin/part11/internal/suite"
	"github.com/ghaggin/part11/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Console serves the operator page for running the compliance checks.
type Console struct {
	log      *zap.Logger
	server   *http.Server
	suite    *suite.Suite
	sessions *session.Controller
	logbook  *logbook.Logbook
	gateway  *gateway.Gateway
	repo     repository.Repository
	sm       *middleware.SessionManager
	renderer *template.Renderer
	notices  *noticeBoard
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Suite    *suite.Suite
	Sessions *session.Controller
	Logbook  *logbook.Logbook
	Gateway  *gateway.Gateway
	Repo     repository.Repository
	SM       *middleware.SessionManager
	Renderer *template.Renderer
}

func New(p Params) (*Console, error) {
	c := &Console{
		log:      p.Log,
		suite:    p.Suite,
		sessions: p.Sessions,
		logbook:  p.Logbook,
		gateway:  p.Gateway,
		repo:     p.Repo,
		sm:       p.SM,
		renderer: p.Renderer,
		notices:  &noticeBoard{},
	}
	p.Sessions.Subscribe(c.notices)

	c.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", p.Config.Console.Port),
		Handler: c.routes(p.Config.Console.StaticDir),
	}

	return c, nil
}

func (c *Console) routes(staticDir string) http.Handler {
	root := chi.NewRouter()
	root.Use(c.sm.Wrap)

	root.Get("/", c.home)
	root.Post("/connection", c.testConnection)
	root.Post("/login", c.login)
	root.Post("/logout", c.logout)
	root.Post("/checks/{name}", c.runCheck)
	root.Post("/settings/api-url", c.saveAPIURL)

	root.Route("/log", func(r chi.Router) {
		r.Post("/clear", c.clearLog)
		r.Get("/export", c.exportLog)
	})

	root.Route("/session", func(r chi.Router) {
		r.Get("/status", c.sessionStatus)
		r.Post("/notice/ack", c.ackNotice)
	})

	root.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.Dir(staticDir))))

	return root
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, c *Console) {
	lc.Append(fx.Hook{
		OnStart: c.Start,
		OnStop:  c.server.Shutdown,
	})
}

func (c *Console) Start(ctx context.Context) error {
	c.restoreAPIURL(ctx)
	c.logbook.Append("Part 11 Compliance Testing Suite initialized", model.SeverityInfo)

	go func() {
		c.log.Info("console listening", zap.String("addr", c.server.Addr))
		err := c.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}

func (c *Console) restoreAPIURL(ctx context.Context) {
	saved, err := c.repo.GetAPIURL(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		c.log.Warn("failed reading saved api url", zap.Error(err))
		return
	}
	c.gateway.SetBaseURL(saved)
}
