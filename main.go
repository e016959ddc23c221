package main

import (
	"flag"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/console"
	"github.com/ghaggin/part11/internal/gateway"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/middleware"
	"github.com/ghaggin/part11/internal/repository"
	"github.com/ghaggin/part11/internal/runner"
	"github.com/ghaggin/part11/internal/session"
	"github.com/ghaggin/part11/internal/suite"
	"github.com/ghaggin/part11/internal/template"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var mode = flag.String("mode", "console", "either console or run")
	var configPath = flag.String("config", string(config.DefaultPath), "path to the yaml config file")
	flag.Parse()

	newPath := func() config.Path {
		return config.Path(*configPath)
	}

	deps := fx.Options(
		fx.Provide(
			zap.NewDevelopment,
			newPath,
			config.New,
			clockwork.NewRealClock,
			logbook.New,
			func(l *logbook.Logbook) logbook.Sink { return l },
			session.New,
			func(c *session.Controller) gateway.TokenSource { return c },
			func(c *session.Controller) suite.Sessions { return c },
			gateway.New,
			func(g *gateway.Gateway) suite.Requester { return g },
			suite.New,
		),
		fx.Invoke(session.RegisterHooks),
	)

	var app *fx.App
	if *mode == "console" {
		app = fx.New(
			deps,
			fx.Provide(
				repository.NewJSON,
				middleware.NewSessionManager,
				template.New,
				console.New,
			),
			fx.Invoke(console.RegisterHooks),
		)
	} else if *mode == "run" {
		app = fx.New(
			deps,
			fx.Provide(runner.New),
			fx.Invoke(runner.RegisterHooks),
		)
	} else {
		panic("unrecognized mode")
	}

	app.Run()
}
