package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/model"
	"github.com/ghaggin/part11/internal/suite"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	runnerAuditAction = "Headless compliance run"
	runnerSignData    = "Part 11 headless run"
)

// skipped checks change state on the remote system that a repeated
// unattended run must not touch.
var skipped = map[string]bool{
	"change-password": true,
}

type Result struct {
	Check   string
	Outcome model.Outcome
	Skipped bool
}

type Report struct {
	Results []Result
	Output  string
}

func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Skipped && !res.Outcome.Passed {
			n++
		}
	}
	return n
}

// Runner executes the whole suite once without the operator page and
// writes the exported log.
type Runner struct {
	log        *zap.Logger
	cfg        *config.Config
	suite      *suite.Suite
	logbook    *logbook.Logbook
	gw         suite.Requester
	shutdowner fx.Shutdowner
	cancel     context.CancelFunc
	create     func(name string) (io.WriteCloser, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     *config.Config
	Suite      *suite.Suite
	Logbook    *logbook.Logbook
	Gateway    suite.Requester
	Shutdowner fx.Shutdowner
}

func New(p Params) *Runner {
	return &Runner{
		log:        p.Log,
		cfg:        p.Config,
		suite:      p.Suite,
		logbook:    p.Logbook,
		gw:         p.Gateway,
		shutdowner: p.Shutdowner,
		create:     createFile,
	}
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, r *Runner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			r.cancel = cancel
			go r.execute(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			if r.cancel != nil {
				r.cancel()
			}
			return nil
		},
	})
}

func (r *Runner) execute(ctx context.Context) {
	code := 0

	report, err := r.Run(ctx)
	switch {
	case err != nil:
		r.log.Error("headless run failed", zap.Error(err))
		code = 1
	case report.Failed() > 0:
		code = 1
	}

	if err := r.shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
		r.log.Error("error shutting down", zap.Error(err))
	}
}

// Run tests the connection, logs in with the configured credentials, runs
// every check in page order, logs out and writes the exported log.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report
	r.logbook.Append("Part 11 Compliance Testing Suite initialized", model.SeverityInfo)

	conn := r.suite.Connect(ctx, r.cfg.API.URL)
	report.Results = append(report.Results, Result{Check: "connection", Outcome: conn})

	login := r.suite.Login(ctx, r.cfg.Runner.Username, r.cfg.Runner.Password)
	report.Results = append(report.Results, Result{Check: "login", Outcome: login})

	if conn.Passed && login.Passed {
		in := r.input()
		for _, check := range r.suite.Checks() {
			if skipped[check.Name] {
				r.log.Info("check skipped", zap.String("check", check.Name))
				report.Results = append(report.Results, Result{Check: check.Name, Skipped: true})
				continue
			}

			out := check.Run(ctx, in)
			r.log.Info("check finished", zap.String("check", check.Name), zap.Bool("passed", out.Passed))
			report.Results = append(report.Results, Result{Check: check.Name, Outcome: out})

			if check.Name == "sign" && out.Passed {
				in["signatureId"] = signatureID(out.Content)
			}
		}
		r.suite.Logout()
	}

	output, err := r.writeLog()
	if err != nil {
		return report, err
	}
	report.Output = output

	r.log.Info("headless run complete",
		zap.Int("checks", len(report.Results)),
		zap.Int("failed", report.Failed()),
		zap.String("output", output))
	return report, nil
}

func (r *Runner) input() suite.Input {
	signPassword := r.cfg.Runner.SignPassword
	if signPassword == "" {
		signPassword = r.cfg.Runner.Password
	}

	return suite.Input{
		"action":       runnerAuditAction,
		"data":         runnerSignData,
		"meaning":      r.cfg.Runner.SignMeaning,
		"password":     signPassword,
		"username":     r.cfg.Runner.Username,
		"testPassword": r.cfg.Runner.PolicyPassword,
	}
}

func (r *Runner) writeLog() (output string, err error) {
	now := r.logbook.Now()

	output = r.cfg.Runner.Output
	if output == "" {
		output = logbook.ExportFilename(now)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := r.create(output)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			output, err = "", fmt.Errorf("close output: %w", cerr)
		}
	}()

	if err := r.logbook.Export(f, now, r.gw.BaseURL()); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return output, nil
}

// signatureID pulls the id out of a sign response body, which is shown
// pretty-printed on the outcome. Numeric ids keep their literal digits.
func signatureID(content string) string {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return ""
	}
	for _, key := range []string{"signatureId", "id"} {
		switch v := body[key].(type) {
		case string:
			return v
		case json.Number:
			return v.String()
		}
	}
	return ""
}
