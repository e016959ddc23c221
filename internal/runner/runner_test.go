package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/gateway"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/session"
	"github.com/ghaggin/part11/internal/suite"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type remote struct {
	mu       sync.Mutex
	paths    []string
	verified string
}

func (rm *remote) seen(path string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for _, p := range rm.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (rm *remote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rm.mu.Lock()
	rm.paths = append(rm.paths, r.URL.Path)
	rm.mu.Unlock()

	writeJSON := func(code int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.URL.Path == "/health":
		writeJSON(http.StatusOK, map[string]any{"status": "UP"})
	case r.URL.Path == "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(http.StatusOK, map[string]any{"success": true, "accessToken": "t", "user": map[string]any{"username": "root"}})
	case r.URL.Path == "/api/users/admin-only-test":
		writeJSON(http.StatusForbidden, map[string]any{"message": "Forbidden"})
	case r.URL.Path == "/api/audit/sign":
		writeJSON(http.StatusOK, map[string]any{"signatureId": "sig-42"})
	case strings.HasPrefix(r.URL.Path, "/api/audit/signature/"):
		rm.mu.Lock()
		rm.verified = strings.TrimPrefix(r.URL.Path, "/api/audit/signature/")
		rm.mu.Unlock()
		writeJSON(http.StatusOK, map[string]any{"valid": true})
	case strings.HasPrefix(r.URL.Path, "/LibreClinica/ws/"):
		b, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(b), "wsse:Security") {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("<soap:Fault>Security header missing</soap:Fault>"))
			return
		}
		w.Write([]byte("<listAllResponse><result>Success</result></listAllResponse>"))
	default:
		writeJSON(http.StatusOK, map[string]any{})
	}
}

type shutdowner struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (s *shutdowner) Shutdown(...fx.ShutdownOption) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	close(s.done)
	return nil
}

func newTestRunner(t *testing.T, password string) (*Runner, *remote, *logbook.Logbook) {
	t.Helper()

	rm := &remote{}
	srv := httptest.NewServer(rm)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.URL = srv.URL
	cfg.Runner.Password = password
	cfg.Runner.Output = filepath.Join(t.TempDir(), "out", "run.txt")

	log := zap.NewNop()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	lb := logbook.New(logbook.Params{Log: log, Clock: clock})
	sessions := session.New(session.Params{Log: log, Clock: clock, Config: cfg, Sink: lb})
	t.Cleanup(sessions.Close)
	gw := gateway.New(gateway.Params{Log: log, Config: cfg, Tokens: sessions})
	s := suite.New(suite.Params{Log: log, Config: cfg, Clock: clock, Gateway: gw, Sessions: sessions, Sink: lb})

	r := New(Params{
		Log:        log,
		Config:     cfg,
		Suite:      s,
		Logbook:    lb,
		Gateway:    gw,
		Shutdowner: &shutdowner{done: make(chan struct{})},
	})
	return r, rm, lb
}

func TestRun(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	r, rm, _ := newTestRunner(t, "secret")

	report, err := r.Run(context.Background())
	require.NoError(err)

	names := []string{}
	for _, res := range report.Results {
		names = append(names, res.Check)
	}
	assert.Equal("connection", names[0])
	assert.Equal("login", names[1])
	assert.Len(names, 2+len(r.suite.Checks()))

	var changePwd Result
	for _, res := range report.Results {
		if res.Check == "change-password" {
			changePwd = res
		}
	}
	assert.True(changePwd.Skipped)
	assert.False(rm.seen("/api/auth/change-password"))

	rm.mu.Lock()
	assert.Equal("sig-42", rm.verified)
	rm.mu.Unlock()

	assert.Equal(0, report.Failed())

	b, err := os.ReadFile(report.Output)
	require.NoError(err)
	out := string(b)
	assert.True(strings.HasPrefix(out, "LibreClinica Part 11 Compliance Test Log\n"))
	assert.Contains(out, "Login successful for root")
	assert.Contains(out, "[INFO] User logged out")
}

func TestRun_loginFailure(t *testing.T) {
	assert := assert.New(t)
	r, rm, _ := newTestRunner(t, "wrong")

	report, err := r.Run(context.Background())
	assert.NoError(err)

	assert.Len(report.Results, 2)
	assert.Equal(1, report.Failed())
	assert.False(rm.seen("/api/users"))

	b, err := os.ReadFile(report.Output)
	assert.NoError(err)
	assert.Contains(string(b), "Login failed: Invalid credentials")
}

func TestExecute_shutsDown(t *testing.T) {
	r, _, _ := newTestRunner(t, "wrong")
	sd := r.shutdowner.(*shutdowner)

	r.execute(context.Background())

	select {
	case <-sd.done:
	case <-time.After(time.Second):
		t.Fatal("shutdown not requested")
	}
	sd.mu.Lock()
	defer sd.mu.Unlock()
	assert.Equal(t, 1, sd.calls)
}

func TestSignatureID(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("abc", signatureID(`{"signatureId": "abc"}`))
	assert.Equal("17", signatureID(`{"id": 17}`))
	assert.Equal("1000000", signatureID(`{"id": 1000000}`))
	assert.Equal("12345678", signatureID(`{"signatureId": 12345678}`))
	assert.Equal("", signatureID(`[]`))
	assert.Equal("", signatureID(`not json`))
}

func TestRun_largeNumericSignatureID(t *testing.T) {
	rm := &remote{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/audit/sign" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"signatureId": 1000000}`))
			return
		}
		rm.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	r, _, _ := newTestRunner(t, "secret")
	r.cfg.API.URL = srv.URL

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	rm.mu.Lock()
	defer rm.mu.Unlock()
	assert.Equal(t, "1000000", rm.verified)
}

type failingClose struct {
	io.Writer
}

func (failingClose) Close() error {
	return errors.New("disk full")
}

func TestRun_closeErrorReported(t *testing.T) {
	r, _, _ := newTestRunner(t, "wrong")
	var buf strings.Builder
	r.create = func(string) (io.WriteCloser, error) {
		return failingClose{Writer: &buf}, nil
	}

	report, err := r.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, report.Output)
	assert.Contains(t, buf.String(), "LibreClinica Part 11 Compliance Test Log")
}
