package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ghaggin/part11/internal/config"
	"github.com/ghaggin/part11/internal/logbook"
	"github.com/ghaggin/part11/internal/model"
	"github.com/ghaggin/part11/internal/session"
	"github.com/ghaggin/part11/internal/suite"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type pageData struct {
	PageTitle      string
	APIURL         string
	Authenticated  bool
	User           *model.User
	StartedAt      string
	TimeoutMinutes int
	Remaining      string
	Claims         map[string]any
	Checks         []suite.Check
	Results        map[string]*model.Outcome
	Log            []model.LogEntry
}

func (c *Console) home(w http.ResponseWriter, r *http.Request) {
	c.sm.BaselineNotice(r.Context(), c.notices.latest())

	results := map[string]*model.Outcome{}
	for panel, o := range c.sm.Results(r.Context()) {
		o := o
		results[panel] = &o
	}

	td := &pageData{
		PageTitle:      "Part 11 Compliance Testing",
		APIURL:         c.gateway.BaseURL(),
		TimeoutMinutes: int(c.sessions.Timeout().Minutes()),
		Remaining:      session.FormatRemaining(c.sessions.Remaining()),
		Checks:         c.suite.Checks(),
		Results:        results,
		Log:            c.logbook.Entries(),
	}
	if s, ok := c.sessions.Current(); ok {
		td.Authenticated = true
		td.User = s.User
		td.StartedAt = s.StartedAt.Local().Format(time.Kitchen)
		td.Claims = c.sessions.Claims()
	}

	if err := c.renderer.Render(w, "console.html", td); err != nil {
		c.log.Error("error rendering console", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (c *Console) back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *Console) testConnection(w http.ResponseWriter, r *http.Request) {
	apiURL := r.FormValue("api-url")
	if apiURL != "" {
		if err := config.ValidateURL(apiURL); err != nil {
			c.sm.PutResult(r.Context(), model.Outcome{Panel: suite.PanelConnection, Content: "Connection failed: " + err.Error()})
			c.back(w, r)
			return
		}
	}

	out := c.suite.Connect(r.Context(), apiURL)
	if apiURL != "" {
		c.persistAPIURL(r)
	}
	c.sm.PutResult(r.Context(), out)
	c.back(w, r)
}

func (c *Console) saveAPIURL(w http.ResponseWriter, r *http.Request) {
	apiURL := r.FormValue("api-url")
	if err := config.ValidateURL(apiURL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.gateway.SetBaseURL(apiURL)
	c.persistAPIURL(r)
	c.back(w, r)
}

func (c *Console) persistAPIURL(r *http.Request) {
	if err := c.repo.SetAPIURL(r.Context(), c.gateway.BaseURL()); err != nil {
		c.log.Warn("failed saving api url", zap.Error(err))
	}
}

func (c *Console) login(w http.ResponseWriter, r *http.Request) {
	out := c.suite.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if out.Passed {
		c.sm.ClearResults(r.Context())
	}
	c.sm.PutResult(r.Context(), out)
	c.back(w, r)
}

func (c *Console) logout(w http.ResponseWriter, r *http.Request) {
	c.suite.Logout()
	c.back(w, r)
}

func (c *Console) runCheck(w http.ResponseWriter, r *http.Request) {
	check, ok := c.suite.Lookup(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	in := suite.Input{}
	for key := range r.PostForm {
		in[key] = r.PostForm.Get(key)
	}

	c.sm.PutResult(r.Context(), check.Run(r.Context(), in))
	c.back(w, r)
}

func (c *Console) clearLog(w http.ResponseWriter, r *http.Request) {
	c.logbook.Clear()
	c.back(w, r)
}

func (c *Console) exportLog(w http.ResponseWriter, r *http.Request) {
	now := c.logbook.Now()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", logbook.ExportFilename(now)))
	if err := c.logbook.Export(w, now, c.gateway.BaseURL()); err != nil {
		c.log.Error("error exporting log", zap.Error(err))
		return
	}

	c.logbook.Append("Log exported", model.SeveritySuccess)
}

type noticeStatus struct {
	Seq     int    `json:"seq"`
	Message string `json:"message"`
}

type sessionStatus struct {
	Authenticated  bool          `json:"authenticated"`
	Remaining      string        `json:"remaining"`
	TimeoutMinutes int           `json:"timeoutMinutes"`
	Username       string        `json:"username,omitempty"`
	Notice         *noticeStatus `json:"notice,omitempty"`
}

func (c *Console) sessionStatus(w http.ResponseWriter, r *http.Request) {
	status := sessionStatus{
		Remaining:      session.FormatRemaining(c.notices.lastTick()),
		TimeoutMinutes: int(c.sessions.Timeout().Minutes()),
	}
	if s, ok := c.sessions.Current(); ok {
		status.Authenticated = true
		if s.User != nil {
			status.Username = s.User.Username
		}
	}
	seq := c.notices.latest()
	c.sm.BaselineNotice(r.Context(), seq)
	if seq > 0 && !c.sm.NoticeSeen(r.Context(), seq) {
		status.Notice = &noticeStatus{Seq: seq, Message: expiryMessage}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		c.log.Error("error writing session status", zap.Error(err))
	}
}

func (c *Console) ackNotice(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.Atoi(r.FormValue("seq"))
	if err != nil {
		http.Error(w, "invalid seq", http.StatusBadRequest)
		return
	}
	c.sm.AckNotice(r.Context(), seq)
	w.WriteHeader(http.StatusNoContent)
}
