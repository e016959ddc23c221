package logbook

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ghaggin/part11/internal/model"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var epoch = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestLogbook() (*Logbook, clockwork.FakeClock, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	clock := clockwork.NewFakeClockAt(epoch)
	return New(Params{Log: zap.New(core), Clock: clock}), clock, logs
}

func TestAppend_newestFirst(t *testing.T) {
	assert := assert.New(t)

	lb, clock, _ := newTestLogbook()
	lb.Append("first", model.SeverityInfo)
	clock.Advance(2 * time.Second)
	lb.Append("second", model.SeveritySuccess)

	entries := lb.Entries()
	assert.Len(entries, 2)
	assert.Equal("second", entries[0].Message)
	assert.Equal("09:26:55", entries[0].Time)
	assert.Equal(model.SeveritySuccess, entries[0].Severity)
	assert.Equal("first", entries[1].Message)
	assert.Equal("09:26:53", entries[1].Time)
}

func TestAppend_mirrorsToProcessLog(t *testing.T) {
	assert := assert.New(t)

	lb, _, logs := newTestLogbook()
	lb.Append("went fine", model.SeveritySuccess)
	lb.Append("careful", model.SeverityWarning)
	lb.Append("broken", model.SeverityError)

	all := logs.All()
	assert.Len(all, 3)
	assert.Equal(zap.InfoLevel, all[0].Level)
	assert.Equal(zap.WarnLevel, all[1].Level)
	assert.Equal(zap.ErrorLevel, all[2].Level)
	assert.Equal("broken", all[2].Message)
}

func TestEntries_returnsCopy(t *testing.T) {
	lb, _, _ := newTestLogbook()
	lb.Append("original", model.SeverityInfo)

	entries := lb.Entries()
	entries[0].Message = "mutated"

	assert.Equal(t, "original", lb.Entries()[0].Message)
}

func TestClear(t *testing.T) {
	assert := assert.New(t)

	lb, _, _ := newTestLogbook()
	lb.Append("a", model.SeverityInfo)
	lb.Append("b", model.SeverityError)
	lb.Clear()

	entries := lb.Entries()
	assert.Len(entries, 1)
	assert.Equal("Log cleared", entries[0].Message)
}

func TestExport(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	lb, clock, _ := newTestLogbook()
	lb.Append("Attempting login for user: root", model.SeverityInfo)
	clock.Advance(time.Second)
	lb.Append("Login successful for root", model.SeveritySuccess)
	clock.Advance(time.Second)
	lb.Append("Failed to get users: forbidden", model.SeverityError)

	var buf bytes.Buffer
	generated := epoch.Add(time.Minute)
	require.NoError(lb.Export(&buf, generated, "http://localhost:8080"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(lines, 5+3)
	assert.Equal("LibreClinica Part 11 Compliance Test Log", lines[0])
	assert.Equal("Generated: 2026-03-14T09:27:53.000Z", lines[1])
	assert.Equal("API URL: http://localhost:8080", lines[2])
	assert.Equal(strings.Repeat("=", 60), lines[3])
	assert.Equal("", lines[4])
	assert.Equal([]string{
		"[09:26:55] [ERROR] Failed to get users: forbidden",
		"[09:26:54] [SUCCESS] Login successful for root",
		"[09:26:53] [INFO] Attempting login for user: root",
	}, lines[5:])
}

func TestExport_deterministic(t *testing.T) {
	lb, _, _ := newTestLogbook()
	for i := 0; i < 10; i++ {
		lb.Append("entry", model.SeverityInfo)
	}

	var a, b bytes.Buffer
	require.NoError(t, lb.Export(&a, epoch, "http://x"))
	require.NoError(t, lb.Export(&b, epoch, "http://x"))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, 10, strings.Count(a.String(), "] [INFO] entry\n"))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "part11-test-log-2026-03-14.txt", ExportFilename(epoch))
}
