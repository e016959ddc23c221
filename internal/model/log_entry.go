package model

import "strings"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

type LogEntry struct {
	Time     string   `json:"time"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
