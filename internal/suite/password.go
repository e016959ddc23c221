package suite

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/ghaggin/part11/internal/gateway"
	"github.com/ghaggin/part11/internal/model"
)

const minPasswordLength = 12

var (
	reUpper   = regexp.MustCompile(`[A-Z]`)
	reLower   = regexp.MustCompile(`[a-z]`)
	reDigit   = regexp.MustCompile(`[0-9]`)
	reSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

type PolicyRequirements struct {
	MinLength bool `json:"Minimum 12 characters"`
	Uppercase bool `json:"Contains uppercase"`
	Lowercase bool `json:"Contains lowercase"`
	Number    bool `json:"Contains number"`
	Special   bool `json:"Contains special character"`
}

type PolicyReport struct {
	Valid        bool               `json:"valid"`
	Requirements PolicyRequirements `json:"requirements"`
}

// EvaluatePolicy checks a candidate password against the local complexity
// rules. Length counts characters, not bytes.
func EvaluatePolicy(password string) PolicyReport {
	req := PolicyRequirements{
		MinLength: len([]rune(password)) >= minPasswordLength,
		Uppercase: reUpper.MatchString(password),
		Lowercase: reLower.MatchString(password),
		Number:    reDigit.MatchString(password),
		Special:   reSpecial.MatchString(password),
	}
	return PolicyReport{
		Valid:        req.MinLength && req.Uppercase && req.Lowercase && req.Number && req.Special,
		Requirements: req,
	}
}

func (s *Suite) PasswordPolicy(password string) model.Outcome {
	s.info("Testing password policy for: %s", strings.Repeat("*", len([]rune(password))))

	report := EvaluatePolicy(password)
	content, _ := json.MarshalIndent(report, "", "  ")

	if report.Valid {
		s.success("Password validation passed")
	} else {
		s.sink.Append("Password validation failed", model.SeverityWarning)
	}
	return model.Outcome{Panel: PanelPassword, Passed: report.Valid, Content: string(content)}
}

func (s *Suite) ChangePassword(ctx context.Context, current, next, confirm string) model.Outcome {
	if next != confirm {
		s.fail("Password change failed: passwords do not match")
		return model.Outcome{Panel: PanelChangePassword, Content: "New passwords do not match"}
	}

	s.info("Attempting password change...")
	res := s.gw.Issue(ctx, "/api/auth/change-password", gateway.Options{
		Method: http.MethodPost,
		Body: map[string]string{
			"currentPassword": current,
			"newPassword":     next,
		},
	})
	if res.OK {
		s.success("Password changed successfully")
		return model.Outcome{Panel: PanelChangePassword, Passed: true, Content: "Password changed successfully"}
	}

	s.fail("Password change failed: %s", res.Describe())
	return model.Outcome{Panel: PanelChangePassword, Content: "Failed: " + res.Describe()}
}
