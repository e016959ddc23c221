package suite

import (
	"context"

	"github.com/ghaggin/part11/internal/model"
)

// Input carries the form values a check reads.
type Input map[string]string

func (in Input) Get(key string) string {
	return in[key]
}

type Check struct {
	Name  string
	Title string
	Panel string
	Run   func(ctx context.Context, in Input) model.Outcome
}

// Checks lists the checks in the order they appear on the operator page.
func (s *Suite) Checks() []Check {
	return []Check{
		{
			Name: "session-timeout", Title: "Session timeout", Panel: PanelSession,
			Run: func(context.Context, Input) model.Outcome { return s.SessionTimeout() },
		},
		{
			Name: "audit-logs", Title: "Get audit logs", Panel: PanelAudit,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.AuditLogs(ctx) },
		},
		{
			Name: "audit-create", Title: "Create audit entry", Panel: PanelAuditCreate,
			Run: func(ctx context.Context, in Input) model.Outcome { return s.CreateAuditEntry(ctx, in.Get("action")) },
		},
		{
			Name: "sign", Title: "Apply electronic signature", Panel: PanelSign,
			Run: func(ctx context.Context, in Input) model.Outcome {
				return s.Sign(ctx, in.Get("data"), in.Get("meaning"), in.Get("password"))
			},
		},
		{
			Name: "verify-signature", Title: "Verify signature", Panel: PanelVerify,
			Run: func(ctx context.Context, in Input) model.Outcome {
				return s.VerifySignature(ctx, in.Get("signatureId"))
			},
		},
		{
			Name: "users", Title: "Get users", Panel: PanelUsers,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.Users(ctx) },
		},
		{
			Name: "unauthorized", Title: "Test unauthorized access", Panel: PanelUnauthorized,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.Unauthorized(ctx) },
		},
		{
			Name: "studies", Title: "Get studies", Panel: PanelStudies,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.Studies(ctx) },
		},
		{
			Name: "subjects", Title: "Get subjects", Panel: PanelSubjects,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.Subjects(ctx) },
		},
		{
			Name: "soap-status", Title: "SOAP status", Panel: PanelSOAP,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.SOAPStatus(ctx) },
		},
		{
			Name: "soap-studies", Title: "SOAP study list", Panel: PanelSOAP,
			Run: func(ctx context.Context, in Input) model.Outcome { return s.SOAPStudyList(ctx, in.Get("username")) },
		},
		{
			Name: "soap-subjects", Title: "SOAP study subjects", Panel: PanelSOAPSubjects,
			Run: func(ctx context.Context, in Input) model.Outcome { return s.SOAPSubjects(ctx, in.Get("username")) },
		},
		{
			Name: "soap-noauth", Title: "SOAP without authentication", Panel: PanelSOAPNoAuth,
			Run: func(ctx context.Context, _ Input) model.Outcome { return s.SOAPNoAuth(ctx) },
		},
		{
			Name: "password-policy", Title: "Password policy", Panel: PanelPassword,
			Run: func(_ context.Context, in Input) model.Outcome { return s.PasswordPolicy(in.Get("testPassword")) },
		},
		{
			Name: "change-password", Title: "Change password", Panel: PanelChangePassword,
			Run: func(ctx context.Context, in Input) model.Outcome {
				return s.ChangePassword(ctx, in.Get("currentPassword"), in.Get("newPassword"), in.Get("confirmPassword"))
			},
		},
	}
}

func (s *Suite) Lookup(name string) (Check, bool) {
	for _, c := range s.Checks() {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}
