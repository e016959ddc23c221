package suite

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghaggin/part11/internal/gateway"
	"github.com/ghaggin/part11/internal/model"
	"github.com/google/uuid"
)

const defaultAuditAction = "Test action"

func (s *Suite) AuditLogs(ctx context.Context) model.Outcome {
	s.info("Fetching audit logs...")
	return s.query(ctx, PanelAudit, "/api/audit?limit=20", gateway.Options{},
		func(r gateway.Result) string {
			return sprintf("Retrieved %d audit log entries", r.Count())
		},
		"Failed to get audit logs")
}

func (s *Suite) CreateAuditEntry(ctx context.Context, action string) model.Outcome {
	if action == "" {
		action = defaultAuditAction
	}
	s.info("Creating audit entry: %s", action)

	return s.query(ctx, PanelAuditCreate, "/api/audit", gateway.Options{
		Method: http.MethodPost,
		Body: map[string]any{
			"action":     action,
			"entityType": "TEST",
			"entityId":   "test-" + uuid.NewString(),
			"details": map[string]any{
				"testEntry": true,
				"timestamp": s.timestamp(),
			},
		},
	}, fixed("Audit entry created successfully"), "Failed to create audit entry")
}

// Sign applies an electronic signature with the given meaning, re-entering
// the password as the signature component.
func (s *Suite) Sign(ctx context.Context, data, meaning, password string) model.Outcome {
	s.info("Applying electronic signature with meaning: %s", meaning)

	return s.query(ctx, PanelSign, "/api/audit/sign", gateway.Options{
		Method: http.MethodPost,
		Body: map[string]string{
			"data":      data,
			"meaning":   meaning,
			"password":  password,
			"timestamp": s.timestamp(),
		},
	}, fixed("Electronic signature applied successfully"), "Electronic signature failed")
}

func (s *Suite) VerifySignature(ctx context.Context, signatureID string) model.Outcome {
	if signatureID == "" {
		return model.Outcome{Panel: PanelVerify, Content: "Please enter a signature ID"}
	}
	s.info("Verifying signature: %s", signatureID)

	return s.query(ctx, PanelVerify, "/api/audit/signature/"+url.PathEscape(signatureID), gateway.Options{},
		fixed("Signature verification complete"), "Signature verification failed")
}
