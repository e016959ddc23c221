package suite

const (
	PanelConnection     = "connection-status"
	PanelLogin          = "login-result"
	PanelSession        = "session-result"
	PanelAudit          = "audit-result"
	PanelAuditCreate    = "audit-create-result"
	PanelSign           = "sign-result"
	PanelVerify         = "verify-result"
	PanelUsers          = "users-result"
	PanelUnauthorized   = "unauth-result"
	PanelStudies        = "studies-result"
	PanelSubjects       = "subjects-result"
	PanelSOAP           = "soap-result"
	PanelSOAPSubjects   = "soap-subjects-result"
	PanelSOAPNoAuth     = "soap-noauth-result"
	PanelPassword       = "password-result"
	PanelChangePassword = "change-pwd-result"
)
