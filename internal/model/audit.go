package model

import "time"

// Audit actions recorded by the credential service and reset flow.
const (
	AuditActionSignup       = "signup"
	AuditActionSignin       = "signin"
	AuditActionProfile      = "profile"
	AuditActionResetRequest = "reset_request"
	AuditActionResetRedeem  = "reset_redeem"
)

const (
	AuditOutcomeOK     = "ok"
	AuditOutcomeDenied = "denied"
	AuditOutcomeError  = "error"
)

// AuditEvent is a single auth event. Detail is a short operator-facing
// reason; it never contains passwords, hashes or tokens.
type AuditEvent struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	ActorEmail string    `json:"actor_email,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
