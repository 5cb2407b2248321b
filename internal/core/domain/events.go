package domain

import "time"

// AuditEventType labels security-relevant events published for audit trails.
type AuditEventType string

const (
	AuditLoginSucceeded  AuditEventType = "auth.login.succeeded"
	AuditLoginFailed     AuditEventType = "auth.login.failed"
	AuditTokenRotated    AuditEventType = "auth.token.rotated"
	AuditLogout          AuditEventType = "auth.logout"
	AuditSignupCompleted AuditEventType = "auth.signup.completed"
	AuditRateLimited     AuditEventType = "auth.rate_limited"
)

// AuditEvent is the payload emitted to the audit topic. Identity fields are
// expected to be pre-masked by the producer.
type AuditEvent struct {
	Type       AuditEventType `json:"type"`
	UserID     int64          `json:"user_id,omitempty"`
	Email      string         `json:"email,omitempty"`
	ClientIP   string         `json:"client_ip,omitempty"`
	Detail     string         `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
