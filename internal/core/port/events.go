package port

import (
	"context"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
)

// AuditPublisher emits security audit events. Publishing is fire-and-forget;
// implementations must not block request handling on broker availability.
type AuditPublisher interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}

// Notifier delivers verification codes to users. Email transport is owned by
// an external system; the core only hands codes over.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}
