package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
)

// StubPublisher logs audit events instead of producing them, used when Kafka
// is disabled (local development, tests).
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a publisher that only logs.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

// Publish logs the event at debug level.
func (s *StubPublisher) Publish(_ context.Context, event domain.AuditEvent) error {
	s.logger.Debug("audit event",
		zap.String("type", string(event.Type)),
		zap.Int64("user_id", event.UserID),
		zap.String("detail", event.Detail),
	)
	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
