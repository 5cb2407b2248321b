package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/logger"
)

// LoggingNotifier records code dispatch events for observability without
// delivering them. Email delivery is owned by an external system; in
// development the code itself is logged so flows can be exercised end to end.
type LoggingNotifier struct {
	logger  *zap.Logger
	devMode bool
}

var _ port.Notifier = (*LoggingNotifier)(nil)

// NewLoggingNotifier constructs a notifier backed by structured logging.
func NewLoggingNotifier(log *zap.Logger, devMode bool) *LoggingNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingNotifier{logger: log, devMode: devMode}
}

// SendVerificationCode logs the dispatch. The code value only appears in
// development mode.
func (n *LoggingNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	fields := []zap.Field{
		zap.String("email", logger.MaskEmail(email)),
	}
	if n.devMode {
		fields = append(fields, zap.String("dev_code", code))
	}

	n.logger.Info("verification code dispatched", fields...)
	return nil
}
