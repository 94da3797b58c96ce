package notify

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// LogNotifier only records that a message would have been sent. It is
// used when no SMTP host is configured. Passwords and reset links are
// never written.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{log: l.With("module", "notify")}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, msg WelcomeMessage) error {
	n.log.Info(ctx, "welcome email suppressed", "to", msg.Email)
	return nil
}

func (n *LogNotifier) SendResetInstructions(ctx context.Context, msg ResetMessage) error {
	n.log.Info(ctx, "reset email suppressed", "to", msg.Email)
	return nil
}
