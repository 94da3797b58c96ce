package notify

import (
	"context"
	"fmt"
)

// EmailNotifier renders the account templates and hands them to a Mailer.
type EmailNotifier struct {
	mailer Mailer
}

func NewEmailNotifier(m Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: m}
}

func (n *EmailNotifier) SendWelcome(ctx context.Context, msg WelcomeMessage) error {
	body, err := render(welcomeTpl, msg)
	if err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	return n.mailer.Send(ctx, msg.Email, welcomeSubject, body)
}

func (n *EmailNotifier) SendResetInstructions(ctx context.Context, msg ResetMessage) error {
	body, err := render(resetTpl, msg)
	if err != nil {
		return fmt.Errorf("render reset: %w", err)
	}
	return n.mailer.Send(ctx, msg.Email, resetSubject, body)
}
