// Package notify delivers account emails: the welcome message after
// registration and password reset instructions.
package notify

import (
	"context"
	"time"
)

// WelcomeMessage is sent after a successful registration. Password is the
// plaintext the user registered with.
type WelcomeMessage struct {
	Email     string
	FirstName string
	Password  string
}

// ResetMessage carries the reset link that embeds the plaintext reset token.
// ExpiresIn is how long the link stays usable; zero leaves it unstated.
type ResetMessage struct {
	Email     string
	FirstName string
	ResetURL  string
	ExpiresIn time.Duration
}

// Notifier is the outbound email boundary. The user service treats both
// calls as best effort.
type Notifier interface {
	SendWelcome(ctx context.Context, msg WelcomeMessage) error
	SendResetInstructions(ctx context.Context, msg ResetMessage) error
}

// Mailer sends one already rendered HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
