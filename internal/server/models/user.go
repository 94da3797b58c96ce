package models

import "time"

// User is an account as stored by the credential store. PasswordHash and the
// password-reset fields never leave the server.
type User struct {
	ID                     string
	Email                  string
	PasswordHash           string
	FirstName              string
	LastName               string
	PhoneNumber            string
	IsEnabled              bool
	PasswordResetTokenHash *string
	PasswordResetExpiresAt *time.Time
	IsDeleted              bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasPendingReset reports whether a reset token was issued and has not been
// consumed. The token may still be expired.
func (u *User) HasPendingReset() bool {
	return u.PasswordResetTokenHash != nil && u.PasswordResetExpiresAt != nil
}

// PasswordReset is the stored half of a reset token. Hash and expiry are
// always written together.
type PasswordReset struct {
	TokenHash string
	ExpiresAt time.Time
}

// UserUpdate lists the fields changed by a single atomic update. Nil fields
// are left as they are.
type UserUpdate struct {
	FirstName          *string
	LastName           *string
	PhoneNumber        *string
	PasswordHash       *string
	IsEnabled          *bool
	PasswordReset      *PasswordReset
	ClearPasswordReset bool
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil &&
		u.PasswordHash == nil && u.IsEnabled == nil && u.PasswordReset == nil && !u.ClearPasswordReset
}

// Page selects a window of a listing; Page is 1-based.
type Page struct {
	Page    int
	PerPage int
}

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}
