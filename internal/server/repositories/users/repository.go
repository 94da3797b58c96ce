// Package users declares the credential store: persistence of user accounts
// keyed by id and by case-insensitive email.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository defines the credential store operations. Soft-deleted users are
// invisible to every lookup and update. Lookups that match nothing return
// common.ErrorNotFound; a duplicate email on Create returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByResetTokenHash returns the user holding tokenHash whose reset
	// expiry is strictly after now.
	FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)

	// Update applies all fields of upd in one statement and returns the
	// resulting row.
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)

	// ConsumeResetToken sets the new password hash and clears the reset
	// fields, but only while the row still holds tokenHash unexpired at now.
	// A token that was consumed or replaced in the meantime yields
	// common.ErrorNotFound.
	ConsumeResetToken(ctx context.Context, id, tokenHash string, now time.Time, passwordHash string) (*models.User, error)

	List(ctx context.Context, page models.Page) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}
