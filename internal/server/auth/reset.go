package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// resetTokenBytes gives 256 bits of entropy per token.
const resetTokenBytes = 32

// ResetToken is a freshly generated reset token. Plaintext goes to the user
// only; Hash and ExpiresAt are what gets stored.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenFinder looks up the user owning an unexpired reset token hash.
type ResetTokenFinder interface {
	FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
}

// ResetTokenManager generates one-time password reset tokens and resolves
// them back to their owner.
type ResetTokenManager struct {
	ttl time.Duration
	now func() time.Time
}

// NewResetTokenManager returns a manager whose tokens expire ttl after
// generation. A nil now uses time.Now.
func NewResetTokenManager(ttl time.Duration, now func() time.Time) *ResetTokenManager {
	if now == nil {
		now = time.Now
	}
	return &ResetTokenManager{ttl: ttl, now: now}
}

// Now is the manager's clock; expiry checks against the store use it too.
func (m *ResetTokenManager) Now() time.Time {
	return m.now()
}

func (m *ResetTokenManager) Generate() (ResetToken, error) {
	plaintext, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Plaintext: plaintext,
		Hash:      HashResetToken(plaintext),
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

// Verify returns the non-deleted user whose stored hash matches candidate
// and whose reset has not expired. Wrong, expired and consumed tokens all
// yield common.ErrInvalidToken.
func (m *ResetTokenManager) Verify(ctx context.Context, store ResetTokenFinder, candidate string) (*models.User, error) {
	if candidate == "" {
		return nil, common.ErrInvalidToken
	}
	u, err := store.FindByResetTokenHash(ctx, HashResetToken(candidate), m.now())
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// HashResetToken returns the hex SHA-256 digest stored for a reset token.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
