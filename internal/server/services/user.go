// Package services contains server-side business logic. This file implements
// UserService: registration, login, session verification, the password
// reset flow, password changes and account administration.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/notify"
	"github.com/dmitrijs2005/fintrack/internal/server/ratelimit"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Messages shown to the end user for classified failures.
const (
	MsgUserExists        = "User with this email already exists"
	MsgUserDoesNotExist  = "User does not exist"
	MsgIncorrectPassword = "Incorrect Password"
	MsgAccountSuspended  = "User account is suspended"
	MsgEmailNotFound     = "User Username/Email not found"
	MsgInvalidResetToken = "Invalid or Expired Token"
	MsgUserNotFound      = "User not found"
	MsgWrongOldPassword  = "Password is incorrect, try again"
	MsgInvalidSession    = "Invalid or expired session, please log in again"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordTooLong   = "Password must be at most 72 bytes"
)

const resetPasswordPath = "/reset-password"

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// SessionTokens issues and verifies session tokens.
type SessionTokens interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// ResetTokens generates reset tokens and resolves them to their owner.
type ResetTokens interface {
	Generate() (auth.ResetToken, error)
	Verify(ctx context.Context, store auth.ResetTokenFinder, candidate string) (*models.User, error)
	Now() time.Time
}

// RequestLimiter throttles forgot-password requests per email.
type RequestLimiter interface {
	Allow(ctx context.Context, key string) error
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

// ProfileUpdate carries the profile fields to change; nil keeps a field.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// LoginResult is the authenticated user and a fresh session token.
type LoginResult struct {
	User  *models.User
	Token string
}

// UserPage is one page of the user listing with the total count.
type UserPage struct {
	Users   []models.User
	Total   int64
	Page    int
	PerPage int
}

// Option customises a UserService.
type Option func(*UserService)

// WithLimiter throttles ForgotPassword.
func WithLimiter(l RequestLimiter) Option {
	return func(s *UserService) { s.limiter = l }
}

// WithPasswordHasher replaces the bcrypt hasher.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *UserService) { s.hasher = h }
}

// WithClock sets the clock used for session and reset token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// UserService orchestrates the credential store, the hasher, both token
// kinds and the notifier. Every mutation is one atomic row update.
type UserService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	hasher             PasswordHasher
	sessions           SessionTokens
	resets             ResetTokens
	notifier           notify.Notifier
	limiter            RequestLimiter
	log                logging.Logger
	now                func() time.Time
	frontendURL        string
	resetTTL           time.Duration
	denySuspendedLogin bool
}

// NewUserService constructs a UserService from the repositories and the
// server config. The secret and expiry windows are read once here.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	n notify.Notifier, l logging.Logger, opts ...Option) *UserService {
	s := &UserService{
		db:                 db,
		repomanager:        m,
		notifier:           n,
		log:                l.With("module", "users"),
		now:                time.Now,
		frontendURL:        strings.TrimRight(cfg.FrontendURL, "/"),
		resetTTL:           cfg.ResetTokenValidityDuration,
		denySuspendedLogin: cfg.DenySuspendedLogin,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hasher == nil {
		s.hasher = auth.NewPasswordHasher(auth.DefaultBcryptCost)
	}
	s.sessions = auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.SessionTokenValidityDuration, s.now)
	s.resets = auth.NewResetTokenManager(cfg.ResetTokenValidityDuration, s.now)
	return s
}

// Register creates an enabled account and sends the welcome email. A
// failed email is logged and does not undo the registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		IsEnabled:    true,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if errors.Is(err, common.ErrorAlreadyExists) {
		return nil, common.NewAppError(common.ErrorAlreadyExists, MsgUserExists)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.notifier.SendWelcome(ctx, notify.WelcomeMessage{
		Email:     u.Email,
		FirstName: u.FirstName,
		Password:  in.Password,
	}); err != nil {
		s.log.Warn(ctx, "welcome email failed", "user_id", u.ID, "error", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and issues a session token. An unknown email
// and a wrong password are distinct failures.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorNotFound, MsgUserDoesNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.NewAppError(common.ErrorUnauthorized, MsgIncorrectPassword)
	}

	if s.denySuspendedLogin && !user.IsEnabled {
		return nil, common.NewAppError(common.ErrorForbidden, MsgAccountSuspended)
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return nil, common.NewAppError(common.ErrorUnauthorized, MsgInvalidSession)
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorUnauthorized, MsgInvalidSession)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if s.denySuspendedLogin && !user.IsEnabled {
		return nil, common.NewAppError(common.ErrorForbidden, MsgAccountSuspended)
	}

	return user, nil
}

// ForgotPassword stores a fresh reset token for the account, replacing any
// pending one, and mails the reset link. It returns the account so the
// caller can acknowledge the address.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)

	if s.limiter != nil {
		err := s.limiter.Allow(ctx, email)
		switch {
		case errors.Is(err, ratelimit.ErrRedisUnavailable):
			s.log.Warn(ctx, "forgot-password limiter unavailable", "error", err)
		case err != nil:
			return nil, err
		}
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorNotFound, MsgEmailNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	token, err := s.resets.Generate()
	if err != nil {
		return nil, fmt.Errorf("error generating reset token: %w", err)
	}

	user, err = repo.Update(ctx, user.ID, models.UserUpdate{
		PasswordReset: &models.PasswordReset{TokenHash: token.Hash, ExpiresAt: token.ExpiresAt},
	})
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorNotFound, MsgEmailNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error storing reset token: %w", err)
	}

	if err := s.notifier.SendResetInstructions(ctx, notify.ResetMessage{
		Email:     user.Email,
		FirstName: user.FirstName,
		ResetURL:  s.resetURL(token.Plaintext),
		ExpiresIn: s.resetTTL,
	}); err != nil {
		s.log.Warn(ctx, "reset email failed", "user_id", user.ID, "error", err)
	}

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return user, nil
}

// ResetPassword sets a new password for the owner of an unexpired reset
// token and clears the token in the same update. The update only matches
// while the token is still stored, so a token is consumed at most once.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := s.resets.Verify(ctx, repo, token)
	if errors.Is(err, common.ErrInvalidToken) {
		return nil, common.NewAppError(common.ErrInvalidToken, MsgInvalidResetToken)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching reset token: %w", err)
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err = repo.ConsumeResetToken(ctx, user.ID, auth.HashResetToken(token), s.resets.Now(), hash)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrInvalidToken, MsgInvalidResetToken)
	}
	if err != nil {
		return nil, fmt.Errorf("error resetting password: %w", err)
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return user, nil
}

// UpdatePassword replaces the password of an authenticated user after
// checking the old one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return nil, common.NewAppError(common.ErrorBadRequest, MsgWrongOldPassword)
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err = repo.Update(ctx, userID, models.UserUpdate{PasswordHash: &hash, ClearPasswordReset: true})
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating password: %w", err)
	}

	s.log.Info(ctx, "password updated", "user_id", user.ID)
	return user, nil
}

// SetPassword replaces the password without checking the old one. It backs
// the admin CLI.
func (s *UserService) SetPassword(ctx context.Context, email, newPassword string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewAppError(common.ErrorNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err = repo.Update(ctx, user.ID, models.UserUpdate{PasswordHash: &hash, ClearPasswordReset: true})
	if err != nil {
		return nil, s.notFound(err, "error updating password")
	}
	return user, nil
}

// Suspend disables the account. Suspending a suspended account succeeds.
func (s *UserService) Suspend(ctx context.Context, userID string) (*models.User, error) {
	disabled := false
	user, err := s.repomanager.Users(s.db).Update(ctx, userID, models.UserUpdate{IsEnabled: &disabled})
	if err != nil {
		return nil, s.notFound(err, "error suspending user")
	}

	s.log.Info(ctx, "user suspended", "user_id", userID)
	return user, nil
}

// UpdateProfile changes the name and phone fields in one update.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).Update(ctx, userID, models.UserUpdate{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
	})
	if err != nil {
		return nil, s.notFound(err, "error updating user")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		return nil, s.notFound(err, "error searching user")
	}
	return user, nil
}

// ListUsers returns a page of non-deleted users, newest first, and the
// total count from the same snapshot.
func (s *UserService) ListUsers(ctx context.Context, page models.Page) (*UserPage, error) {
	page = page.Normalize()
	out := &UserPage{Page: page.Page, PerPage: page.PerPage}

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		total, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("error counting users: %w", err)
		}
		users, err := repo.List(ctx, page)
		if err != nil {
			return fmt.Errorf("error listing users: %w", err)
		}

		out.Total = total
		out.Users = users
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// hashPassword classifies the inputs bcrypt cannot take as validation
// failures.
func (s *UserService) hashPassword(plaintext string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	switch {
	case errors.Is(err, auth.ErrEmptyPassword):
		return "", common.NewAppError(common.ErrorValidation, MsgPasswordRequired)
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "", common.NewAppError(common.ErrorValidation, MsgPasswordTooLong)
	case err != nil:
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return hash, nil
}

func (s *UserService) notFound(err error, op string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewAppError(common.ErrorNotFound, MsgUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *UserService) resetURL(token string) string {
	return s.frontendURL + resetPasswordPath + "?token=" + url.QueryEscape(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
