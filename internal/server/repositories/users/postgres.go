package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, first_name, last_name, phone_number, is_enabled,
		        password_reset_token_hash, password_reset_expires_at, is_deleted, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user       models.User
		resetHash  sql.NullString
		resetUntil sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.IsEnabled, &resetHash, &resetUntil, &user.IsDeleted,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if resetHash.Valid {
		user.PasswordResetTokenHash = &resetHash.String
	}
	if resetUntil.Valid {
		user.PasswordResetExpiresAt = &resetUntil.Time
	}
	return &user, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, password_hash, first_name, last_name, phone_number, is_enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.PhoneNumber, user.IsEnabled,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1 AND NOT is_deleted
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE lower(email) = lower($1) AND NOT is_deleted
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE password_reset_token_hash = $1 AND password_reset_expires_at > $2 AND NOT is_deleted
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.FirstName != nil {
		set("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		set("last_name", *upd.LastName)
	}
	if upd.PhoneNumber != nil {
		set("phone_number", *upd.PhoneNumber)
	}
	if upd.PasswordHash != nil {
		set("password_hash", *upd.PasswordHash)
	}
	if upd.IsEnabled != nil {
		set("is_enabled", *upd.IsEnabled)
	}
	switch {
	case upd.PasswordReset != nil:
		set("password_reset_token_hash", upd.PasswordReset.TokenHash)
		set("password_reset_expires_at", upd.PasswordReset.ExpiresAt)
	case upd.ClearPasswordReset:
		sets = append(sets, "password_reset_token_hash = NULL", "password_reset_expires_at = NULL")
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE users SET %s
		 WHERE id = $%d AND NOT is_deleted
		 RETURNING %s
		 `, strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, id, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	query :=
		`UPDATE users SET password_hash = $1,
		        password_reset_token_hash = NULL, password_reset_expires_at = NULL, updated_at = now()
		 WHERE id = $2 AND password_reset_token_hash = $3 AND password_reset_expires_at > $4 AND NOT is_deleted
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, passwordHash, id, tokenHash, now))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context, page models.Page) ([]models.User, error) {
	page = page.Normalize()
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE NOT is_deleted
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, page.PerPage, page.Offset())
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := make([]models.User, 0, page.PerPage)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT count(*) FROM users WHERE NOT is_deleted`

	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
