package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
)

// TokenRepository implements port.TokenRepository using PostgreSQL.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository constructs a new confirmation token repository.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var tokenColumns = []string{
	"id",
	"token",
	"created",
	"expires",
	"confirmed",
	"account_id",
	"username",
}

// Save inserts a new confirmation token row.
func (r *TokenRepository) Save(ctx context.Context, token domain.ConfirmationToken) error {
	stmt, args, err := r.builder.Insert("confirmation_tokens").
		Columns(tokenColumns...).
		Values(
			token.ID,
			token.Token,
			token.Created,
			token.Expires,
			token.Confirmed,
			token.AccountID,
			token.Username,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert confirmation token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert confirmation token: %w", err)
	}

	return nil
}

// FindByToken retrieves a confirmation token by its opaque value.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*domain.ConfirmationToken, error) {
	stmt, args, err := r.builder.
		Select(tokenColumns...).
		From("confirmation_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select confirmation token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var record domain.ConfirmationToken
	if err := row.Scan(
		&record.ID,
		&record.Token,
		&record.Created,
		&record.Expires,
		&record.Confirmed,
		&record.AccountID,
		&record.Username,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan confirmation token: %w", err)
	}

	return &record, nil
}

// MarkConfirmed sets the confirmation timestamp on a pending token. Already
// confirmed tokens are left untouched and report zero rows, which keeps
// redemption single-use under concurrent confirms.
func (r *TokenRepository) MarkConfirmed(ctx context.Context, token string, at time.Time) (int64, error) {
	stmt, args, err := r.builder.Update("confirmation_tokens").
		Set("confirmed", at).
		Where(squirrel.Eq{"token": token}).
		Where("confirmed IS NULL").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark confirmed sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("mark token confirmed: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
