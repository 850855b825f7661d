package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"role",
	"enabled",
	"locked",
	"expired",
	"credentials_expired",
	"created_at",
}

// Save inserts a new account row. Unique-constraint violations are translated
// to repository.ErrDuplicateEmail / repository.ErrDuplicateUsername so callers
// can report a precise conflict even when the pre-check raced.
func (r *UserRepository) Save(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("users").
		Columns(userColumns...).
		Values(
			account.ID,
			account.Username,
			account.Email,
			account.PasswordHash,
			account.Role,
			account.Enabled,
			account.Locked,
			account.Expired,
			account.CredentialsExpired,
			account.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			switch pgErr.ConstraintName {
			case constraintUsersEmail:
				return repository.ErrDuplicateEmail
			case constraintUsersUsername:
				return repository.ErrDuplicateUsername
			}
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByUsername retrieves an account by its unique username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findBy(ctx, squirrel.Eq{"username": username})
}

// FindByEmail retrieves an account by its unique email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findBy(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) findBy(ctx context.Context, pred squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Enabled,
		&account.Locked,
		&account.Expired,
		&account.CredentialsExpired,
		&account.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &account, nil
}

// Enable flips the enabled flag for the named account.
func (r *UserRepository) Enable(ctx context.Context, username string) (int64, error) {
	stmt, args, err := r.builder.Update("users").
		Set("enabled", true).
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build enable account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("enable account: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.UserRepository = (*UserRepository)(nil)
