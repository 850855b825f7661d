package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
)

func testAccount() domain.Account {
	return domain.Account{
		ID:           "acc-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "argon2id$v=19$m=65536,t=3,p=4$salt$hash",
		Role:         domain.RoleUser,
		Enabled:      false,
		CreatedAt:    time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

func TestUserRepository_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	account := testAccount()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
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
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Save(context.Background(), account); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Save_TranslatesUniqueViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email", constraintUsersEmail, repository.ErrDuplicateEmail},
		{"username", constraintUsersUsername, repository.ErrDuplicateUsername},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("pgxmock.NewPool: %v", err)
			}
			defer mock.Close()

			repo := NewUserRepository(mock)
			account := testAccount()

			mock.ExpectExec(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{
					Code:           uniqueViolationCode,
					ConstraintName: tc.constraint,
				})

			if err := repo.Save(context.Background(), account); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	account := testAccount()

	rows := pgxmock.NewRows(userColumns).
		AddRow(
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
		)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs(account.Email).
		WillReturnRows(rows)

	found, err := repo.FindByEmail(context.Background(), account.Email)
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if found.ID != account.ID || found.Username != account.Username {
		t.Fatalf("unexpected account: %+v", found)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(userColumns))

	if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_Enable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET enabled = \$1 WHERE username = \$2`).
		WithArgs(true, "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rows, err := repo.Enable(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Enable returned error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Enable_NoMatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET enabled = \$1 WHERE username = \$2`).
		WithArgs(true, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rows, err := repo.Enable(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Enable returned error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows affected, got %d", rows)
	}
}
