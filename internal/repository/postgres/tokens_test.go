package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
)

func testToken() domain.ConfirmationToken {
	created := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	return domain.ConfirmationToken{
		ID:        "tok-1",
		Token:     "opaque-token-value",
		Created:   created,
		Expires:   created.Add(15 * time.Minute),
		Confirmed: nil,
		AccountID: "acc-1",
		Username:  "alice",
	}
}

func TestTokenRepository_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)
	token := testToken()

	mock.ExpectExec(`INSERT INTO confirmation_tokens`).
		WithArgs(
			token.ID,
			token.Token,
			token.Created,
			token.Expires,
			token.Confirmed,
			token.AccountID,
			token.Username,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Save(context.Background(), token); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_FindByToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)
	token := testToken()

	rows := pgxmock.NewRows(tokenColumns).
		AddRow(
			token.ID,
			token.Token,
			token.Created,
			token.Expires,
			token.Confirmed,
			token.AccountID,
			token.Username,
		)

	mock.ExpectQuery(`SELECT .+ FROM confirmation_tokens WHERE token = \$1`).
		WithArgs(token.Token).
		WillReturnRows(rows)

	found, err := repo.FindByToken(context.Background(), token.Token)
	if err != nil {
		t.Fatalf("FindByToken returned error: %v", err)
	}
	if found.ID != token.ID || found.Username != token.Username {
		t.Fatalf("unexpected token: %+v", found)
	}
	if found.IsConfirmed() {
		t.Fatal("expected token to be pending")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_FindByToken_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM confirmation_tokens WHERE token = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(tokenColumns))

	if _, err := repo.FindByToken(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepository_MarkConfirmed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)
	at := time.Date(2025, 1, 2, 15, 10, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE confirmation_tokens SET confirmed = \$1 WHERE token = \$2 AND confirmed IS NULL`).
		WithArgs(at, "opaque-token-value").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rows, err := repo.MarkConfirmed(context.Background(), "opaque-token-value", at)
	if err != nil {
		t.Fatalf("MarkConfirmed returned error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_MarkConfirmed_AlreadyRedeemed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)
	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE confirmation_tokens SET confirmed = \$1 WHERE token = \$2 AND confirmed IS NULL`).
		WithArgs(at, "opaque-token-value").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rows, err := repo.MarkConfirmed(context.Background(), "opaque-token-value", at)
	if err != nil {
		t.Fatalf("MarkConfirmed returned error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows for a redeemed token, got %d", rows)
	}
}
