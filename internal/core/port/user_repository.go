package port

import (
	"context"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
)

// UserRepository exposes persistence behavior for accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	// Enable atomically flips the enabled flag for the named account and
	// returns the number of rows affected.
	Enable(ctx context.Context, username string) (int64, error)
}
