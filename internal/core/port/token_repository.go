package port

import (
	"context"
	"time"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
)

// TokenRepository manages confirmation token records.
type TokenRepository interface {
	FindByToken(ctx context.Context, token string) (*domain.ConfirmationToken, error)
	Save(ctx context.Context, token domain.ConfirmationToken) error
	// MarkConfirmed atomically sets the confirmation timestamp on the token
	// with the given value and returns the number of rows affected.
	MarkConfirmed(ctx context.Context, token string, at time.Time) (int64, error)
}
