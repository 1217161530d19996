package user

import (
	"context"
	"fmt"

	"job-trail/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEmailTaken = fmt.Errorf("email already registered: %w", domain.ErrConflict)
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// Update writes the profile fields and password hash.
	Update(ctx context.Context, u User) error
}
