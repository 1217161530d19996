package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-trail/internal/domain"
	"job-trail/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidInput = fmt.Errorf("invalid input: %w", domain.ErrValidation)

type UpdateMeInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Password  *string
}

type Service struct {
	users user.Repository
	cost  int
}

func NewService(users user.Repository) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get me: %w", err)
	}
	return sanitizeUser(usr), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("update me: %w", err)
	}

	for _, f := range []struct {
		in  *string
		out *string
	}{
		{in.Username, &usr.Username},
		{in.FirstName, &usr.FirstName},
		{in.LastName, &usr.LastName},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return user.User{}, ErrInvalidInput
		}
		*f.out = v
	}

	if in.Password != nil {
		pw := *in.Password
		if len(strings.TrimSpace(pw)) < 8 || len(pw) > 72 {
			return user.User{}, ErrInvalidInput
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		usr.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, usr); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("reload user: %w", err)
	}
	return sanitizeUser(updated), nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
