package user

import (
	"context"
	"testing"

	"job-trail/internal/domain"
	"job-trail/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUsers struct {
	users   map[uuid.UUID]user.User
	updates int
}

func (s *stubUsers) Create(_ context.Context, u user.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *stubUsers) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (s *stubUsers) Update(_ context.Context, u user.User) error {
	s.updates++
	s.users[u.ID] = u
	return nil
}

func seeded() (*stubUsers, user.User) {
	u := user.User{ID: uuid.New(), Username: "dana", Email: "d@x.test", FirstName: "Dana", LastName: "S", PasswordHash: "hash", Role: user.RoleUser}
	return &stubUsers{users: map[uuid.UUID]user.User{u.ID: u}}, u
}

func ptr(s string) *string { return &s }

func TestService_GetMe(t *testing.T) {
	repo, u := seeded()
	s := NewService(repo)

	got, err := s.GetMe(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana", got.Username)
	assert.Empty(t, got.PasswordHash)

	_, err = s.GetMe(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UpdateMe(t *testing.T) {
	repo, u := seeded()
	s := NewService(repo)
	s.cost = bcrypt.MinCost

	got, err := s.UpdateMe(context.Background(), u.ID, UpdateMeInput{FirstName: ptr(" Fox "), Password: ptr("new-password")})
	require.NoError(t, err)
	assert.Equal(t, "Fox", got.FirstName)
	assert.Equal(t, "S", got.LastName)
	assert.Empty(t, got.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[u.ID].PasswordHash), []byte("new-password")))
}

func TestService_UpdateMeValidation(t *testing.T) {
	repo, u := seeded()
	s := NewService(repo)

	for _, in := range []UpdateMeInput{
		{Username: ptr("  ")},
		{LastName: ptr("")},
		{Password: ptr("short")},
	} {
		_, err := s.UpdateMe(context.Background(), u.ID, in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Zero(t, repo.updates)
}
