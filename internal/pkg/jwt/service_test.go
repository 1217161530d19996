package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *HMACService {
	s := NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour, "job-trail")
	s.now = func() time.Time { return now }
	return s
}

func TestHMACService_AccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(now)
	sub := Subject{UserID: uuid.New(), Email: "a@b.test", Role: "ADMIN"}

	tok, err := s.GenerateAccessToken(sub)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)
	assert.Equal(t, now.Add(15*time.Minute), tok.ExpiresAt)

	c, err := s.ValidateToken(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID, c.UserID)
	assert.Equal(t, "a@b.test", c.Email)
	assert.Equal(t, "ADMIN", c.Role)
	assert.Equal(t, tok.ID, c.TokenID())
	assert.Equal(t, "job-trail", c.Issuer)
	assert.False(t, s.IsRefreshToken(c))
	assert.Equal(t, 15*time.Minute, c.Remaining(now))
}

func TestHMACService_RefreshTokenCarriesNoProfile(t *testing.T) {
	s := newTestService(time.Now())
	tok, err := s.GenerateRefreshToken(Subject{UserID: uuid.New(), Email: "x@y.test", Role: "USER"})
	require.NoError(t, err)

	c, err := s.ValidateToken(tok.Value)
	require.NoError(t, err)
	assert.True(t, s.IsRefreshToken(c))
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Role)
}

func TestHMACService_Expired(t *testing.T) {
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(issued)
	tok, err := s.GenerateAccessToken(Subject{UserID: uuid.New()})
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = s.ValidateToken(tok.Value)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_RejectsForeignTokens(t *testing.T) {
	s := newTestService(time.Now())
	userID := uuid.New()

	other := NewHMACService("other", "other-refresh", time.Minute, time.Minute, "job-trail")
	foreign, err := other.GenerateAccessToken(Subject{UserID: userID})
	require.NoError(t, err)
	_, err = s.ValidateToken(foreign.Value)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	wrongIssuer := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Minute, "someone-else")
	tok, err := wrongIssuer.GenerateAccessToken(Subject{UserID: userID})
	require.NoError(t, err)
	_, err = s.ValidateToken(tok.Value)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_RejectsTypeSignedWithWrongSecret(t *testing.T) {
	s := newTestService(time.Now())
	c := Claims{
		UserID:    uuid.New(),
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "job-trail",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_GenerateNeedsConfiguration(t *testing.T) {
	s := NewHMACService("", "", 0, 0, "")
	_, err := s.GenerateAccessToken(Subject{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrTokenInvalid)

	ok := newTestService(time.Now())
	_, err = ok.GenerateAccessToken(Subject{})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
