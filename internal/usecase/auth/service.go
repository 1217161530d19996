package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/user"
	"job-trail/internal/pkg/jwt"
	"job-trail/internal/pkg/logger"

	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered = user.ErrEmailTaken
	ErrInvalidCredentials     = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	ErrInvalidToken           = fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	ErrTokenExpired           = fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
	ErrTokenRevoked           = fmt.Errorf("token revoked: %w", domain.ErrUnauthorized)
	ErrInvalidInput           = fmt.Errorf("invalid input: %w", domain.ErrValidation)
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// TokenBlocklist stores revoked token ids until their natural expiry.
type TokenBlocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type Session struct {
	User   user.User
	Tokens TokenPair
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (Session, error)
	Login(ctx context.Context, in LoginInput) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	Authenticate(ctx context.Context, accessToken string) (user.Principal, error)
}

type Service struct {
	users     user.Repository
	tokens    jwt.Service
	blocklist TokenBlocklist
	logger    *charmLog.Logger
	now       func() time.Time
	cost      int
}

func NewService(users user.Repository, tokens jwt.Service, blocklist TokenBlocklist, log *charmLog.Logger) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		blocklist: blocklist,
		logger:    logger.OrDiscard(log).WithPrefix("auth"),
		now:       time.Now,
		cost:      bcrypt.DefaultCost,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" {
		return Session{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return Session{}, fmt.Errorf("%w: password must be 8 to %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return Session{}, ErrEmailAlreadyRegistered
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	pair, err := s.issue(created)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("user registered", "user_id", created.ID)
	return Session{User: sanitizeUser(created), Tokens: pair}, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	pair, err := s.issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: sanitizeUser(u), Tokens: pair}, nil
}

// Refresh rotates the pair: the presented refresh token is revoked before
// a new one is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.verify(ctx, refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if err := s.revoke(ctx, claims); err != nil {
		return TokenPair{}, err
	}
	return s.issue(u)
}

func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.verify(ctx, accessToken, jwt.TokenTypeAccess)
	if err != nil {
		return err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

func (s *Service) Authenticate(ctx context.Context, accessToken string) (user.Principal, error) {
	claims, err := s.verify(ctx, accessToken, jwt.TokenTypeAccess)
	if err != nil {
		return user.Principal{}, err
	}
	role, err := user.ParseRole(claims.Role)
	if err != nil {
		return user.Principal{}, ErrInvalidToken
	}
	return user.Principal{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}

func (s *Service) verify(ctx context.Context, raw, tokenType string) (jwt.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return jwt.Claims{}, ErrInvalidToken
	}
	claims, err := s.tokens.ValidateToken(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return jwt.Claims{}, ErrTokenExpired
		}
		return jwt.Claims{}, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return jwt.Claims{}, ErrInvalidToken
	}
	if s.blocklist != nil {
		revoked, err := s.blocklist.IsRevoked(ctx, claims.TokenID())
		if err != nil {
			// Fail open on blocklist errors.
			s.logger.Warn("revocation check failed", "err", err)
		}
		if revoked {
			return jwt.Claims{}, ErrTokenRevoked
		}
	}
	return claims, nil
}

func (s *Service) revoke(ctx context.Context, claims jwt.Claims) error {
	if s.blocklist == nil {
		return nil
	}
	if err := s.blocklist.Revoke(ctx, claims.TokenID(), claims.Remaining(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Service) issue(u user.User) (TokenPair, error) {
	sub := jwt.Subject{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
	access, err := s.tokens.GenerateAccessToken(sub)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(sub)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:           access.Value,
		AccessTokenExpiresAt:  access.ExpiresAt,
		RefreshToken:          refresh.Value,
		RefreshTokenExpiresAt: refresh.ExpiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidPassword(pw string) bool {
	n := len(strings.TrimSpace(pw))
	return n >= 8 && len(pw) <= maxPasswordBytes
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
