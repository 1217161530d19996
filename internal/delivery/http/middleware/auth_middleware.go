package middleware

import (
	"context"
	"errors"
	"strings"

	"job-trail/internal/domain/user"
	ucauth "job-trail/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

const CtxPrincipalKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (user.Principal, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		p, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ucauth.ErrTokenExpired):
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			case errors.Is(err, ucauth.ErrTokenRevoked):
				return NewAppError(fiber.StatusUnauthorized, "Token revoked", nil, err)
			case errors.Is(err, ucauth.ErrInvalidToken):
				return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
			default:
				return FromDomainError(err)
			}
		}

		c.Locals(CtxPrincipalKey, p)
		return c.Next()
	}
}

// RequireRole must run after the auth middleware.
func RequireRole(roles ...user.Role) fiber.Handler {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if _, ok := allowed[p.Role]; !ok {
			return NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
		}
		return c.Next()
	}
}

func PrincipalFrom(c fiber.Ctx) (user.Principal, bool) {
	p, ok := c.Locals(CtxPrincipalKey).(user.Principal)
	return p, ok
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
