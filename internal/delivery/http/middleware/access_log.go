package middleware

import (
	"time"

	"job-trail/internal/pkg/logger"

	charmLog "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger *charmLog.Logger
}

func NewAccessLogMiddleware(log *charmLog.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.OrDiscard(log).WithPrefix("access")}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []any{
			"rid", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP(),
			"resp_bytes", len(c.Response().Body()),
		}
		if p, ok := PrincipalFrom(c); ok {
			fields = append(fields, "user_id", p.UserID)
		}
		if status >= fiber.StatusInternalServerError {
			m.logger.Warn("request", fields...)
		} else {
			m.logger.Info("request", fields...)
		}

		return err
	}
}
