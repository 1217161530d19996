package handler

import (
	"context"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler always answers 200; the flags report which backends
// responded within the probe timeout.
type HealthHandler struct {
	db      Pinger
	redis   Pinger
	timeout time.Duration
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	status := domain.HealthStatus{
		Database:   probe(ctx, h.db),
		Redis:      probe(ctx, h.redis),
		ServerTime: time.Now().UTC(),
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, status)
}

func probe(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	return p.Ping(ctx) == nil
}
