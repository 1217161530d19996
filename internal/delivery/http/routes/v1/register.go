package v1

import (
	"job-trail/internal/delivery/http/handler"
	"job-trail/internal/delivery/http/middleware"
	"job-trail/internal/domain/user"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth            *handler.AuthHandler
	User            *handler.UserHandler
	JobApplications *handler.JobApplicationHandler
	Timelines       *handler.TimelineHandler
	Interviews      *handler.InterviewHandler
}

func Register(r fiber.Router, h Handlers, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if authMw == nil {
		return
	}

	protected := r.Group("", authMw.Middleware(), middleware.RequireRole(user.RoleAdmin, user.RoleUser, user.RoleGuest))

	RegisterUsers(protected.Group("/users"), h.User)
	RegisterJobApplications(protected.Group("/job-applications"), h.JobApplications, h.Timelines, h.Interviews)
	RegisterAdmin(protected.Group("/admin", middleware.RequireRole(user.RoleAdmin)), h.JobApplications)
}
