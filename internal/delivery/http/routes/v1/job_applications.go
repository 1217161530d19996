package v1

import (
	"job-trail/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// RegisterJobApplications mounts the application routes and nests the
// timeline and interview routes under /:appId.
func RegisterJobApplications(r fiber.Router, apps *handler.JobApplicationHandler, timelines *handler.TimelineHandler, interviews *handler.InterviewHandler) {
	if r == nil {
		return
	}

	if timelines != nil {
		timelines.RegisterRoutes(r.Group("/:appId/timelines"))
	}
	if interviews != nil {
		interviews.RegisterRoutes(r.Group("/:appId/interviews"))
	}
	if apps != nil {
		apps.RegisterRoutes(r)
	}
}

func RegisterAdmin(r fiber.Router, apps *handler.JobApplicationHandler) {
	if r == nil {
		return
	}
	if apps == nil {
		return
	}

	apps.RegisterAdminRoutes(r.Group("/job-applications"))
}
