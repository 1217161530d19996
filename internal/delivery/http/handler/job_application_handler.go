package handler

import (
	"context"

	"job-trail/internal/delivery/http/dto"
	"job-trail/internal/delivery/http/middleware"
	"job-trail/internal/domain/user"
	"job-trail/internal/pkg/response"
	"job-trail/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobApplicationHandler struct {
	uc usecase.JobApplicationUsecase
}

func NewJobApplicationHandler(uc usecase.JobApplicationUsecase) *JobApplicationHandler {
	return &JobApplicationHandler{uc: uc}
}

func (h *JobApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/import", h.Import)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

// RegisterAdminRoutes expects r to be guarded by RequireRole(ADMIN).
func (h *JobApplicationHandler) RegisterAdminRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.ListAll)
}

func (h *JobApplicationHandler) Create(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.CreateJobApplicationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return middleware.FromDomainError(err)
	}

	app, err := h.uc.Create(c.Context(), p, in)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, dto.NewJobApplicationResponse(app))
}

func (h *JobApplicationHandler) Import(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.ImportJobApplicationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return middleware.FromDomainError(err)
	}

	app, err := h.uc.Import(c.Context(), p, in)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, dto.NewJobApplicationResponse(app))
}

func (h *JobApplicationHandler) List(c fiber.Ctx) error {
	return h.list(c, h.uc.List)
}

func (h *JobApplicationHandler) ListAll(c fiber.Ctx) error {
	return h.list(c, h.uc.ListAll)
}

type listFunc func(ctx context.Context, p user.Principal, params usecase.ListJobApplicationsParams) (usecase.JobApplicationPage, error)

func (h *JobApplicationHandler) list(c fiber.Ctx, fetch listFunc) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var q dto.ListJobApplicationsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	params, err := q.ToParams()
	if err != nil {
		return middleware.FromDomainError(err)
	}

	page, err := fetch(c.Context(), p, params)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Page(c, dto.NewJobApplicationResponses(page.Items), page.Page, page.PageSize, page.Total)
}

func (h *JobApplicationHandler) Get(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	app, err := h.uc.Get(c.Context(), p, id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobApplicationResponse(app))
}

func (h *JobApplicationHandler) Update(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateJobApplicationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	patch, err := req.ToPatch()
	if err != nil {
		return middleware.FromDomainError(err)
	}

	app, err := h.uc.Update(c.Context(), p, id, patch)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobApplicationResponse(app))
}

func (h *JobApplicationHandler) Delete(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), p, id); err != nil {
		return middleware.FromDomainError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
