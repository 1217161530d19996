package handler

import (
	"job-trail/internal/delivery/http/dto"
	"job-trail/internal/delivery/http/middleware"
	"job-trail/internal/pkg/response"
	"job-trail/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type InterviewHandler struct {
	uc usecase.InterviewUsecase
}

func NewInterviewHandler(uc usecase.InterviewUsecase) *InterviewHandler {
	return &InterviewHandler{uc: uc}
}

// RegisterRoutes expects r to carry the :appId parameter.
func (h *InterviewHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func (h *InterviewHandler) List(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), p, appID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewInterviewResponses(items))
}

func (h *InterviewHandler) Get(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	iv, err := h.uc.Get(c.Context(), p, appID, id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewInterviewResponse(iv))
}

func (h *InterviewHandler) Create(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}

	var req dto.CreateInterviewRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return middleware.FromDomainError(err)
	}

	iv, err := h.uc.Create(c.Context(), p, appID, in)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, dto.NewInterviewResponse(iv))
}

func (h *InterviewHandler) Update(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateInterviewRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	patch, err := req.ToPatch()
	if err != nil {
		return middleware.FromDomainError(err)
	}

	iv, err := h.uc.Update(c.Context(), p, appID, id, patch)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewInterviewResponse(iv))
}

func (h *InterviewHandler) Delete(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), p, appID, id); err != nil {
		return middleware.FromDomainError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
