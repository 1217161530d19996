package handler

import (
	"job-trail/internal/delivery/http/dto"
	"job-trail/internal/delivery/http/middleware"
	"job-trail/internal/domain/user"
	"job-trail/internal/pkg/response"
	"job-trail/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	MessageUndo  = "Success Undo"
	MessageReset = "Success Reset"
)

type TimelineHandler struct {
	uc usecase.TimelineUsecase
}

func NewTimelineHandler(uc usecase.TimelineUsecase) *TimelineHandler {
	return &TimelineHandler{uc: uc}
}

// RegisterRoutes expects r to carry the :appId parameter.
func (h *TimelineHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	// undo and reset must be registered ahead of /:id.
	r.Delete("/undo", h.Undo)
	r.Delete("/reset", h.Reset)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Patch("/:id/note", h.UpdateNote)
	r.Delete("/:id", h.Delete)
}

// inputError returns err only when p owns appID. Anyone else gets the
// ownership failure, so malformed requests reveal nothing about the timeline.
func (h *TimelineHandler) inputError(c fiber.Ctx, p user.Principal, appID uuid.UUID, err error) error {
	if authErr := h.uc.Authorize(c.Context(), p, appID); authErr != nil {
		return middleware.FromDomainError(authErr)
	}
	return err
}

func (h *TimelineHandler) List(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}

	events, err := h.uc.List(c.Context(), p, appID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTimelineResponses(events))
}

func (h *TimelineHandler) Get(c fiber.Ctx) error {
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
		return h.inputError(c, p, appID, err)
	}

	ev, err := h.uc.Get(c.Context(), p, appID, id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTimelineResponse(ev))
}

func (h *TimelineHandler) Create(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}

	var req dto.CreateTimelineRequest
	if err := bindBody(c, &req); err != nil {
		return h.inputError(c, p, appID, err)
	}
	in, err := req.ToInput()
	if err != nil {
		return h.inputError(c, p, appID, middleware.FromDomainError(err))
	}

	ev, err := h.uc.Create(c.Context(), p, appID, in)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, dto.NewTimelineResponse(ev))
}

func (h *TimelineHandler) Update(c fiber.Ctx) error {
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
		return h.inputError(c, p, appID, err)
	}

	var req dto.UpdateTimelineRequest
	if err := bindBody(c, &req); err != nil {
		return h.inputError(c, p, appID, err)
	}
	patch, err := req.ToPatch()
	if err != nil {
		return h.inputError(c, p, appID, middleware.FromDomainError(err))
	}

	ev, err := h.uc.Update(c.Context(), p, appID, id, patch)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTimelineResponse(ev))
}

func (h *TimelineHandler) UpdateNote(c fiber.Ctx) error {
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
		return h.inputError(c, p, appID, err)
	}

	var req dto.UpdateTimelineNoteRequest
	if err := bindBody(c, &req); err != nil {
		return h.inputError(c, p, appID, err)
	}

	ev, err := h.uc.UpdateNote(c.Context(), p, appID, id, *req.Notes)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTimelineResponse(ev))
}

func (h *TimelineHandler) Delete(c fiber.Ctx) error {
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
		return h.inputError(c, p, appID, err)
	}

	if _, err := h.uc.Delete(c.Context(), p, appID, id); err != nil {
		return middleware.FromDomainError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TimelineHandler) Undo(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}

	ev, err := h.uc.Undo(c.Context(), p, appID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, MessageUndo, dto.NewTimelineResponse(ev))
}

func (h *TimelineHandler) Reset(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	appID, err := uuidParam(c, "appId")
	if err != nil {
		return err
	}

	ev, err := h.uc.Reset(c.Context(), p, appID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, MessageReset, dto.NewTimelineResponse(ev))
}
