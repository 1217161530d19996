package handler

import (
	"job-trail/internal/delivery/http/dto"
	"job-trail/internal/delivery/http/middleware"
	"job-trail/internal/domain/user"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type validatable interface {
	Validate() error
}

// bindBody decodes the JSON body into req and runs its validation rules.
func bindBody(c fiber.Ctx, req validatable) error {
	if err := c.Bind().Body(req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	return validateRequest(req)
}

func bindQuery(c fiber.Ctx, req validatable) error {
	if err := c.Bind().Query(req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid query parameters", nil, err)
	}
	return validateRequest(req)
}

func validateRequest(req validatable) error {
	if err := req.Validate(); err != nil {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Validation error", dto.ValidationErrors(err), err)
	}
	return nil
}

func principal(c fiber.Ctx) (user.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return user.Principal{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return p, nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}
