package dto

import (
	"time"

	"job-trail/internal/domain/user"
	useruc "job-trail/internal/usecase/user"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type UpdateMeRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=25"`
	FirstName *string `json:"first_name" validate:"omitempty,max=25"`
	LastName  *string `json:"last_name" validate:"omitempty,max=25"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (r UpdateMeRequest) Validate() error {
	return validate.Struct(r)
}

func (r UpdateMeRequest) ToInput() useruc.UpdateMeInput {
	return useruc.UpdateMeInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
}
