package dto

import (
	"time"

	ucauth "job-trail/internal/usecase/auth"
)

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=25"`
	FirstName string `json:"first_name" validate:"required,max=25"`
	LastName  string `json:"last_name" validate:"required,max=25"`
	Email     string `json:"email" validate:"required,email,max=40"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

func (r RegisterRequest) Validate() error {
	return validate.Struct(r)
}

func (r RegisterRequest) ToInput() ucauth.RegisterInput {
	return ucauth.RegisterInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return validate.Struct(r)
}

type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

func NewTokenResponse(p ucauth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshToken:          p.RefreshToken,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             "Bearer",
	}
}

type SessionResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

func NewSessionResponse(s ucauth.Session) SessionResponse {
	return SessionResponse{User: NewUserResponse(s.User), Tokens: NewTokenResponse(s.Tokens)}
}
