package inbound

import (
	"time"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
)

type RegisterStartRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegisterStartResponse struct {
	AttemptToken     string `json:"attempt_token"`
	ResendInSeconds  int64  `json:"resend_in_seconds"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

func (RegisterStartResponse) Message() string {
	return "We sent a verification code to your email."
}

type RegisterVerifyRequest struct {
	AttemptToken string `json:"attempt_token"`
	Code         string `json:"code"`
}

type RegisterVerifyResponse struct{}

func (RegisterVerifyResponse) Message() string {
	return "Email verified. You can now set your password."
}

type RegisterResendRequest struct {
	AttemptToken string `json:"attempt_token"`
}

type RegisterResendResponse struct {
	ResendInSeconds  int64 `json:"resend_in_seconds"`
	ExpiresInSeconds int64 `json:"expires_in_seconds"`
}

func (RegisterResendResponse) Message() string {
	return "We sent a new verification code to your email."
}

type RegisterFinalizeRequest struct {
	AttemptToken string `json:"attempt_token"`
	Password     string `json:"password"`
}

type RegisterFinalizeResponse struct{}

func (RegisterFinalizeResponse) Message() string {
	return "Registration complete. You can now log in."
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type PasswordRecoverRequest struct {
	Email string `json:"email"`
}

type PasswordRecoverResponse struct{}

func (PasswordRecoverResponse) Message() string {
	return "If an account with that email exists, we have sent a temporary password."
}

type AccountDeleteRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID        int64     `json:"id,string"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserListResponse struct {
	Page  int32          `json:"page"`
	Size  int32          `json:"size"`
	Total int64          `json:"total"`
	Users []UserResponse `json:"users"`
}

func toUserResponses(users []entity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Status:    u.Status.String(),
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}
	}
	return out
}
