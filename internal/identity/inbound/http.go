package inbound

import (
	"context"

	"github.com/visiondraft/visiondraft/internal/identity/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/router"
)

type uc interface {
	RegisterStart(ctx context.Context, in usecase.RegisterStartInput) (*usecase.RegisterStartOutput, error)
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) error
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) (*usecase.RegisterResendOutput, error)
	RegisterFinalize(ctx context.Context, in usecase.RegisterFinalizeInput) error

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error

	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error
	PasswordRecover(ctx context.Context, in usecase.PasswordRecoverInput) error

	AccountDelete(ctx context.Context, in usecase.AccountDeleteInput) error
	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration flow
	r.POST("/api/v1/identity/register/start", end.RegisterStart)
	r.POST("/api/v1/identity/register/verify", end.RegisterVerify)
	r.POST("/api/v1/identity/register/resend", end.RegisterResend)
	r.POST("/api/v1/identity/register/finalize", end.RegisterFinalize)

	// Sessions
	r.POST("/api/v1/identity/login", end.Login)
	r.POST("/api/v1/identity/refresh", end.RefreshToken)
	r.POST("/api/v1/identity/logout", end.Logout) // need authenticated

	// Password Management
	r.POST("/api/v1/identity/password/change", end.PasswordChange) // need authenticated
	r.POST("/api/v1/identity/password/recover", end.PasswordRecover)

	// Account
	r.DELETE("/api/v1/identity/account", end.AccountDelete) // need authenticated

	// User Directory (need authenticated & authorization)
	r.GET("/api/v1/identity/users", end.UserList)
}
