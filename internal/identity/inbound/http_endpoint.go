package inbound

import (
	"strings"

	"github.com/visiondraft/visiondraft/internal/identity/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration, sessions and account
// management.
type HTTPEndpoint struct {
	uc uc
}

// RegisterStart opens a registration attempt and emails a verification code.
func (h *HTTPEndpoint) RegisterStart(r *router.Request) (any, error) {
	var req RegisterStartRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterStart(r.Context(), usecase.RegisterStartInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return nil, err
	}

	return RegisterStartResponse{
		AttemptToken:     resp.AttemptToken,
		ResendInSeconds:  resp.ResendInSeconds,
		ExpiresInSeconds: resp.ExpiresInSeconds,
	}, nil
}

// RegisterVerify checks the emailed code for a registration attempt.
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		AttemptToken: req.AttemptToken,
		Code:         strings.TrimSpace(req.Code),
	}); err != nil {
		return nil, err
	}

	return RegisterVerifyResponse{}, nil
}

// RegisterResend issues a fresh verification code, subject to the cooldown.
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req RegisterResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{
		AttemptToken: req.AttemptToken,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResendResponse{
		ResendInSeconds:  resp.ResendInSeconds,
		ExpiresInSeconds: resp.ExpiresInSeconds,
	}, nil
}

// RegisterFinalize sets the password and creates the account.
func (h *HTTPEndpoint) RegisterFinalize(r *router.Request) (any, error) {
	var req RegisterFinalizeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterFinalize(r.Context(), usecase.RegisterFinalizeInput{
		AttemptToken: req.AttemptToken,
		Password:     req.Password,
	}); err != nil {
		return nil, err
	}

	return RegisterFinalizeResponse{}, nil
}

// Login authenticates by username or email and returns a token pair.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Logout revokes the presented refresh token.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return nil, err
	}

	return nil, nil
}

// PasswordChange replaces the caller's password after re-checking the old one.
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	var req PasswordChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// PasswordRecover emails a temporary password to the account holder.
func (h *HTTPEndpoint) PasswordRecover(r *router.Request) (any, error) {
	var req PasswordRecoverRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordRecover(r.Context(), usecase.PasswordRecoverInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return PasswordRecoverResponse{}, nil
}

// AccountDelete removes the caller's account after a password check.
func (h *HTTPEndpoint) AccountDelete(r *router.Request) (any, error) {
	var req AccountDeleteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.AccountDelete(r.Context(), usecase.AccountDeleteInput{Password: req.Password}); err != nil {
		return nil, err
	}

	return nil, nil
}

// UserList is the admin directory with search, status filter and paging.
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	dateFrom, err := r.GetQueryDate("date_from", "2006-01-02")
	if err != nil {
		return nil, err
	}

	dateTo, err := r.GetQueryDate("date_to", "2006-01-02")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{
		Search:    strings.TrimSpace(r.GetQuery("search")),
		Statuses:  r.GetQueries("statuses"),
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Size:      size,
		Page:      page,
		SortBy:    strings.TrimSpace(r.GetQuery("sort_by")),
		SortOrder: strings.ToLower(strings.TrimSpace(r.GetQuery("sort_order"))),
	})
	if err != nil {
		return nil, err
	}

	return UserListResponse{
		Page:  resp.Page,
		Size:  resp.Size,
		Total: resp.Total,
		Users: toUserResponses(resp.Users),
	}, nil
}
