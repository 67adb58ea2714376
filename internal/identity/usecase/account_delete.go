package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
)

type AccountDeleteInput struct {
	Password string `validate:"required"`
}

// AccountDelete removes the caller's own account. The password is required
// again so a hijacked session cannot silently destroy the account. Artwork
// cleanup happens asynchronously through the user deleted event.
func (s *Usecase) AccountDelete(ctx context.Context, in AccountDeleteInput) error {
	ctx, span := s.startSpan(ctx, "AccountDelete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserCredentialInfo(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", clm.UserID)
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user credential info", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password mismatch on account deletion", "user_id", user.ID)
		return goerror.NewBusiness("invalid password", goerror.CodeUnauthorized)
	}

	full, err := s.repoDB.GetUserByEmail(ctx, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.RevokeAllRefreshToken(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke all refresh token", "user_id", user.ID, "error", err)
	}

	if err := s.repoDB.DeleteUser(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete user", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishUserDeleted(ctx, UserDeletedEvent{
		UserID:   user.ID,
		Username: full.Username,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user deleted", "user_id", user.ID, "error", err)
	}

	return nil
}
