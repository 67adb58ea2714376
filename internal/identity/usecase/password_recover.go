package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type PasswordRecoverInput struct {
	Email string `validate:"required,email"`
}

// PasswordRecover replaces the account password with a server-generated
// temporary one and emails it. The response is the same whether or not the
// email exists, so the endpoint cannot be used to probe for accounts. All
// refresh tokens are revoked since the old password no longer proves anything.
func (s *Usecase) PasswordRecover(ctx context.Context, in PasswordRecoverInput) error {
	ctx, span := s.startSpan(ctx, "PasswordRecover")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "password recovery requested for unavailable user", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		slog.WarnContext(ctx, "password recovery requested for ineligible user", "user_id", user.ID, "status", user.Status.String(), "error", err)
		return nil
	}

	tempPassword := s.oid.Generate()
	tempHash, err := s.bcrypt.Hash(tempPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash temporary password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateUserCredential(ctx, user.ID, string(tempHash)); err != nil {
		slog.ErrorContext(ctx, "failed to update user password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.RevokeAllRefreshToken(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke all refresh token", "user_id", user.ID, "error", err)
	}

	if err := s.repoMessaging.PublishPasswordRecovery(ctx, PasswordRecoveryEvent{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		TempPassword: tempPassword,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish password recovery", "user_id", user.ID, "error", err)
	}

	return nil
}
