package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type RegisterVerifyInput struct {
	AttemptToken string `validate:"required"`
	Code         string `validate:"required,len=6,numeric"`
}

// RegisterVerify checks the emailed code against the one derived from the
// attempt's current counter. Only the latest issued code can match. A correct
// code moves the attempt to Verified; verifying an already verified attempt is
// a no-op success so a retried request cannot fail a completed step.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) error {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.attemptTokenHash(in.AttemptToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash attempt token", "error", err)
		return goerror.NewServer(err)
	}

	pr, err := s.repoCache.GetPendingRegistration(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verify for unknown registration attempt")
		return goerror.NewBusiness("invalid or expired registration attempt", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get pending registration", "error", err)
		return goerror.NewServer(err)
	}

	if pr.Phase == entity.RegistrationPhaseVerified {
		return nil
	}

	maxAttempts := int16(s.cfg.GetInt("modules.identity.registration_max_attempts"))
	if pr.Attempts >= maxAttempts {
		slog.WarnContext(ctx, "verification attempt limit reached", "attempts", pr.Attempts)
		return goerror.NewBusiness("too many incorrect codes, request a new one", goerror.CodeForbidden)
	}

	expected, err := s.codes.Code(pr.Secret, pr.Counter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive email code", "error", err)
		return goerror.NewServer(err)
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(in.Code)) != 1 {
		pr.Attempts++
		if err := s.repoCache.SavePendingRegistration(ctx, tokenHash, *pr); err != nil {
			slog.ErrorContext(ctx, "failed to save pending registration", "error", err)
			return goerror.NewServer(err)
		}

		slog.WarnContext(ctx, "verification code mismatch", "attempts", pr.Attempts)
		return goerror.NewBusiness("incorrect verification code", goerror.CodeUnauthorized)
	}

	pr.Phase = entity.RegistrationPhaseVerified
	if err := s.repoCache.SavePendingRegistration(ctx, tokenHash, *pr); err != nil {
		slog.ErrorContext(ctx, "failed to save pending registration", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
