package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/cooldown"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type RegisterResendInput struct {
	AttemptToken string `validate:"required"`
}

type RegisterResendOutput struct {
	ResendInSeconds  int64
	ExpiresInSeconds int64
}

// RegisterResend issues a fresh code for an attempt that is still waiting on
// one. Bumping the counter makes every previously emailed code stale, and the
// attempt's expiry window restarts with the new code.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) (*RegisterResendOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.attemptTokenHash(in.AttemptToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash attempt token", "error", err)
		return nil, goerror.NewServer(err)
	}

	pr, err := s.repoCache.GetPendingRegistration(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "resend for unknown registration attempt")
		return nil, goerror.NewBusiness("registration attempt not found or expired", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get pending registration", "error", err)
		return nil, goerror.NewServer(err)
	}

	if pr.Phase != entity.RegistrationPhaseAwaitingCode {
		slog.WarnContext(ctx, "resend after verification", "phase", pr.Phase.String())
		return nil, goerror.NewBusiness("registration attempt is already verified", goerror.CodeConflict)
	}

	now := s.clock.Now()
	if st, remaining := cooldown.Until(now, pr.ResendAvailableAt); st == cooldown.StateLocked {
		slog.WarnContext(ctx, "resend requested during cooldown", "remaining_seconds", remaining)
		return nil, goerror.NewBusiness(
			fmt.Sprintf("resend available in %d seconds", remaining),
			goerror.CodeTooManyRequest,
		)
	}

	pr.Counter++
	code, err := s.codes.Code(pr.Secret, pr.Counter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive email code", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.cfg.GetMinute("modules.identity.registration_code_ttl_minutes")
	resendIn := s.cfg.GetSecond("modules.identity.registration_resend_cooldown_seconds")

	pr.CodeIssuedAt = now
	pr.ResendAvailableAt = now.Add(resendIn)
	if err := s.repoCache.ResetPendingRegistration(ctx, tokenHash, *pr, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to save pending registration", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishRegistrationCode(ctx, RegistrationCodeEvent{
		AttemptToken: in.AttemptToken,
		Username:     pr.Username,
		Email:        pr.Email,
		Code:         code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish registration code", "error", err)
	}

	_, remaining := cooldown.Until(now, pr.ResendAvailableAt)

	return &RegisterResendOutput{
		ResendInSeconds:  remaining,
		ExpiresInSeconds: int64(ttl.Seconds()),
	}, nil
}
