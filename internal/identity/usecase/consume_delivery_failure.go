package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type ConsumeDeliveryFailureInput struct {
	AttemptToken string
	Email        string
	Reason       string
}

// ConsumeDeliveryFailure reacts to a code email that never went out: the
// resend cooldown is lifted so the user can ask again immediately instead of
// waiting out a cooldown for a code they never received.
func (s *Usecase) ConsumeDeliveryFailure(ctx context.Context, in ConsumeDeliveryFailureInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeDeliveryFailure")
	defer span.End()

	tokenHash, err := s.attemptTokenHash(in.AttemptToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash attempt token", "error", err)
		return err
	}

	pr, err := s.repoCache.GetPendingRegistration(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "delivery failure for unknown registration attempt")
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get pending registration", "error", err)
		return err
	}

	pr.ResendAvailableAt = s.clock.Now()
	if err := s.repoCache.SavePendingRegistration(ctx, tokenHash, *pr); err != nil {
		slog.ErrorContext(ctx, "failed to save pending registration", "error", err)
		return err
	}

	slog.WarnContext(ctx, "code delivery failed, cooldown lifted", "email", in.Email, "reason", in.Reason)

	return nil
}
