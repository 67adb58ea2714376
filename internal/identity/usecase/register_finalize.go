package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/idempotency"
)

const finalizedAttemptTTL = 10 * time.Minute

type RegisterFinalizeInput struct {
	AttemptToken string `validate:"required"`
	Password     string `validate:"required,password"`
}

// RegisterFinalize turns a verified attempt into a real account. Account
// creation runs under an idempotency guard keyed by the attempt, so a doubled
// submit cannot insert twice; the unique indexes on username and email are the
// backstop for attempts racing each other.
func (s *Usecase) RegisterFinalize(ctx context.Context, in RegisterFinalizeInput) error {
	ctx, span := s.startSpan(ctx, "RegisterFinalize")
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
		slog.WarnContext(ctx, "finalize for unknown registration attempt")
		return goerror.NewBusiness("invalid or expired registration attempt", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get pending registration", "error", err)
		return goerror.NewServer(err)
	}

	switch pr.Phase {
	case entity.RegistrationPhaseVerified:
	case entity.RegistrationPhaseFinalized:
		return goerror.NewBusiness("registration already completed", goerror.CodeConflict)
	default:
		slog.WarnContext(ctx, "finalize before verification", "phase", pr.Phase.String())
		return goerror.NewBusiness("email is not verified yet", goerror.CodeForbidden)
	}

	err = s.idemp.Exec(ctx, "identity:register:finalize:"+tokenHash, func(ctx context.Context) error {
		passHash, err := s.bcrypt.Hash(in.Password)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash password", "error", err)
			return err
		}

		return s.repoDB.CreateUser(ctx, entity.NewUser{
			ID:       s.uid.Generate(),
			Username: pr.Username,
			Email:    pr.Email,
			Status:   entity.UserStatusActive,
		}, string(passHash))
	})
	if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
		return goerror.NewBusiness("registration already completed", goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "registration lost the uniqueness race", "username", pr.Username)
		return goerror.NewBusiness("username or email is already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to create user", "error", err)
		return goerror.NewServer(err)
	}

	// Keep the finalized attempt around for a short while so a doubled
	// submit gets a Conflict instead of an unknown-attempt error.
	pr.Phase = entity.RegistrationPhaseFinalized
	if err := s.repoCache.ResetPendingRegistration(ctx, tokenHash, *pr, finalizedAttemptTTL); err != nil {
		slog.ErrorContext(ctx, "failed to mark registration attempt finalized", "error", err)
	}

	return nil
}
