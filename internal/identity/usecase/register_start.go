package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/cooldown"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type RegisterStartInput struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email"`
}

type RegisterStartOutput struct {
	AttemptToken     string
	ResendInSeconds  int64
	ExpiresInSeconds int64
}

// RegisterStart opens a registration attempt: it reserves nothing in the
// database yet, only parks the attempt in the cache and emails a code. The
// caller gets an opaque attempt token that scopes every later step.
func (s *Usecase) RegisterStart(ctx context.Context, in RegisterStartInput) (*RegisterStartOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterStart")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.repoDB.GetUserByUsername(ctx, in.Username); err == nil {
		slog.WarnContext(ctx, "registration for taken username", "username", in.Username)
		return nil, goerror.NewBusiness("username is already taken", goerror.CodeConflict)
	} else if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by username", "error", err)
		return nil, goerror.NewServer(err)
	}

	if _, err := s.repoDB.GetUserByEmail(ctx, in.Email); err == nil {
		slog.WarnContext(ctx, "registration for registered email", "email", in.Email)
		return nil, goerror.NewBusiness("email is already registered", goerror.CodeConflict)
	} else if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "error", err)
		return nil, goerror.NewServer(err)
	}

	secret, err := s.codes.NewSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to create code secret", "error", err)
		return nil, goerror.NewServer(err)
	}

	const firstCounter = 1
	code, err := s.codes.Code(secret, firstCounter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive email code", "error", err)
		return nil, goerror.NewServer(err)
	}

	token := s.oid.Generate()
	tokenHash, err := s.attemptTokenHash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash attempt token", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.cfg.GetMinute("modules.identity.registration_code_ttl_minutes")
	resendIn := s.cfg.GetSecond("modules.identity.registration_resend_cooldown_seconds")

	pr := entity.PendingRegistration{
		Username:          in.Username,
		Email:             in.Email,
		Secret:            secret,
		Counter:           firstCounter,
		Phase:             entity.RegistrationPhaseAwaitingCode,
		CodeIssuedAt:      now,
		ResendAvailableAt: now.Add(resendIn),
	}
	if err := s.repoCache.CreatePendingRegistration(ctx, tokenHash, pr, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to cache pending registration", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishRegistrationCode(ctx, RegistrationCodeEvent{
		AttemptToken: token,
		Username:     in.Username,
		Email:        in.Email,
		Code:         code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish registration code", "error", err)
	}

	_, remaining := cooldown.Until(now, pr.ResendAvailableAt)

	return &RegisterStartOutput{
		AttemptToken:     token,
		ResendInSeconds:  remaining,
		ExpiresInSeconds: int64(ttl.Seconds()),
	}, nil
}
