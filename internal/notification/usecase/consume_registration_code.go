package usecase

import (
	"context"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/notification/entity"
)

const registrationCodeBodyTemplate = `<p>Hi {{.username}},</p>
<p>Your {{.app_name}} verification code is:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.code}}</strong></p>
<p>Enter it in the window where you started signing up. The code expires shortly,
so if it has stopped working just request a new one.</p>
<p>If you did not create an account on {{.app_name}}, you can ignore this email.</p>`

type (
	ConsumeRegistrationCodeInput struct {
		AttemptToken string `validate:"required"`
		Username     string `validate:"required"`
		Email        string `validate:"required,email"`
		Code         string `validate:"required"`
	}
)

func (s *Usecase) ConsumeRegistrationCode(ctx context.Context, in ConsumeRegistrationCodeInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeRegistrationCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["username"] = in.Username
	data["code"] = in.Code

	body, err := s.renderTemplate("registration_code", registrationCodeBodyTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "trigger_key", entity.TriggerKeyRegistrationCode.String(), "error", err)
		return nil
	}

	subject := s.cfg.GetString("app.name") + " verification code"
	if err := s.sendEmail(ctx, entity.TriggerKeyRegistrationCode, in.Email, subject, body); err != nil {
		// The registration flow lifts the resend cooldown when it hears this,
		// so a delivery failure does not burn the user's resend quota.
		pubErr := s.repoMessaging.PublishRegistrationDeliveryFailed(ctx, RegistrationDeliveryFailedEvent{
			AttemptToken: in.AttemptToken,
			Email:        in.Email,
			Reason:       err.Error(),
		})
		if pubErr != nil {
			slog.ErrorContext(ctx, "failed to publish registration delivery failed", "email", in.Email, "error", pubErr)
		}
	}

	return nil
}
