package usecase

import (
	"context"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/notification/entity"
)

const passwordRecoveryBodyTemplate = `<p>Hi {{.username}},</p>
<p>Someone asked us to recover access to your {{.app_name}} account. Here is a
temporary password you can sign in with:</p>
<p style="font-size:20px"><strong>{{.temp_password}}</strong></p>
<p>Sign in at <a href="{{.web_url}}">{{.web_url}}</a> and change your password
right away. All existing sessions have been signed out.</p>
<p>If this was not you, change your password as soon as possible.</p>`

type (
	ConsumePasswordRecoveryInput struct {
		UserID       int64  `validate:"required,gt=0"`
		Username     string `validate:"required"`
		Email        string `validate:"required,email"`
		TempPassword string `validate:"required"`
	}
)

func (s *Usecase) ConsumePasswordRecovery(ctx context.Context, in ConsumePasswordRecoveryInput) error {
	ctx, span := s.startSpan(ctx, "ConsumePasswordRecovery")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["username"] = in.Username
	data["temp_password"] = in.TempPassword

	body, err := s.renderTemplate("password_recovery", passwordRecoveryBodyTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "user_id", in.UserID, "trigger_key", entity.TriggerKeyPasswordRecovery.String(), "error", err)
		return nil
	}

	subject := s.cfg.GetString("app.name") + " account recovery"
	if err := s.sendEmail(ctx, entity.TriggerKeyPasswordRecovery, in.Email, subject, body); err != nil {
		slog.ErrorContext(ctx, "failed to deliver password recovery email", "user_id", in.UserID, "error", err)
	}

	return nil
}
