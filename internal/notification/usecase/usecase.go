package usecase

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/notification/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/mail"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"github.com/visiondraft/visiondraft/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/trace"
)

type RegistrationDeliveryFailedEvent struct {
	AttemptToken string
	Email        string
	Reason       string
}

type repoDB interface {
	CreateDeliveryLog(ctx context.Context, dl entity.DeliveryLog) error
	UpdateDeliveryLogStatus(ctx context.Context, id int64, status entity.DeliveryStatus, providerResponse valueobject.JSONMap) error
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoMessaging interface {
	PublishRegistrationDeliveryFailed(ctx context.Context, msg RegistrationDeliveryFailedEvent) error
}

type Usecase struct {
	repoDB        repoDB
	repoMail      repoMail
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMail      repoMail
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMail:      dep.RepoMail,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) renderTemplate(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"app_name": s.cfg.GetString("app.name"),
		"web_url":  s.cfg.GetString("app.web"),
	}
}

// sendEmail delivers one message and keeps the delivery log honest about what
// happened. The returned error is the send failure, after the log is updated.
func (s *Usecase) sendEmail(ctx context.Context, trigger entity.TriggerKey, to, subject, body string) error {
	logID := s.uid.Generate()
	if err := s.repoDB.CreateDeliveryLog(ctx, entity.DeliveryLog{
		ID:         logID,
		TriggerKey: trigger,
		Recipient:  to,
		Status:     entity.DeliveryStatusQueued,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "trigger_key", trigger.String(), "error", err)
	}

	mailErr := s.repoMail.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: body,
	})
	if mailErr == nil {
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, logID, entity.DeliveryStatusSent, nil); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", logID, "error", err)
		}
		return nil
	}

	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, logID, entity.DeliveryStatusFailed, valueobject.JSONMap{"error": mailErr.Error()}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", logID, "error", err)
	}

	slog.ErrorContext(ctx, "failed to send notification email", "log_id", logID, "trigger_key", trigger.String(), "error", mailErr)

	return mailErr
}
