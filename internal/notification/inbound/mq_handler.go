package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/notification/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/messaging"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   mqUC
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) RegistrationCode(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "RegistrationCode")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: registration code", "destination", event.RegistrationCodeDestination)

	var payload event.RegistrationCodeMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of registration code", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeRegistrationCode(ctx, usecase.ConsumeRegistrationCodeInput{
		AttemptToken: payload.AttemptToken,
		Username:     payload.Username,
		Email:        payload.Email,
		Code:         payload.Code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume registration code", "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) PasswordRecovery(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "PasswordRecovery")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: password recovery", "destination", event.PasswordRecoveryDestination)

	var payload event.PasswordRecoveryMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of password recovery", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumePasswordRecovery(ctx, usecase.ConsumePasswordRecoveryInput{
		UserID:       payload.UserID,
		Username:     payload.Username,
		Email:        payload.Email,
		TempPassword: payload.TempPassword,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume password recovery", "error", err)
		return err
	}

	return nil
}
