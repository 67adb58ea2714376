package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/identity/usecase"
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

func (h *MQHandler) RegistrationDeliveryFailed(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("identity.inbound.mq").Start(ctx, "RegistrationDeliveryFailed")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: registration delivery failed", "msg_body", string(body))

	var payload event.RegistrationDeliveryFailedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of registration delivery failed", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeDeliveryFailure(ctx, usecase.ConsumeDeliveryFailureInput{
		AttemptToken: payload.AttemptToken,
		Email:        payload.Email,
		Reason:       payload.Reason,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume registration delivery failure", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
