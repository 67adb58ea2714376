package mq

import (
	"context"
	"encoding/json"

	"github.com/visiondraft/visiondraft/internal/notification/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/messaging"
	"github.com/visiondraft/visiondraft/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishRegistrationDeliveryFailed(ctx context.Context, msg usecase.RegistrationDeliveryFailedEvent) error {
	ctx, span := m.ins.Tracer("notification.outbound.mq").Start(ctx, "PublishRegistrationDeliveryFailed")
	defer span.End()

	body, err := json.Marshal(event.RegistrationDeliveryFailedMessage{
		AttemptToken: msg.AttemptToken,
		Email:        msg.Email,
		Reason:       msg.Reason,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.RegistrationDeliveryFailedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
