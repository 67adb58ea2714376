package mq

import (
	"context"
	"encoding/json"

	"github.com/visiondraft/visiondraft/internal/identity/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/messaging"
	"github.com/visiondraft/visiondraft/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, destination string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishRegistrationCode(ctx context.Context, msg usecase.RegistrationCodeEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishRegistrationCode")
	defer span.End()

	return m.publish(ctx, span, event.RegistrationCodeDestination, event.RegistrationCodeMessage{
		AttemptToken: msg.AttemptToken,
		Username:     msg.Username,
		Email:        msg.Email,
		Code:         msg.Code,
	})
}

func (m *Messaging) PublishPasswordRecovery(ctx context.Context, msg usecase.PasswordRecoveryEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishPasswordRecovery")
	defer span.End()

	return m.publish(ctx, span, event.PasswordRecoveryDestination, event.PasswordRecoveryMessage{
		UserID:       msg.UserID,
		Username:     msg.Username,
		Email:        msg.Email,
		TempPassword: msg.TempPassword,
	})
}

func (m *Messaging) PublishUserDeleted(ctx context.Context, msg usecase.UserDeletedEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishUserDeleted")
	defer span.End()

	return m.publish(ctx, span, event.UserDeletedDestination, event.UserDeletedMessage{
		UserID:   msg.UserID,
		Username: msg.Username,
	})
}
