package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/visiondraft/visiondraft/internal/identity/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goroutine"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/messaging"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/shared/event"
)

type mqUC interface {
	ConsumeDeliveryFailure(ctx context.Context, in usecase.ConsumeDeliveryFailureInput) error
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc mqUC,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.identity.consumer_names")

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.RegistrationDeliveryFailedConsumerIdentity,
			topic:   event.RegistrationDeliveryFailedDestination,
			handler: mqHandler.RegistrationDeliveryFailed,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.name),
					messaging.WithQueueGroup(consumer.name),
					messaging.WithGroup(consumer.name),
					messaging.WithSubscription(consumer.name),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
