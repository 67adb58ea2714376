package db

import (
	"context"
	"errors"
	"time"

	"github.com/visiondraft/visiondraft/internal/notification/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/valueobject"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const collDeliveryLogs = "delivery_logs"

type deliveryLogDoc struct {
	ID               int64               `bson:"_id"`
	TriggerKey       string              `bson:"trigger_key"`
	Recipient        string              `bson:"recipient"`
	Status           int16               `bson:"status"`
	ProviderResponse valueobject.JSONMap `bson:"provider_response"`
	CreatedAt        time.Time           `bson:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at"`
}

type DB struct {
	conn *mongo.Database
	ins  instrument.Instrumentation
}

func NewDB(conn *mongo.Database, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return goerror.ErrNotFound
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.DeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	now := time.Now()
	_, err = s.conn.Collection(collDeliveryLogs).InsertOne(ctx, deliveryLogDoc{
		ID:               dl.ID,
		TriggerKey:       dl.TriggerKey.String(),
		Recipient:        dl.Recipient,
		Status:           int16(dl.Status),
		ProviderResponse: dl.ProviderResponse,
		CreatedAt:        now,
		UpdatedAt:        now,
	})

	return s.mapError(err)
}

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, id int64, status entity.DeliveryStatus, providerResponse valueobject.JSONMap) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	if providerResponse == nil {
		providerResponse = valueobject.JSONMap{}
	}

	_, err = s.conn.Collection(collDeliveryLogs).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":            int16(status),
			"provider_response": providerResponse,
			"updated_at":        time.Now(),
		}},
	)

	return s.mapError(err)
}
