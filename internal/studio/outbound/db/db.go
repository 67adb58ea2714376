package db

import (
	"context"
	"errors"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const collArtworks = "artworks"

type artworkDoc struct {
	ID          int64     `bson:"_id"`
	UserID      int64     `bson:"user_id"`
	Prompt      string    `bson:"prompt"`
	Model       string    `bson:"model"`
	Width       int32     `bson:"width"`
	Height      int32     `bson:"height"`
	Seed        int64     `bson:"seed"`
	ObjectKey   string    `bson:"object_key"`
	ContentType string    `bson:"content_type"`
	Size        int64     `bson:"size"`
	CreatedAt   time.Time `bson:"created_at"`
}

type DB struct {
	conn *mongo.Database
	ins  instrument.Instrumentation
}

func NewDB(ctx context.Context, conn *mongo.Database, ins instrument.Instrumentation) (*DB, error) {
	_, err := conn.Collection(collArtworks).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, err
	}

	return &DB{conn: conn, ins: ins}, nil
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return goerror.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("studio.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
