package db

import (
	"context"
	"errors"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	collUsers         = "users"
	collRefreshTokens = "refresh_tokens"
)

type userDoc struct {
	ID        int64     `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Status    int16     `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type refreshTokenDoc struct {
	ID                int64     `bson:"_id"`
	UserID            int64     `bson:"user_id"`
	Token             string    `bson:"token"`
	ExpiresAt         time.Time `bson:"expires_at"`
	Revoked           bool      `bson:"revoked"`
	ReplacedByTokenID *int64    `bson:"replaced_by_token_id,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
}

type DB struct {
	conn *mongo.Database
	ins  instrument.Instrumentation
}

// NewDB wires the identity collections and ensures the unique indexes that
// back registration's duplicate checks.
func NewDB(ctx context.Context, conn *mongo.Database, ins instrument.Instrumentation) (*DB, error) {
	_, err := conn.Collection(collUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return nil, err
	}

	_, err = conn.Collection(collRefreshTokens).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
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
	return s.ins.Tracer("identity.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
