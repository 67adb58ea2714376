// Package cache holds registration attempts while they are in flight. An
// attempt lives under the hashed attempt token and rides Redis expiry: once
// the key is gone the attempt never existed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "identity:registration:"

type Cache struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("identity.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) CreatePendingRegistration(ctx context.Context, tokenHash string, pr entity.PendingRegistration, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "CreatePendingRegistration")
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(pr)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+tokenHash, body, ttl).Err()
}

func (c *Cache) GetPendingRegistration(ctx context.Context, tokenHash string) (_ *entity.PendingRegistration, err error) {
	ctx, span := c.startSpan(ctx, "GetPendingRegistration")
	defer func() { c.endSpan(span, err) }()

	body, err := c.client.Get(ctx, keyPrefix+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var pr entity.PendingRegistration
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, err
	}

	return &pr, nil
}

// SavePendingRegistration rewrites the attempt without touching its expiry.
func (c *Cache) SavePendingRegistration(ctx context.Context, tokenHash string, pr entity.PendingRegistration) (err error) {
	ctx, span := c.startSpan(ctx, "SavePendingRegistration")
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(pr)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+tokenHash, body, redis.KeepTTL).Err()
}

// ResetPendingRegistration rewrites the attempt and restarts its expiry, used
// when a fresh code goes out.
func (c *Cache) ResetPendingRegistration(ctx context.Context, tokenHash string, pr entity.PendingRegistration, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "ResetPendingRegistration")
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(pr)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+tokenHash, body, ttl).Err()
}

func (c *Cache) DeletePendingRegistration(ctx context.Context, tokenHash string) (err error) {
	ctx, span := c.startSpan(ctx, "DeletePendingRegistration")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, keyPrefix+tokenHash).Err()
}
