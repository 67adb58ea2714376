package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION to run container-backed tests")
	}

	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opt, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestPendingRegistrationLifecycle(t *testing.T) {
	client := newTestClient(t)
	c := NewCache(client, instrument.NewNoop())
	ctx := context.Background()

	const tokenHash = "c0ffee"
	pr := entity.PendingRegistration{
		Username: "painter",
		Email:    "painter@example.com",
		Secret:   "JBSWY3DPEHPK3PXP",
		Counter:  1,
		Phase:    entity.RegistrationPhaseAwaitingCode,
	}

	if _, err := c.GetPendingRegistration(ctx, tokenHash); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetPendingRegistration() before create error = %v, want ErrNotFound", err)
	}

	if err := c.CreatePendingRegistration(ctx, tokenHash, pr, time.Minute); err != nil {
		t.Fatalf("CreatePendingRegistration() error = %v", err)
	}

	got, err := c.GetPendingRegistration(ctx, tokenHash)
	if err != nil {
		t.Fatalf("GetPendingRegistration() error = %v", err)
	}
	if got.Username != pr.Username || got.Counter != pr.Counter {
		t.Fatalf("GetPendingRegistration() = %+v, want %+v", got, pr)
	}

	// Save keeps the key's TTL. The key must still expire even after a
	// rewrite, otherwise attempts would live forever.
	pr.Attempts = 2
	if err := c.SavePendingRegistration(ctx, tokenHash, pr); err != nil {
		t.Fatalf("SavePendingRegistration() error = %v", err)
	}
	ttl, err := client.TTL(ctx, keyPrefix+tokenHash).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("TTL after save = %v, want within (0, 1m]", ttl)
	}

	// Reset restarts the TTL for a fresh code.
	pr.Counter = 2
	if err := c.ResetPendingRegistration(ctx, tokenHash, pr, 2*time.Minute); err != nil {
		t.Fatalf("ResetPendingRegistration() error = %v", err)
	}
	ttl, err = client.TTL(ctx, keyPrefix+tokenHash).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= time.Minute {
		t.Fatalf("TTL after reset = %v, want > 1m", ttl)
	}

	if err := c.DeletePendingRegistration(ctx, tokenHash); err != nil {
		t.Fatalf("DeletePendingRegistration() error = %v", err)
	}
	if _, err := c.GetPendingRegistration(ctx, tokenHash); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetPendingRegistration() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPendingRegistrationExpiry(t *testing.T) {
	client := newTestClient(t)
	c := NewCache(client, instrument.NewNoop())
	ctx := context.Background()

	const tokenHash = "deadbeef"
	pr := entity.PendingRegistration{Username: "painter", Email: "painter@example.com"}

	if err := c.CreatePendingRegistration(ctx, tokenHash, pr, time.Second); err != nil {
		t.Fatalf("CreatePendingRegistration() error = %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := c.GetPendingRegistration(ctx, tokenHash); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetPendingRegistration() after expiry error = %v, want ErrNotFound", err)
	}
}
