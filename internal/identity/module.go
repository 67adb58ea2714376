// Package identity owns accounts: the code-gated registration flow, sessions,
// passwords and the admin user directory.
package identity

import (
	"context"

	"github.com/casbin/casbin/v3"
	"github.com/redis/go-redis/v9"
	"github.com/visiondraft/visiondraft/internal/identity/inbound"
	"github.com/visiondraft/visiondraft/internal/identity/outbound/cache"
	"github.com/visiondraft/visiondraft/internal/identity/outbound/db"
	"github.com/visiondraft/visiondraft/internal/identity/outbound/mq"
	"github.com/visiondraft/visiondraft/internal/identity/usecase"
	"github.com/visiondraft/visiondraft/internal/pkg/clock"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goroutine"
	"github.com/visiondraft/visiondraft/internal/pkg/hash"
	"github.com/visiondraft/visiondraft/internal/pkg/idempotency"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
	"github.com/visiondraft/visiondraft/internal/pkg/messaging"
	"github.com/visiondraft/visiondraft/internal/pkg/otp"
	"github.com/visiondraft/visiondraft/internal/pkg/router"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type Dependency struct {
	DBConn      *mongo.Database            `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Enforcer    *casbin.Enforcer           `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	OID         uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Codes       otp.OTP                    `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbIdentity, err := db.NewDB(ctx, dep.DBConn, dep.Instrument)
	if err != nil {
		return err
	}

	repoCache := cache.NewCache(dep.CacheConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbIdentity,
		RepoCache:     repoCache,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		UID:           dep.UID,
		OID:           dep.OID,
		Codes:         dep.Codes,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	inbound.RegisterMQConsumer(ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
