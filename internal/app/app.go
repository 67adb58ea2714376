package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/redis/go-redis/v9"
	"github.com/visiondraft/visiondraft/internal/pkg/clock"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goroutine"
	"github.com/visiondraft/visiondraft/internal/pkg/hash"
	"github.com/visiondraft/visiondraft/internal/pkg/idempotency"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
	"github.com/visiondraft/visiondraft/internal/pkg/mail"
	"github.com/visiondraft/visiondraft/internal/pkg/messaging"
	"github.com/visiondraft/visiondraft/internal/pkg/otp"
	"github.com/visiondraft/visiondraft/internal/pkg/router"
	"github.com/visiondraft/visiondraft/internal/pkg/storage"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	codes     otp.OTP
	jwt       jwt.JWT

	// resources
	dbClient  *mongo.Client
	dbConn    *mongo.Database
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
