package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/clock"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/goroutine"
	"github.com/visiondraft/visiondraft/internal/pkg/hash"
	"github.com/visiondraft/visiondraft/internal/pkg/idempotency"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
	"github.com/visiondraft/visiondraft/internal/pkg/otp"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type RegistrationCodeEvent struct {
	AttemptToken string
	Username     string
	Email        string
	Code         string
}

type PasswordRecoveryEvent struct {
	UserID       int64
	Username     string
	Email        string
	TempPassword string
}

type UserDeletedEvent struct {
	UserID   int64
	Username string
}

type repoMessaging interface {
	PublishRegistrationCode(ctx context.Context, msg RegistrationCodeEvent) error
	PublishPasswordRecovery(ctx context.Context, msg PasswordRecoveryEvent) error
	PublishUserDeleted(ctx context.Context, msg UserDeletedEvent) error
}

type repoDB interface {
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserLoginInfo(ctx context.Context, login string) (*entity.UserLoginInfo, error)
	GetUserCredentialInfo(ctx context.Context, id int64) (*entity.UserCredentialInfo, error)
	GetUserList(ctx context.Context, filter entity.UserListFilterData) ([]entity.User, int64, error)
	GetUserRefreshToken(ctx context.Context, token string) (*entity.UserRefreshToken, error)

	CreateUser(ctx context.Context, user entity.NewUser, hash string) error
	CreateRefreshToken(ctx context.Context, in entity.RefreshToken) error

	UpdateUserCredential(ctx context.Context, userID int64, hash string) error
	RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) error
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllRefreshToken(ctx context.Context, userID int64) error

	DeleteUser(ctx context.Context, id int64) error
}

type repoCache interface {
	CreatePendingRegistration(ctx context.Context, tokenHash string, pr entity.PendingRegistration, ttl time.Duration) error
	GetPendingRegistration(ctx context.Context, tokenHash string) (*entity.PendingRegistration, error)
	SavePendingRegistration(ctx context.Context, tokenHash string, pr entity.PendingRegistration) error
	ResetPendingRegistration(ctx context.Context, tokenHash string, pr entity.PendingRegistration, ttl time.Duration) error
}

type Usecase struct {
	repoDB        repoDB
	repoCache     repoCache
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	oid           uid.StringID
	codes         otp.OTP
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoCache     repoCache
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	Codes         otp.OTP
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoCache:     dep.RepoCache,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		oid:           dep.OID,
		codes:         dep.Codes,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, userID int64, status entity.UserStatus) error {
	switch status.Ensure() {
	case entity.UserStatusUnknown:
		slog.WarnContext(ctx, "user account status is unrecognized", "user_id", userID)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)

	case entity.UserStatusBanned:
		slog.WarnContext(ctx, "user account is banned", "user_id", userID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)

	case entity.UserStatusInactive:
		slog.WarnContext(ctx, "user account is deactivated", "user_id", userID)
		return goerror.NewBusiness("account is deactivated", goerror.CodeForbidden)

	default:
		return nil
	}
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enforce permission", "obj", obj, "act", act, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, goerror.NewBusiness("You don't have permission to perform this action", goerror.CodeForbidden)
	}

	return clm, nil
}

// attemptTokenHash is the cache key form of a raw attempt token. Raw tokens
// never touch storage.
func (s *Usecase) attemptTokenHash(token string) (string, error) {
	h, err := s.hmac.Hash(token)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
