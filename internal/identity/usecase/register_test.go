package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/idempotency"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
	"github.com/visiondraft/visiondraft/internal/pkg/otp"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
)

type fakeDB struct {
	usersByUsername map[string]*entity.User
	usersByEmail    map[string]*entity.User
	created         []entity.NewUser
	createErr       error
	listFilter      *entity.UserListFilterData
}

func (f *fakeDB) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	if u, ok := f.usersByUsername[username]; ok {
		return u, nil
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := f.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserLoginInfo(context.Context, string) (*entity.UserLoginInfo, error) {
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserCredentialInfo(context.Context, int64) (*entity.UserCredentialInfo, error) {
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserList(_ context.Context, filter entity.UserListFilterData) ([]entity.User, int64, error) {
	f.listFilter = &filter
	return nil, 0, nil
}

func (f *fakeDB) GetUserRefreshToken(context.Context, string) (*entity.UserRefreshToken, error) {
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) CreateUser(_ context.Context, user entity.NewUser, _ string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, user)
	return nil
}

func (f *fakeDB) CreateRefreshToken(context.Context, entity.RefreshToken) error { return nil }
func (f *fakeDB) UpdateUserCredential(context.Context, int64, string) error { return nil }
func (f *fakeDB) RotateRefreshToken(context.Context, entity.RotateRefreshToken) error {
	return nil
}
func (f *fakeDB) RevokeRefreshToken(context.Context, string) error { return nil }
func (f *fakeDB) RevokeAllRefreshToken(context.Context, int64) error { return nil }
func (f *fakeDB) DeleteUser(context.Context, int64) error { return nil }

type fakeCache struct {
	items map[string]entity.PendingRegistration
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]entity.PendingRegistration{}}
}

func (f *fakeCache) CreatePendingRegistration(_ context.Context, tokenHash string, pr entity.PendingRegistration, _ time.Duration) error {
	f.items[tokenHash] = pr
	return nil
}

func (f *fakeCache) GetPendingRegistration(_ context.Context, tokenHash string) (*entity.PendingRegistration, error) {
	pr, ok := f.items[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &pr, nil
}

func (f *fakeCache) SavePendingRegistration(_ context.Context, tokenHash string, pr entity.PendingRegistration) error {
	f.items[tokenHash] = pr
	return nil
}

func (f *fakeCache) ResetPendingRegistration(_ context.Context, tokenHash string, pr entity.PendingRegistration, _ time.Duration) error {
	f.items[tokenHash] = pr
	return nil
}

type fakeMessaging struct {
	codes      []RegistrationCodeEvent
	recoveries []PasswordRecoveryEvent
	deletions  []UserDeletedEvent
}

func (f *fakeMessaging) PublishRegistrationCode(_ context.Context, msg RegistrationCodeEvent) error {
	f.codes = append(f.codes, msg)
	return nil
}

func (f *fakeMessaging) PublishPasswordRecovery(_ context.Context, msg PasswordRecoveryEvent) error {
	f.recoveries = append(f.recoveries, msg)
	return nil
}

func (f *fakeMessaging) PublishUserDeleted(_ context.Context, msg UserDeletedEvent) error {
	f.deletions = append(f.deletions, msg)
	return nil
}

// execOnlyIdempotency runs the guarded function directly; state tracking is
// covered by the idempotency package's own tests.
type execOnlyIdempotency struct{}

func (execOnlyIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (execOnlyIdempotency) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (execOnlyIdempotency) MarkFailed(context.Context, string, time.Duration) error    { return nil }

func (execOnlyIdempotency) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	return fn(ctx)
}

type identityHash struct{}

func (identityHash) Hash(plaintext string) ([]byte, error) { return []byte("h:" + plaintext), nil }
func (identityHash) Verify(hashed, plaintext string) bool  { return hashed == "h:"+plaintext }

type seqNumberID struct{ n int64 }

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type seqStringID struct {
	n     int
	value string
}

func (s *seqStringID) Generate() string {
	s.n++
	return s.value
}

type fakeJWT struct{}

func (fakeJWT) Generate(uid int64, email string) (string, error) {
	return fmt.Sprintf("jwt:%d:%s", uid, email), nil
}

func (fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, nil }

type fixedClock struct{ now time.Time }

func (f *fixedClock) Now() time.Time { return f.now }

type stubConfig struct {
	config.Config
	durations map[string]time.Duration
	ints      map[string]int
}

func (s *stubConfig) GetMinute(key string) time.Duration { return s.durations[key] }
func (s *stubConfig) GetSecond(key string) time.Duration { return s.durations[key] }
func (s *stubConfig) GetDay(key string) time.Duration    { return s.durations[key] }
func (s *stubConfig) GetInt(key string) int              { return s.ints[key] }

// newTestEnforcer mirrors the application model with a single "admin can do
// everything" policy.
func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		t.Fatalf("NewModelFromString() error = %v", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if _, err := e.AddPolicy("admin", "*", "*"); err != nil {
		t.Fatalf("AddPolicy() error = %v", err)
	}
	return e
}

type fixture struct {
	uc    *Usecase
	db    *fakeDB
	cache *fakeCache
	msg   *fakeMessaging
	clock *fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	codes := otp.NewEmailCode(0)

	db := &fakeDB{
		usersByUsername: map[string]*entity.User{},
		usersByEmail:    map[string]*entity.User{},
	}
	cache := newFakeCache()
	msg := &fakeMessaging{}
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	uc := New(Dependency{
		RepoDB:        db,
		RepoCache:     cache,
		RepoMessaging: msg,
		Idempotency:   execOnlyIdempotency{},
		Validator:     v,
		Config: &stubConfig{
			durations: map[string]time.Duration{
				"modules.identity.registration_code_ttl_minutes":        10 * time.Minute,
				"modules.identity.registration_resend_cooldown_seconds": 30 * time.Second,
			},
			ints: map[string]int{"modules.identity.registration_max_attempts": 5},
		},
		HMAC:       identityHash{},
		Bcrypt:     identityHash{},
		UID:        &seqNumberID{},
		OID:        &seqStringID{value: "attempt-token-1"},
		Codes:      codes,
		Clock:      clk,
		JWT:        fakeJWT{},
		Enforcer:   newTestEnforcer(t),
		Instrument: instrument.NewNoop(),
	})

	return &fixture{uc: uc, db: db, cache: cache, msg: msg, clock: clk}
}

func TestRegisterStartIssuesCodeAndToken(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "Painter@Example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}

	if out.AttemptToken == "" {
		t.Fatal("expected an attempt token")
	}
	if out.ResendInSeconds != 30 {
		t.Fatalf("ResendInSeconds = %d, want 30", out.ResendInSeconds)
	}
	if len(f.msg.codes) != 1 {
		t.Fatalf("published codes = %d, want 1", len(f.msg.codes))
	}
	if f.msg.codes[0].Email != "painter@example.com" {
		t.Fatalf("code emailed to %q, want normalized address", f.msg.codes[0].Email)
	}
	if len(f.msg.codes[0].Code) != 6 {
		t.Fatalf("code %q is not 6 digits", f.msg.codes[0].Code)
	}
}

func TestRegisterStartRejectsTakenUsername(t *testing.T) {
	f := newFixture(t)
	f.db.usersByUsername["painter"] = &entity.User{ID: 7, Username: "painter"}

	_, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "new@example.com",
	})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeConflict {
		t.Fatalf("RegisterStart() error = %v, want conflict", err)
	}
	if len(f.msg.codes) != 0 {
		t.Fatal("no code should be published for a rejected start")
	}
}

func TestRegisterVerifyAcceptsLatestCodeOnly(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "painter@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}
	firstCode := f.msg.codes[0].Code

	if _, err := f.uc.RegisterResend(context.Background(), RegisterResendInput{AttemptToken: out.AttemptToken}); err == nil {
		t.Fatal("resend inside cooldown should fail")
	}

	f.clock.now = f.clock.now.Add(31 * time.Second)
	if _, err := f.uc.RegisterResend(context.Background(), RegisterResendInput{AttemptToken: out.AttemptToken}); err != nil {
		t.Fatalf("RegisterResend() after cooldown error = %v", err)
	}
	secondCode := f.msg.codes[1].Code

	err = f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         firstCode,
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("stale code should be rejected, got %v", err)
	}

	if err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         secondCode,
	}); err != nil {
		t.Fatalf("RegisterVerify() with latest code error = %v", err)
	}

	// A verified attempt tolerates repeated verification.
	if err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         "000000",
	}); err != nil {
		t.Fatalf("verify after success should be a no-op, got %v", err)
	}
}

func TestRegisterVerifyAttemptCap(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "painter@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}

	wrong := "999999"
	if wrong == f.msg.codes[0].Code {
		wrong = "999998"
	}

	for i := 0; i < 5; i++ {
		err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
			AttemptToken: out.AttemptToken,
			Code:         wrong,
		})
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
			t.Fatalf("attempt %d: error = %v, want unauthorized", i+1, err)
		}
	}

	// The sixth try is refused even with the right code.
	err = f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         f.msg.codes[0].Code,
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("capped attempt error = %v, want forbidden", err)
	}
}

func TestRegisterResendAfterVerificationConflicts(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "painter@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}

	if err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         f.msg.codes[0].Code,
	}); err != nil {
		t.Fatalf("RegisterVerify() error = %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Minute)
	_, err = f.uc.RegisterResend(context.Background(), RegisterResendInput{AttemptToken: out.AttemptToken})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeConflict {
		t.Fatalf("resend after verify error = %v, want conflict", err)
	}
}

func TestRegisterFinalize(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "painter@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}

	// Finalize before verification is refused.
	err = f.uc.RegisterFinalize(context.Background(), RegisterFinalizeInput{
		AttemptToken: out.AttemptToken,
		Password:     "brushwork",
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("finalize before verify error = %v, want forbidden", err)
	}

	if err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         f.msg.codes[0].Code,
	}); err != nil {
		t.Fatalf("RegisterVerify() error = %v", err)
	}

	// A three character password is below the floor, four is enough.
	err = f.uc.RegisterFinalize(context.Background(), RegisterFinalizeInput{
		AttemptToken: out.AttemptToken,
		Password:     "abc",
	})
	if !errors.As(err, &gerr) || gerr.Type() != goerror.TypeValidation {
		t.Fatalf("short password error = %v, want validation", err)
	}

	if err := f.uc.RegisterFinalize(context.Background(), RegisterFinalizeInput{
		AttemptToken: out.AttemptToken,
		Password:     "abcd",
	}); err != nil {
		t.Fatalf("RegisterFinalize() error = %v", err)
	}

	if len(f.db.created) != 1 {
		t.Fatalf("created users = %d, want 1", len(f.db.created))
	}
	if got := f.db.created[0]; got.Username != "painter" || got.Email != "painter@example.com" || got.Status != entity.UserStatusActive {
		t.Fatalf("created user = %+v", got)
	}

	// The attempt is spent: a doubled submit reports Conflict and never
	// creates a second record.
	err = f.uc.RegisterFinalize(context.Background(), RegisterFinalizeInput{
		AttemptToken: out.AttemptToken,
		Password:     "abcd",
	})
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeConflict {
		t.Fatalf("finalize replay error = %v, want conflict", err)
	}
	if len(f.db.created) != 1 {
		t.Fatalf("created users after replay = %d, want 1", len(f.db.created))
	}
}

func TestRegisterFinalizeMapsUniquenessRace(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "painter@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}

	if err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		AttemptToken: out.AttemptToken,
		Code:         f.msg.codes[0].Code,
	}); err != nil {
		t.Fatalf("RegisterVerify() error = %v", err)
	}

	f.db.createErr = goerror.ErrConflict
	err = f.uc.RegisterFinalize(context.Background(), RegisterFinalizeInput{
		AttemptToken: out.AttemptToken,
		Password:     "abcd",
	})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeConflict {
		t.Fatalf("uniqueness race error = %v, want conflict", err)
	}
}

func TestConsumeDeliveryFailureLiftsCooldown(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.RegisterStart(context.Background(), RegisterStartInput{
		Username: "painter",
		Email:    "painter@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterStart() error = %v", err)
	}

	if _, err := f.uc.RegisterResend(context.Background(), RegisterResendInput{AttemptToken: out.AttemptToken}); err == nil {
		t.Fatal("resend inside cooldown should fail")
	}

	if err := f.uc.ConsumeDeliveryFailure(context.Background(), ConsumeDeliveryFailureInput{
		AttemptToken: out.AttemptToken,
		Email:        "painter@example.com",
		Reason:       "smtp timeout",
	}); err != nil {
		t.Fatalf("ConsumeDeliveryFailure() error = %v", err)
	}

	if _, err := f.uc.RegisterResend(context.Background(), RegisterResendInput{AttemptToken: out.AttemptToken}); err != nil {
		t.Fatalf("resend after lifted cooldown error = %v", err)
	}
}
