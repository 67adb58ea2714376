package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/visiondraft/visiondraft/internal/notification/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/mail"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"github.com/visiondraft/visiondraft/internal/pkg/valueobject"
)

type fakeDB struct {
	logs     []entity.DeliveryLog
	statuses map[int64]entity.DeliveryStatus
	reasons  map[int64]valueobject.JSONMap
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		statuses: map[int64]entity.DeliveryStatus{},
		reasons:  map[int64]valueobject.JSONMap{},
	}
}

func (f *fakeDB) CreateDeliveryLog(_ context.Context, dl entity.DeliveryLog) error {
	f.logs = append(f.logs, dl)
	return nil
}

func (f *fakeDB) UpdateDeliveryLogStatus(_ context.Context, id int64, status entity.DeliveryStatus, providerResponse valueobject.JSONMap) error {
	f.statuses[id] = status
	f.reasons[id] = providerResponse
	return nil
}

type fakeMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeMessaging struct {
	failures []RegistrationDeliveryFailedEvent
}

func (f *fakeMessaging) PublishRegistrationDeliveryFailed(_ context.Context, msg RegistrationDeliveryFailedEvent) error {
	f.failures = append(f.failures, msg)
	return nil
}

type seqNumberID struct{ n int64 }

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type stubConfig struct {
	config.Config
	strings map[string]string
}

func (s *stubConfig) GetString(key string) string { return s.strings[key] }

type fixture struct {
	uc   *Usecase
	db   *fakeDB
	mail *fakeMail
	msg  *fakeMessaging
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	db := newFakeDB()
	mailer := &fakeMail{}
	msg := &fakeMessaging{}

	uc := New(Dependency{
		RepoDB:        db,
		RepoMail:      mailer,
		RepoMessaging: msg,
		Validator:     v,
		Config: &stubConfig{strings: map[string]string{
			"app.name": "Vision Draft",
			"app.web":  "https://visiondraft.example",
		}},
		UID:        &seqNumberID{},
		Instrument: instrument.NewNoop(),
	})

	return &fixture{uc: uc, db: db, mail: mailer, msg: msg}
}

func TestConsumeRegistrationCodeSendsEmail(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ConsumeRegistrationCode(context.Background(), ConsumeRegistrationCodeInput{
		AttemptToken: "attempt-token-1",
		Username:     "painter",
		Email:        "painter@example.com",
		Code:         "482913",
	})
	if err != nil {
		t.Fatalf("ConsumeRegistrationCode() error = %v", err)
	}

	if len(f.mail.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.mail.sent))
	}
	sent := f.mail.sent[0]
	if sent.To[0] != "painter@example.com" {
		t.Fatalf("To = %q", sent.To[0])
	}
	if !strings.Contains(sent.HTMLBody, "482913") {
		t.Fatal("email body should contain the verification code")
	}
	if !strings.Contains(sent.HTMLBody, "painter") {
		t.Fatal("email body should greet the user by username")
	}

	if len(f.db.logs) != 1 {
		t.Fatalf("created %d delivery logs, want 1", len(f.db.logs))
	}
	dl := f.db.logs[0]
	if dl.TriggerKey != entity.TriggerKeyRegistrationCode {
		t.Fatalf("TriggerKey = %q", dl.TriggerKey)
	}
	if dl.Status != entity.DeliveryStatusQueued {
		t.Fatalf("initial Status = %v, want Queued", dl.Status)
	}
	if got := f.db.statuses[dl.ID]; got != entity.DeliveryStatusSent {
		t.Fatalf("final Status = %v, want Sent", got)
	}

	if len(f.msg.failures) != 0 {
		t.Fatal("successful delivery must not publish a failure event")
	}
}

func TestConsumeRegistrationCodeFailurePublishesEvent(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("smtp: connection refused")

	err := f.uc.ConsumeRegistrationCode(context.Background(), ConsumeRegistrationCodeInput{
		AttemptToken: "attempt-token-1",
		Username:     "painter",
		Email:        "painter@example.com",
		Code:         "482913",
	})
	if err != nil {
		t.Fatalf("ConsumeRegistrationCode() error = %v", err)
	}

	if len(f.db.logs) != 1 {
		t.Fatalf("created %d delivery logs, want 1", len(f.db.logs))
	}
	logID := f.db.logs[0].ID
	if got := f.db.statuses[logID]; got != entity.DeliveryStatusFailed {
		t.Fatalf("final Status = %v, want Failed", got)
	}
	if f.db.reasons[logID]["error"] != "smtp: connection refused" {
		t.Fatalf("provider response = %v", f.db.reasons[logID])
	}

	if len(f.msg.failures) != 1 {
		t.Fatalf("published %d failure events, want 1", len(f.msg.failures))
	}
	ev := f.msg.failures[0]
	if ev.AttemptToken != "attempt-token-1" || ev.Email != "painter@example.com" {
		t.Fatalf("failure event = %+v", ev)
	}
	if ev.Reason != "smtp: connection refused" {
		t.Fatalf("Reason = %q", ev.Reason)
	}
}

func TestConsumeRegistrationCodeInvalidInputIsDropped(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ConsumeRegistrationCode(context.Background(), ConsumeRegistrationCodeInput{
		AttemptToken: "attempt-token-1",
		Email:        "not-an-email",
		Code:         "482913",
	})
	if err != nil {
		t.Fatalf("ConsumeRegistrationCode() error = %v", err)
	}

	if len(f.db.logs) != 0 || len(f.mail.sent) != 0 {
		t.Fatal("malformed messages must be dropped without side effects")
	}
}

func TestConsumePasswordRecoverySendsTempPassword(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ConsumePasswordRecovery(context.Background(), ConsumePasswordRecoveryInput{
		UserID:       7,
		Username:     "painter",
		Email:        "painter@example.com",
		TempPassword: "temp-pass-9",
	})
	if err != nil {
		t.Fatalf("ConsumePasswordRecovery() error = %v", err)
	}

	if len(f.mail.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.mail.sent))
	}
	if !strings.Contains(f.mail.sent[0].HTMLBody, "temp-pass-9") {
		t.Fatal("email body should contain the temporary password")
	}
	if f.db.logs[0].TriggerKey != entity.TriggerKeyPasswordRecovery {
		t.Fatalf("TriggerKey = %q", f.db.logs[0].TriggerKey)
	}
}

func TestConsumePasswordRecoveryFailureStaysLocal(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("smtp: timeout")

	err := f.uc.ConsumePasswordRecovery(context.Background(), ConsumePasswordRecoveryInput{
		UserID:       7,
		Username:     "painter",
		Email:        "painter@example.com",
		TempPassword: "temp-pass-9",
	})
	if err != nil {
		t.Fatalf("ConsumePasswordRecovery() error = %v", err)
	}

	if got := f.db.statuses[f.db.logs[0].ID]; got != entity.DeliveryStatusFailed {
		t.Fatalf("final Status = %v, want Failed", got)
	}
	if len(f.msg.failures) != 0 {
		t.Fatal("recovery delivery failures are not broadcast")
	}
}
