package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type loginFakeDB struct {
	fakeDB
	login   *entity.UserLoginInfo
	refresh []entity.RefreshToken
}

func (f *loginFakeDB) GetUserLoginInfo(_ context.Context, login string) (*entity.UserLoginInfo, error) {
	if f.login == nil || (login != f.login.Username && login != f.login.Email) {
		return nil, goerror.ErrNotFound
	}
	return f.login, nil
}

func (f *loginFakeDB) CreateRefreshToken(_ context.Context, in entity.RefreshToken) error {
	f.refresh = append(f.refresh, in)
	return nil
}

func newLoginFixture(t *testing.T, info *entity.UserLoginInfo) (*fixture, *loginFakeDB) {
	t.Helper()

	f := newFixture(t)
	db := &loginFakeDB{login: info}
	f.uc.repoDB = db

	return f, db
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	info := &entity.UserLoginInfo{
		ID:       42,
		Username: "painter",
		Email:    "painter@example.com",
		Status:   entity.UserStatusActive,
		Password: "h:brushwork",
	}
	f, db := newLoginFixture(t, info)

	for _, login := range []string{"painter", "painter@example.com"} {
		out, err := f.uc.Login(context.Background(), LoginInput{Login: login, Password: "brushwork"})
		if err != nil {
			t.Fatalf("Login(%q) error = %v", login, err)
		}
		if out.AccessToken == "" || out.RefreshToken == "" {
			t.Fatalf("Login(%q) returned empty tokens", login)
		}
	}

	if len(db.refresh) != 2 {
		t.Fatalf("stored refresh tokens = %d, want 2", len(db.refresh))
	}
}

func TestLoginWrongPassword(t *testing.T) {
	info := &entity.UserLoginInfo{
		ID:       42,
		Username: "painter",
		Email:    "painter@example.com",
		Status:   entity.UserStatusActive,
		Password: "h:brushwork",
	}
	f, _ := newLoginFixture(t, info)

	_, err := f.uc.Login(context.Background(), LoginInput{Login: "painter", Password: "wrong"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
}

func TestLoginBannedAccount(t *testing.T) {
	info := &entity.UserLoginInfo{
		ID:       42,
		Username: "painter",
		Email:    "painter@example.com",
		Status:   entity.UserStatusBanned,
		Password: "h:brushwork",
	}
	f, _ := newLoginFixture(t, info)

	_, err := f.uc.Login(context.Background(), LoginInput{Login: "painter", Password: "brushwork"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("Login() error = %v, want forbidden", err)
	}
}

func TestPasswordRecoverUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t)

	if err := f.uc.PasswordRecover(context.Background(), PasswordRecoverInput{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("PasswordRecover() error = %v", err)
	}
	if len(f.msg.recoveries) != 0 {
		t.Fatal("no recovery event should be published for unknown email")
	}
}

func TestPasswordRecoverPublishesTempPassword(t *testing.T) {
	f := newFixture(t)
	f.db.usersByEmail["painter@example.com"] = &entity.User{
		ID:       42,
		Username: "painter",
		Email:    "painter@example.com",
		Status:   entity.UserStatusActive,
	}

	if err := f.uc.PasswordRecover(context.Background(), PasswordRecoverInput{Email: "Painter@Example.com"}); err != nil {
		t.Fatalf("PasswordRecover() error = %v", err)
	}

	if len(f.msg.recoveries) != 1 {
		t.Fatalf("recovery events = %d, want 1", len(f.msg.recoveries))
	}
	if f.msg.recoveries[0].TempPassword == "" {
		t.Fatal("recovery event is missing the temporary password")
	}
}
