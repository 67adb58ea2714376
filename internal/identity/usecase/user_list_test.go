package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
)

func adminCtx() context.Context {
	clm := jwt.Claims{UserID: 1}
	clm.Subject = "admin"
	return jwt.SetAuth(context.Background(), clm)
}

func TestUserListRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.UserList(context.Background(), UserListInput{})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("anonymous list error = %v, want unauthorized", err)
	}

	clm := jwt.Claims{UserID: 2}
	clm.Subject = "painter"
	_, err = f.uc.UserList(jwt.SetAuth(context.Background(), clm), UserListInput{})
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("non-admin list error = %v, want forbidden", err)
	}
}

func TestUserListRejectsOverlongSearch(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.UserList(adminCtx(), UserListInput{
		Search: strings.Repeat("a", maxSearchLength+1),
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("overlong search error = %v, want invalid input", err)
	}
	if f.db.listFilter != nil {
		t.Fatal("overlong search must not reach the repository")
	}
}

func TestUserListPassesSearchThrough(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.UserList(adminCtx(), UserListInput{Search: "a(b"})
	if err != nil {
		t.Fatalf("UserList() error = %v", err)
	}
	if out.Page != 1 || out.Size != 10 {
		t.Fatalf("paging defaults = page %d size %d, want 1 and 10", out.Page, out.Size)
	}
	if f.db.listFilter == nil || !f.db.listFilter.IsFilterBySearch || f.db.listFilter.Search != "a(b" {
		t.Fatalf("repository filter = %+v, want search %q", f.db.listFilter, "a(b")
	}
}
