package entity

import (
	"time"
)

type User struct {
	ID        int64
	Username  string
	Email     string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewUser struct {
	ID       int64
	Username string
	Email    string
	Status   UserStatus
}

// UserLoginInfo carries the minimum needed to check a password at login.
type UserLoginInfo struct {
	ID       int64
	Username string
	Email    string
	Status   UserStatus
	Password string
}

type UserCredentialInfo struct {
	ID       int64
	Email    string
	Status   UserStatus
	Password string
}

type RefreshToken struct {
	ID                int64
	UserID            int64
	Token             string
	ExpiresAt         time.Time
	Revoked           bool
	ReplacedByTokenID int64
}

type RotateRefreshToken struct {
	NewID        int64
	OldID        int64
	UserID       int64
	NewToken     string
	NewExpiresAt time.Time
}

type UserRefreshToken struct {
	UserID                   int64
	UserEmail                string
	UserStatus               UserStatus
	RefreshID                int64
	RefreshToken             string
	RefreshRevoked           bool
	RefreshReplacedByTokenID *int64
	RefreshExpiresAt         time.Time
}

type UserListFilterData struct {
	Search           string
	Statuses         []int16
	DateFrom         time.Time
	DateTo           time.Time
	OrderBy          string
	OrderDirection   string
	Size             int32
	Page             int32
	IsFilterBySearch bool
	IsFilterByStatus bool
}
