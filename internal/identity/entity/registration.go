package entity

import "time"

// PendingRegistration is the server-side state of one registration attempt.
// It lives in the cache under the hashed attempt token and disappears when the
// code expires or the account is created. The email code itself is never
// stored; it is re-derived from Secret and Counter on every check, so bumping
// Counter on a resend structurally invalidates every code issued before it.
type PendingRegistration struct {
	Username          string            `json:"username"`
	Email             string            `json:"email"`
	Secret            string            `json:"secret"`
	Counter           uint64            `json:"counter"`
	Phase             RegistrationPhase `json:"phase"`
	Attempts          int16             `json:"attempts"`
	CodeIssuedAt      time.Time         `json:"code_issued_at"`
	ResendAvailableAt time.Time         `json:"resend_available_at"`
}
