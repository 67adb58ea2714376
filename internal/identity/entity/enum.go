package entity

import "strconv"

type UserStatus int16

const (
	// UserStatusUnknown is mean status is not known / not set.
	UserStatusUnknown UserStatus = 0

	// UserStatusActive mean user is allowed to use the app.
	UserStatusActive UserStatus = 1

	// UserStatusBanned mean user is blocked from using the app (policy/abuse/etc).
	UserStatusBanned UserStatus = 2

	// UserStatusInactive mean user is not currently active (e.g., deactivated, closed).
	UserStatusInactive UserStatus = 3
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusActive:
		return "Active"
	case UserStatusBanned:
		return "Banned"
	case UserStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

func (us UserStatus) IsUnknown() bool {
	switch us {
	case UserStatusActive, UserStatusBanned, UserStatusInactive:
		return false
	default:
		return true
	}
}

func (us UserStatus) Ensure() UserStatus {
	if us.IsUnknown() {
		return UserStatusUnknown
	}
	return us
}

func ParseSafeUserStatuses(raws []string) []UserStatus {
	out := make([]UserStatus, 0)
	seen := map[UserStatus]struct{}{}

	for _, v := range raws {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			continue
		}

		s := UserStatus(n)
		if s.IsUnknown() {
			continue
		}

		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

func ToInt16Slice(sts []UserStatus) []int16 {
	out := make([]int16, len(sts))
	for i, s := range sts {
		out[i] = int16(s)
	}
	return out
}

// RegistrationPhase tracks how far a pending registration has progressed.
// Phases only move forward: AwaitingCode -> Verified -> Finalized.
type RegistrationPhase int16

const (
	RegistrationPhaseUnknown RegistrationPhase = 0

	// RegistrationPhaseAwaitingCode mean a code was emailed and the attempt
	// is waiting for the user to type it back.
	RegistrationPhaseAwaitingCode RegistrationPhase = 1

	// RegistrationPhaseVerified mean the code matched and the attempt may
	// proceed to password setup.
	RegistrationPhaseVerified RegistrationPhase = 2

	// RegistrationPhaseFinalized mean the account was created and the
	// attempt is spent.
	RegistrationPhaseFinalized RegistrationPhase = 3
)

func (rp RegistrationPhase) String() string {
	switch rp {
	case RegistrationPhaseAwaitingCode:
		return "AwaitingCode"
	case RegistrationPhaseVerified:
		return "Verified"
	case RegistrationPhaseFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}
