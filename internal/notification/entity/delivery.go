package entity

import (
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/valueobject"
)

type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusQueued  DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 2
	DeliveryStatusFailed  DeliveryStatus = 3
)

func (ds DeliveryStatus) String() string {
	switch ds {
	case DeliveryStatusQueued:
		return "Queued"
	case DeliveryStatusSent:
		return "Sent"
	case DeliveryStatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

type TriggerKey string

const (
	TriggerKeyRegistrationCode TriggerKey = "registration_code"
	TriggerKeyPasswordRecovery TriggerKey = "password_recovery"
)

func (tk TriggerKey) String() string {
	return string(tk)
}

// DeliveryLog records one attempt to put an email in front of a user.
type DeliveryLog struct {
	ID               int64
	TriggerKey       TriggerKey
	Recipient        string
	Status           DeliveryStatus
	ProviderResponse valueobject.JSONMap
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
