package event

const RegistrationCodeDestination string = "registration_code"
const RegistrationCodeConsumerNotification string = "registration_code_notification"

// RegistrationCodeMessage asks the notification module to deliver a
// verification code for a pending registration.
type RegistrationCodeMessage struct {
	AttemptToken string `json:"attempt_token"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Code         string `json:"code"`
}

const RegistrationDeliveryFailedDestination string = "registration_delivery_failed"
const RegistrationDeliveryFailedConsumerIdentity string = "registration_delivery_failed_identity"

// RegistrationDeliveryFailedMessage reports that a verification code could
// not be delivered. The identity module clears the resend cooldown so the
// user can re-issue immediately; a failed send never counts against the
// resend quota.
type RegistrationDeliveryFailedMessage struct {
	AttemptToken string `json:"attempt_token"`
	Email        string `json:"email"`
	Reason       string `json:"reason"`
}
