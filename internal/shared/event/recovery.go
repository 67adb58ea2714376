package event

const PasswordRecoveryDestination string = "password_recovery"
const PasswordRecoveryConsumerNotification string = "password_recovery_notification"

// PasswordRecoveryMessage asks the notification module to deliver a
// server-generated temporary password.
type PasswordRecoveryMessage struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}
