package event

const UserDeletedDestination string = "user_deleted"
const UserDeletedConsumerStudio string = "user_deleted_studio"

// UserDeletedMessage announces account deletion so owning modules can purge
// the user's data (gallery records and stored objects).
type UserDeletedMessage struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
