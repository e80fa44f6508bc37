package notifications

// Query names owned by the notifications module.
const ListQuery = "notifications.list"

// List fetches notifications for a user, newest first.
type List struct {
	UserId     uint
	UnreadOnly bool
	Limit      int
}

func (*List) QueryName() string { return ListQuery }
