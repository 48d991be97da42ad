package notification

import (
	"time"
)

const (
	KindFriendRequest = "friend_request"
	KindReviewLike    = "review_like"
	KindEventInvite   = "event_invite"
)

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Limit caps how many notifications of one kind a recipient receives per
// window. Kinds without a limit are unlimited.
type Limit struct {
	Max    int64
	Window time.Duration
}
