package event

import "time"

const (
	StatusUpcoming = "upcoming"
	StatusOngoing  = "ongoing"
	StatusEnded    = "ended"
)

const maxCommentLength = 500

type Event struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	PlaceID     string    `json:"place_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsPublic    bool      `json:"is_public"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ComputeStatus derives the lifecycle phase from the event window.
func (e Event) ComputeStatus(now time.Time) string {
	switch {
	case now.Before(e.StartTime):
		return StatusUpcoming
	case now.Before(e.EndTime):
		return StatusOngoing
	default:
		return StatusEnded
	}
}

type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	InviteNone      = "none"
	InviteInvited   = "invited"
	InviteAttending = "attending"
)

// FriendInvite reports where one of the caller's friends stands with respect
// to an event: not asked, invited, or already attending.
type FriendInvite struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type NearbyEvent struct {
	Event
	DistanceKm float64 `json:"distance_km"`
}
