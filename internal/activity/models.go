package activity

import "time"

type Activity struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	Name      string    `json:"name"`
	KindID    string    `json:"kind_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Kind struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Checkin is a user's record of actually doing an activity, with an
// optional note.
type Checkin struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
