package review

import "time"

type Review struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	AuthorID   string    `json:"author_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	LikeCount  int       `json:"like_count"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
