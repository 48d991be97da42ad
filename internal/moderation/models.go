package moderation

import "time"

type BannedUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	BanReason string `json:"ban_reason"`
	BanCount  int    `json:"ban_count"`
}

type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	TargetID   string    `json:"target_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
