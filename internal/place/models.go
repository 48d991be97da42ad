package place

import "time"

const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

const (
	TypeCustom   = "custom"
	TypeVerified = "verified"
)

const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
)

type Place struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	OwnerID       string    `json:"owner_id"`
	Visibility    string    `json:"visibility"`
	Type          string    `json:"type"`
	Claimed       bool      `json:"claimed"`
	FavoriteCount int       `json:"favorite_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Claim is a user's request to take ownership of a verified place.
type Claim struct {
	ID         string     `json:"id"`
	PlaceID    string     `json:"place_id"`
	UserID     string     `json:"user_id"`
	Evidence   string     `json:"evidence"`
	Status     string     `json:"status"`
	ReviewerID string     `json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NearbyQuery is the caller's search input. ActivityName and KindName are
// optional exact-match filters, compared case-insensitively.
type NearbyQuery struct {
	Lat          float64
	Lng          float64
	RadiusKm     float64
	ActivityName string
	KindName     string
}

type NearbyResult struct {
	Place
	DistanceKm    float64  `json:"distance_km"`
	IsOwner       bool     `json:"is_owner"`
	IsFavorited   bool     `json:"is_favorited"`
	ActivityNames []string `json:"activity_names"`
	KindNames     []string `json:"kind_names"`
}
