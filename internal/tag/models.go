package tag

type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsApproved bool   `json:"is_approved"`
	IsBanned   bool   `json:"is_banned"`
}

// PopularTag pairs a tag with how many reviews carry it.
type PopularTag struct {
	Tag
	UsageCount int `json:"usage_count"`
}
