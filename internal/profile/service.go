package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend-ping/internal/auth"
	"backend-ping/internal/db"
	"backend-ping/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

const searchLimit = 15

// Profile is the caller's own view of their account, with usage counters.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	JoinedAt    time.Time `json:"joined_at"`
	FriendCount int       `json:"friend_count"`
	PlaceCount  int       `json:"place_count"`
	ReviewCount int       `json:"review_count"`
	EventCount  int       `json:"event_count"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) MyProfile(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.created_at,
		       (SELECT COUNT(*) FROM friendships WHERE user_id=u.id AND status='accepted'),
		       (SELECT COUNT(*) FROM places WHERE owner_id=u.id AND is_deleted=false),
		       (SELECT COUNT(*) FROM reviews WHERE author_id=u.id),
		       (SELECT COUNT(*) FROM events WHERE creator_id=u.id)
		FROM users u WHERE u.id=$1
	`, userID)

	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.FirstName, &p.LastName, &p.JoinedAt,
		&p.FriendCount, &p.PlaceCount, &p.ReviewCount, &p.EventCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperr.NotFound("user not found")
		}
		return Profile{}, err
	}
	return p, nil
}

// Search matches usernames by case-insensitive prefix, excluding the caller.
func (s *Service) Search(ctx context.Context, callerID, prefix string) ([]auth.Summary, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, apperr.InvalidArgument("username prefix is required")
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, username, first_name, last_name
		FROM users
		WHERE username ILIKE $1 || '%' AND id <> $2
		ORDER BY username
		LIMIT $3
	`, prefix, callerID, searchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []auth.Summary{}
	for rows.Next() {
		var u auth.Summary
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}
