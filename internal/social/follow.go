package social

import (
	"context"

	"backend-ping/internal/auth"
	"backend-ping/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

// FollowUser creates the follower edge. Following is asymmetric; there is no
// request/accept step.
func (s *Service) FollowUser(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return apperr.InvalidArgument("you cannot follow yourself")
	}
	if _, err := s.users.ByID(ctx, targetID); err != nil {
		return err
	}

	var blocked bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_blocks
			WHERE (blocker_id=$1 AND blocked_id=$2) OR (blocker_id=$2 AND blocked_id=$1)
		)
	`, userID, targetID).Scan(&blocked)
	if err != nil {
		return err
	}
	if blocked {
		return apperr.InvalidArgument("you cannot follow this user")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, userID, targetID)
	return err
}

func (s *Service) UnfollowUser(ctx context.Context, userID, targetID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2
	`, userID, targetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidArgument("you are not following this user")
	}
	return nil
}

func (s *Service) Followers(ctx context.Context, userID string, page, pageSize int) ([]auth.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id=$1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *Service) Following(ctx context.Context, userID string, page, pageSize int) ([]auth.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id=$1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Mutuals are users the caller follows who follow the caller back.
func (s *Service) Mutuals(ctx context.Context, userID string, page, pageSize int) ([]auth.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM follows f1
		JOIN follows f2 ON f2.follower_id = f1.followee_id AND f2.followee_id = f1.follower_id
		JOIN users u ON u.id = f1.followee_id
		WHERE f1.follower_id=$1
		ORDER BY u.username
		LIMIT $2 OFFSET $3
	`, userID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *Service) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id=$1 AND followee_id=$2
		)
	`, userID, targetID).Scan(&following)
	return following, err
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

func scanSummaries(rows pgx.Rows) ([]auth.Summary, error) {
	var users []auth.Summary
	for rows.Next() {
		var u auth.Summary
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
