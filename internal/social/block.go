package social

import (
	"context"

	"backend-ping/internal/auth"
	"backend-ping/internal/shared/apperr"
)

// BlockUser records the block and removes any follow edges between the pair
// in either direction. Both writes commit together.
func (s *Service) BlockUser(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return apperr.InvalidArgument("you cannot block yourself")
	}
	if _, err := s.users.ByID(ctx, blockedID); err != nil {
		return err
	}

	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_blocks WHERE blocker_id=$1 AND blocked_id=$2
		)
	`, blockerID, blockedID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_blocks (blocker_id, blocked_id)
		VALUES ($1,$2)
	`, blockerID, blockedID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM follows
		WHERE (follower_id=$1 AND followee_id=$2) OR (follower_id=$2 AND followee_id=$1)
	`, blockerID, blockedID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) UnblockUser(ctx context.Context, blockerID, blockedID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM user_blocks WHERE blocker_id=$1 AND blocked_id=$2
	`, blockerID, blockedID)
	return err
}

func (s *Service) BlockedUsers(ctx context.Context, userID string) ([]auth.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM user_blocks b
		JOIN users u ON u.id = b.blocked_id
		WHERE b.blocker_id=$1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// IsBlocked reports whether potentiallyBlockedBy has blocked userID.
func (s *Service) IsBlocked(ctx context.Context, userID, potentiallyBlockedBy string) (bool, error) {
	var blocked bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_blocks WHERE blocker_id=$1 AND blocked_id=$2
		)
	`, potentiallyBlockedBy, userID).Scan(&blocked)
	return blocked, err
}
