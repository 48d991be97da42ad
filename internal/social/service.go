package social

import (
	"context"
	"log"

	"backend-ping/internal/auth"
	"backend-ping/internal/db"
	"backend-ping/internal/notification"
	"backend-ping/internal/shared/apperr"
)

// UserResolver resolves usernames and ids to user summaries. *auth.Service
// satisfies it.
type UserResolver interface {
	ByUsername(ctx context.Context, username string) (auth.Summary, error)
	ByID(ctx context.Context, id string) (auth.Summary, error)
}

// Notifier tells a user they received a friend request. Satisfied by
// *notification.Service; nil disables notifications.
type Notifier interface {
	Notify(ctx context.Context, recipientID, kind, message string) error
}

type Service struct {
	db       db.Querier
	users    UserResolver
	notifier Notifier
}

func NewService(db db.Querier, users UserResolver, notifier Notifier) *Service {
	return &Service{db: db, users: users, notifier: notifier}
}

// SendRequest creates a pending edge userID -> targetUsername's id.
func (s *Service) SendRequest(ctx context.Context, userID, targetUsername string) error {
	target, err := s.users.ByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == userID {
		return apperr.InvalidArgument("you cannot add yourself as a friend")
	}

	var alreadyFriends bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE ((user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1))
			  AND status='accepted'
		)
	`, userID, target.ID).Scan(&alreadyFriends)
	if err != nil {
		return err
	}
	if alreadyFriends {
		return apperr.Conflict("already friends")
	}

	var outgoing, incoming, blocked bool
	err = s.db.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2 AND status='pending'),
			EXISTS (SELECT 1 FROM friendships WHERE user_id=$2 AND friend_id=$1 AND status='pending'),
			EXISTS (SELECT 1 FROM friendships WHERE user_id=$2 AND friend_id=$1 AND status='blocked')
	`, userID, target.ID).Scan(&outgoing, &incoming, &blocked)
	if err != nil {
		return err
	}
	if outgoing {
		return apperr.InvalidArgument("you already sent a friend request to this user")
	}
	if incoming {
		return apperr.InvalidArgument("this user already sent you a request, accept it instead")
	}
	if blocked {
		return apperr.InvalidArgument("this user has blocked you")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, status)
		VALUES ($1,$2,'pending')
	`, userID, target.ID)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		sender, err := s.users.ByID(ctx, userID)
		if err == nil {
			if err := s.notifier.Notify(ctx, target.ID, notification.KindFriendRequest, sender.Username+" sent you a friend request"); err != nil {
				log.Printf("friend request notification: %v", err)
			}
		}
	}
	return nil
}

// AcceptRequest flips the requester's pending edge to accepted and creates
// the reverse accepted edge. Both writes commit together: an accepted
// friendship must always be symmetric.
func (s *Service) AcceptRequest(ctx context.Context, userID, requesterUsername string) error {
	requester, err := s.users.ByUsername(ctx, requesterUsername)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE friendships SET status='accepted'
		WHERE user_id=$1 AND friend_id=$2 AND status='pending'
	`, requester.ID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidArgument("no pending request from this user")
	}

	var reverseExists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE user_id=$1 AND friend_id=$2 AND status='accepted'
		)
	`, userID, requester.ID).Scan(&reverseExists)
	if err != nil {
		return err
	}
	if !reverseExists {
		if _, err := tx.Exec(ctx, `
			INSERT INTO friendships (user_id, friend_id, status)
			VALUES ($1,$2,'accepted')
		`, userID, requester.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// RemoveFriend deletes both accepted edges in one statement.
func (s *Service) RemoveFriend(ctx context.Context, userID, targetUsername string) error {
	target, err := s.users.ByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM friendships
		WHERE ((user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1))
		  AND status='accepted'
	`, userID, target.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidArgument("you are not friends with this user")
	}
	return nil
}

func (s *Service) ListFriends(ctx context.Context, userID string) ([]auth.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id=$1 AND f.status='accepted'
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *Service) ListIncomingRequests(ctx context.Context, userID string) ([]auth.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM friendships f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id=$1 AND f.status='pending'
		ORDER BY f.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (s *Service) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT friend_id FROM friendships
		WHERE user_id=$1 AND status='accepted'
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
