package notification

import (
	"context"
	"log"
	"time"

	"backend-ping/internal/cache"
	"backend-ping/internal/config"
	"backend-ping/internal/db"
	"backend-ping/internal/shared/apperr"

	"github.com/google/uuid"
)

type Service struct {
	db     db.Querier
	cache  cache.Store
	limits map[string]Limit
}

func NewService(db db.Querier, store cache.Store, limits map[string]Limit) *Service {
	return &Service{db: db, cache: store, limits: limits}
}

// LimitsFromConfig builds the per-kind send limits.
func LimitsFromConfig(cfg config.Config) map[string]Limit {
	return map[string]Limit{
		KindFriendRequest: {Max: cfg.FriendRequestLimitPer12Hours, Window: 12 * time.Hour},
		KindReviewLike:    {Max: cfg.ReviewLikeLimitPerHour, Window: time.Hour},
	}
}

// Notify persists a notification unless the recipient already hit the
// per-kind limit inside the current window, in which case it is dropped
// silently. A cache failure never blocks delivery.
func (s *Service) Notify(ctx context.Context, recipientID, kind, message string) error {
	if limit, ok := s.limits[kind]; ok && s.cache != nil {
		count, err := s.cache.Increment(ctx, "notify:"+recipientID+":"+kind, limit.Window)
		if err != nil {
			log.Printf("notification limiter unavailable, delivering anyway: %v", err)
		} else if count > limit.Max {
			return nil
		}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, message, is_read)
		VALUES ($1,$2,$3,$4,false)
	`, uuid.NewString(), recipientID, kind, message)
	return err
}

func (s *Service) List(ctx context.Context, recipientID string, page, pageSize int) ([]Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, recipient_id, kind, message, is_read, created_at
		FROM notifications
		WHERE recipient_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, recipientID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read=false
	`, recipientID).Scan(&count)
	return count, err
}

func (s *Service) MarkRead(ctx context.Context, id, recipientID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET is_read=true WHERE id=$1 AND recipient_id=$2
	`, id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE notifications SET is_read=true WHERE recipient_id=$1 AND is_read=false
	`, recipientID)
	return err
}
