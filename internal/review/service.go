package review

import (
	"context"
	"errors"
	"log"
	"strings"

	"backend-ping/internal/db"
	"backend-ping/internal/notification"
	"backend-ping/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Notifier delivers the "your review was liked" notification. Satisfied by
// *notification.Service. Delivery failure never fails the like.
type Notifier interface {
	Notify(ctx context.Context, recipientID, kind, message string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string) error { return nil }

type Service struct {
	db       db.Querier
	notifier Notifier
}

func NewService(db db.Querier, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{db: db, notifier: notifier}
}

// CreateReview allows one review per author and activity. A second attempt
// is a conflict, not an upsert.
func (s *Service) CreateReview(ctx context.Context, activityID, authorID string, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, apperr.InvalidArgument("rating must be between 1 and 5")
	}

	var activityExists, alreadyReviewed bool
	err := s.db.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM activities WHERE id=$1),
			EXISTS (SELECT 1 FROM reviews WHERE activity_id=$1 AND author_id=$2)
	`, activityID, authorID).Scan(&activityExists, &alreadyReviewed)
	if err != nil {
		return Review{}, err
	}
	if !activityExists {
		return Review{}, apperr.NotFound("activity not found")
	}
	if alreadyReviewed {
		return Review{}, apperr.Conflict("you already reviewed this activity")
	}

	r := Review{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		AuthorID:   authorID,
		Rating:     rating,
		Comment:    comment,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, activity_id, author_id, rating, comment, like_count)
		VALUES ($1,$2,$3,$4,$5,0)
		RETURNING created_at
	`, r.ID, r.ActivityID, r.AuthorID, r.Rating, r.Comment)
	if err := row.Scan(&r.CreatedAt); err != nil {
		return Review{}, err
	}
	return r, nil
}

func (s *Service) GetReview(ctx context.Context, id string) (Review, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, activity_id, author_id, rating, comment, like_count, created_at
		FROM reviews WHERE id=$1
	`, id)
	var r Review
	err := row.Scan(&r.ID, &r.ActivityID, &r.AuthorID, &r.Rating, &r.Comment, &r.LikeCount, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, apperr.NotFound("review not found")
		}
		return Review{}, err
	}
	return r, nil
}

func (s *Service) ListReviews(ctx context.Context, activityID string) ([]Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, activity_id, author_id, rating, comment, like_count, created_at
		FROM reviews WHERE activity_id=$1
		ORDER BY created_at DESC
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ActivityID, &r.AuthorID, &r.Rating, &r.Comment, &r.LikeCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

func (s *Service) DeleteReview(ctx context.Context, id, authorID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM reviews WHERE id=$1 AND author_id=$2
	`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review not found")
	}
	return nil
}

// LikeReview is idempotent: the counter only moves when a like row is
// actually inserted. The author is notified, rate-limited downstream.
func (s *Service) LikeReview(ctx context.Context, reviewID, userID string) error {
	r, err := s.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO review_likes (review_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, reviewID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE reviews SET like_count = like_count + 1 WHERE id=$1
	`, reviewID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if r.AuthorID != userID {
		if err := s.notifier.Notify(ctx, r.AuthorID, notification.KindReviewLike, "someone liked your review"); err != nil {
			log.Printf("review like notification: %v", err)
		}
	}
	return nil
}

func (s *Service) UnlikeReview(ctx context.Context, reviewID, userID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM review_likes WHERE review_id=$1 AND user_id=$2
	`, reviewID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE reviews SET like_count = GREATEST(like_count - 1, 0) WHERE id=$1
	`, reviewID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AttachTags links tags to the author's review, creating unknown tags as
// unapproved. Tag names are stored normalized lowercase. Banned tags are
// skipped.
func (s *Service) AttachTags(ctx context.Context, reviewID, authorID string, names []string) ([]string, error) {
	r, err := s.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.AuthorID != authorID {
		return nil, apperr.Unauthorized("only the author can tag a review")
	}

	var attached []string
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}

		var tagID string
		var banned bool
		err := s.db.QueryRow(ctx, `
			SELECT id, is_banned FROM tags WHERE name=$1
		`, name).Scan(&tagID, &banned)
		if errors.Is(err, pgx.ErrNoRows) {
			tagID = uuid.NewString()
			if _, err := s.db.Exec(ctx, `
				INSERT INTO tags (id, name, is_approved, is_banned)
				VALUES ($1,$2,false,false)
			`, tagID, name); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		} else if banned {
			continue
		}

		if _, err := s.db.Exec(ctx, `
			INSERT INTO review_tags (review_id, tag_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, reviewID, tagID); err != nil {
			return nil, err
		}
		attached = append(attached, name)
	}
	return attached, nil
}

func (s *Service) ReviewTags(ctx context.Context, reviewID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.name
		FROM review_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.review_id=$1
		ORDER BY t.name
	`, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
