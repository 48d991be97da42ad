package tag

import (
	"context"
	"strings"

	"backend-ping/internal/db"
	"backend-ping/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// SearchTags matches the query as a case-insensitive substring. Shorter
// names sort first so tighter matches win. Banned tags never surface.
func (s *Service) SearchTags(ctx context.Context, query string, limit int) ([]Tag, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.InvalidArgument("search query is required")
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, is_approved, is_banned
		FROM tags
		WHERE name ILIKE '%' || $1 || '%' AND is_banned=false
		ORDER BY length(name), name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// PopularTags orders by review usage count, globally or scoped to one
// place's activities.
func (s *Service) PopularTags(ctx context.Context, limit int, placeID string) ([]PopularTag, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.name, t.is_approved, t.is_banned, COUNT(rt.review_id) AS usage_count
		FROM tags t
		JOIN review_tags rt ON rt.tag_id = t.id
		JOIN reviews r ON r.id = rt.review_id
		JOIN activities a ON a.id = r.activity_id
		WHERE t.is_banned=false AND ($2 = '' OR a.place_id = $2)
		GROUP BY t.id, t.name, t.is_approved, t.is_banned
		ORDER BY usage_count DESC, t.name
		LIMIT $1
	`, limit, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []PopularTag
	for rows.Next() {
		var t PopularTag
		if err := rows.Scan(&t.ID, &t.Name, &t.IsApproved, &t.IsBanned, &t.UsageCount); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (s *Service) ApproveTag(ctx context.Context, id string) error {
	return s.setFlags(ctx, id, true, false)
}

func (s *Service) BanTag(ctx context.Context, id string) error {
	return s.setFlags(ctx, id, false, true)
}

func (s *Service) setFlags(ctx context.Context, id string, approved, banned bool) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE tags SET is_approved=$2, is_banned=$3 WHERE id=$1
	`, id, approved, banned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tag not found")
	}
	return nil
}

// MergeTags folds the source tag into the target. Reviews that already
// carry the target drop their source row; the rest are re-pointed. The
// source tag row is removed. Everything commits together; a partial merge
// would leave reviews tag-inconsistent.
func (s *Service) MergeTags(ctx context.Context, sourceID, targetID string) error {
	if sourceID == targetID {
		return nil
	}

	var sourceExists, targetExists bool
	err := s.db.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM tags WHERE id=$1),
			EXISTS (SELECT 1 FROM tags WHERE id=$2)
	`, sourceID, targetID).Scan(&sourceExists, &targetExists)
	if err != nil {
		return err
	}
	if !sourceExists || !targetExists {
		return apperr.NotFound("tag not found")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM review_tags
		WHERE tag_id=$1 AND review_id IN (
			SELECT review_id FROM review_tags WHERE tag_id=$2
		)
	`, sourceID, targetID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE review_tags SET tag_id=$2 WHERE tag_id=$1
	`, sourceID, targetID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tags WHERE id=$1`, sourceID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteTag removes the tag and its join rows.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM review_tags WHERE tag_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM tags WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tag not found")
	}
	return tx.Commit(ctx)
}

func scanTags(rows pgx.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.IsApproved, &t.IsBanned); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
