package analytics

import (
	"context"
	"time"

	"backend-ping/internal/shared/apperr"
)

type DailyViews struct {
	Date  time.Time `json:"date"`
	Views int       `json:"views"`
}

// PlaceStats aggregates everything the dashboard shows for one place.
type PlaceStats struct {
	PlaceID     string       `json:"place_id"`
	TotalViews  int          `json:"total_views"`
	Favorites   int          `json:"favorites"`
	ReviewCount int          `json:"review_count"`
	AvgRating   float64      `json:"avg_rating"`
	EventCount  int          `json:"event_count"`
	ViewHistory []DailyViews `json:"view_history"`
}

// TrackPlaceView bumps the place's view counter for the given day. One row
// per place and day.
func (s *Service) TrackPlaceView(ctx context.Context, placeID string, day time.Time) error {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM places WHERE id=$1 AND is_deleted=false)
	`, placeID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("place not found")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO place_daily_metrics (place_id, metric_date, view_count)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (place_id, metric_date) DO UPDATE SET
			view_count = place_daily_metrics.view_count + 1
	`, placeID, day)
	return err
}

// PlaceAnalytics reports lifetime counters plus the last 30 days of views.
func (s *Service) PlaceAnalytics(ctx context.Context, placeID string, now time.Time) (PlaceStats, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM places WHERE id=$1 AND is_deleted=false)
	`, placeID).Scan(&exists)
	if err != nil {
		return PlaceStats{}, err
	}
	if !exists {
		return PlaceStats{}, apperr.NotFound("place not found")
	}

	stats := PlaceStats{PlaceID: placeID}
	err = s.db.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(view_count),0) FROM place_daily_metrics WHERE place_id=$1),
			(SELECT COUNT(*) FROM place_favorites WHERE place_id=$1),
			(SELECT COUNT(*) FROM reviews r JOIN activities a ON a.id=r.activity_id WHERE a.place_id=$1),
			(SELECT COALESCE(AVG(r.rating),0) FROM reviews r JOIN activities a ON a.id=r.activity_id WHERE a.place_id=$1),
			(SELECT COUNT(*) FROM events WHERE place_id=$1)
	`, placeID).Scan(&stats.TotalViews, &stats.Favorites, &stats.ReviewCount, &stats.AvgRating, &stats.EventCount)
	if err != nil {
		return PlaceStats{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT metric_date, view_count
		FROM place_daily_metrics
		WHERE place_id=$1 AND metric_date > $2::date - 30
		ORDER BY metric_date
	`, placeID, now)
	if err != nil {
		return PlaceStats{}, err
	}
	defer rows.Close()

	stats.ViewHistory = []DailyViews{}
	for rows.Next() {
		var d DailyViews
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return PlaceStats{}, err
		}
		stats.ViewHistory = append(stats.ViewHistory, d)
	}
	return stats, rows.Err()
}
