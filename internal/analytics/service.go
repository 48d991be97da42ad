package analytics

import (
	"context"
	"log"
	"time"

	"backend-ping/internal/db"
)

type DailyMetrics struct {
	Date        time.Time `json:"date"`
	ActiveUsers int       `json:"active_users"`
	NewUsers    int       `json:"new_users"`
	NewPlaces   int       `json:"new_places"`
	NewReviews  int       `json:"new_reviews"`
}

type DashboardStats struct {
	DAU        int `json:"dau"`
	WAU        int `json:"wau"`
	MAU        int `json:"mau"`
	TotalUsers int `json:"total_users"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Touch records that the user was active on the given day. One row per
// user and day.
func (s *Service) Touch(ctx context.Context, userID string, day time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_activity_log (user_id, activity_date)
		VALUES ($1, $2::date)
		ON CONFLICT DO NOTHING
	`, userID, day)
	return err
}

// ComputeDailyMetrics aggregates one day's counters and upserts them, so
// recomputing a day is safe.
func (s *Service) ComputeDailyMetrics(ctx context.Context, day time.Time) (DailyMetrics, error) {
	m := DailyMetrics{Date: day}
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT user_id) FROM user_activity_log WHERE activity_date = $1::date),
			(SELECT COUNT(*) FROM users   WHERE created_at::date = $1::date),
			(SELECT COUNT(*) FROM places  WHERE created_at::date = $1::date),
			(SELECT COUNT(*) FROM reviews WHERE created_at::date = $1::date)
	`, day).Scan(&m.ActiveUsers, &m.NewUsers, &m.NewPlaces, &m.NewReviews)
	if err != nil {
		return DailyMetrics{}, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO daily_system_metrics (metric_date, active_users, new_users, new_places, new_reviews)
		VALUES ($1::date,$2,$3,$4,$5)
		ON CONFLICT (metric_date) DO UPDATE SET
			active_users=EXCLUDED.active_users,
			new_users=EXCLUDED.new_users,
			new_places=EXCLUDED.new_places,
			new_reviews=EXCLUDED.new_reviews
	`, day, m.ActiveUsers, m.NewUsers, m.NewPlaces, m.NewReviews)
	if err != nil {
		return DailyMetrics{}, err
	}
	return m, nil
}

// Dashboard reports distinct active users over 1, 7 and 30 day windows plus
// the total user count.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT user_id) FROM user_activity_log WHERE activity_date = $1::date),
			(SELECT COUNT(DISTINCT user_id) FROM user_activity_log WHERE activity_date > $1::date - 7),
			(SELECT COUNT(DISTINCT user_id) FROM user_activity_log WHERE activity_date > $1::date - 30),
			(SELECT COUNT(*) FROM users)
	`, now).Scan(&stats.DAU, &stats.WAU, &stats.MAU, &stats.TotalUsers)
	if err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

// RunPeriodic recomputes the current day's metrics on every tick until the
// context is cancelled.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ComputeDailyMetrics(ctx, time.Now().UTC()); err != nil {
				log.Printf("daily metrics compute: %v", err)
			}
		}
	}
}
