package moderation

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-ping/internal/cache"
	"backend-ping/internal/db"
	"backend-ping/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	userBanKeyPrefix = "banned:user:"
	ipBanKeyPrefix   = "banned:ip:"
)

type Service struct {
	db              db.Querier
	cache           cache.Store
	banThreshold    int
	reportThreshold int
}

func NewService(db db.Querier, store cache.Store, banThreshold, reportThreshold int) *Service {
	return &Service{
		db:              db,
		cache:           store,
		banThreshold:    banThreshold,
		reportThreshold: reportThreshold,
	}
}

// BanUser marks the user banned and bumps their ban counter. Already-banned
// users are a no-op. Once the counter reaches the threshold their last known
// IP is banned too.
func (s *Service) BanUser(ctx context.Context, userID, reason string) error {
	var banned bool
	var banCount int
	var lastIP string
	err := s.db.QueryRow(ctx, `
		SELECT is_banned, ban_count, COALESCE(last_ip,'') FROM users WHERE id=$1
	`, userID).Scan(&banned, &banCount, &lastIP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	if banned {
		return nil
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE users SET is_banned=true, ban_reason=$2, ban_count=ban_count+1 WHERE id=$1
	`, userID, reason); err != nil {
		return err
	}

	s.setCache(ctx, userBanKeyPrefix+userID, reason, 0)

	if banCount+1 >= s.banThreshold && lastIP != "" {
		if err := s.BanIP(ctx, lastIP, "repeat offender: "+reason, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) UnbanUser(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET is_banned=false, ban_reason='' WHERE id=$1 AND is_banned=true
	`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user is not banned")
	}
	s.deleteCache(ctx, userBanKeyPrefix+userID)
	return nil
}

// BanIP is idempotent. A nil expiry bans permanently; an expiry already in
// the past is skipped.
func (s *Service) BanIP(ctx context.Context, ip, reason string, expiresAt *time.Time) error {
	if ip == "" {
		return apperr.InvalidArgument("ip is required")
	}

	var ttl time.Duration
	if expiresAt != nil {
		ttl = time.Until(*expiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO banned_ips (ip, reason, expires_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (ip) DO UPDATE SET reason=EXCLUDED.reason, expires_at=EXCLUDED.expires_at
	`, ip, reason, expiresAt); err != nil {
		return err
	}

	s.setCache(ctx, ipBanKeyPrefix+ip, reason, ttl)
	return nil
}

func (s *Service) UnbanIP(ctx context.Context, ip string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM banned_ips WHERE ip=$1`, ip); err != nil {
		return err
	}
	s.deleteCache(ctx, ipBanKeyPrefix+ip)
	return nil
}

// CheckBan consults only the cache: IP first, then user. Cache errors and
// misses let the request through.
func (s *Service) CheckBan(ctx context.Context, ip, userID string) (bool, string) {
	if ip != "" {
		if reason, ok := s.getCache(ctx, ipBanKeyPrefix+ip); ok {
			return true, reason
		}
	}
	if userID != "" {
		if reason, ok := s.getCache(ctx, userBanKeyPrefix+userID); ok {
			return true, reason
		}
	}
	return false, ""
}

func (s *Service) BannedUsers(ctx context.Context, page, pageSize int) ([]BannedUser, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, username, COALESCE(ban_reason,''), ban_count
		FROM users
		WHERE is_banned=true
		ORDER BY ban_count DESC, username
		LIMIT $1 OFFSET $2
	`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []BannedUser
	for rows.Next() {
		var u BannedUser
		if err := rows.Scan(&u.ID, &u.Username, &u.BanReason, &u.BanCount); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Service) BannedUser(ctx context.Context, userID string) (BannedUser, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, COALESCE(ban_reason,''), ban_count
		FROM users WHERE id=$1 AND is_banned=true
	`, userID)
	var u BannedUser
	if err := row.Scan(&u.ID, &u.Username, &u.BanReason, &u.BanCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BannedUser{}, apperr.NotFound("user is not banned")
		}
		return BannedUser{}, err
	}
	return u, nil
}

// ReportUser files a report. Reaching the report threshold auto-bans the
// target.
func (s *Service) ReportUser(ctx context.Context, reporterID, targetID, reason string) (Report, error) {
	if reporterID == targetID {
		return Report{}, apperr.InvalidArgument("you cannot report yourself")
	}

	report := Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetID:   targetID,
		Reason:     reason,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO user_reports (id, reporter_id, target_id, reason)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, report.ID, report.ReporterID, report.TargetID, report.Reason)
	if err := row.Scan(&report.CreatedAt); err != nil {
		return Report{}, err
	}

	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_reports WHERE target_id=$1
	`, targetID).Scan(&count)
	if err != nil {
		return Report{}, err
	}
	if count >= s.reportThreshold {
		if err := s.BanUser(ctx, targetID, "report threshold exceeded"); err != nil {
			return Report{}, err
		}
	}
	return report, nil
}

func (s *Service) deleteCache(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("ban cache delete: %v", err)
	}
}

func (s *Service) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		log.Printf("ban cache set: %v", err)
	}
}

func (s *Service) getCache(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("ban cache get, letting request through: %v", err)
		return "", false
	}
	return value, found
}
