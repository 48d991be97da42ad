package place

import (
	"context"
	"errors"
	"strings"

	"backend-ping/internal/db"
	"backend-ping/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AdminChecker resolves whether a caller may mutate places they do not own.
// Satisfied by *auth.Service.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	db        db.Querier
	admins    AdminChecker
	resultCap int
}

func NewService(db db.Querier, admins AdminChecker, resultCap int) *Service {
	if resultCap <= 0 {
		resultCap = 100
	}
	return &Service{db: db, admins: admins, resultCap: resultCap}
}

func (s *Service) CreatePlace(ctx context.Context, ownerID string, input Place) (Place, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Place{}, apperr.InvalidArgument("place name is required")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return Place{}, apperr.InvalidArgument("coordinates out of range")
	}
	if input.Visibility == "" {
		input.Visibility = VisibilityPublic
	}
	if input.Visibility != VisibilityPublic && input.Visibility != VisibilityPrivate {
		return Place{}, apperr.InvalidArgument("visibility must be public or private")
	}

	input.ID = uuid.NewString()
	input.OwnerID = ownerID
	input.Type = TypeCustom
	input.Claimed = false
	input.FavoriteCount = 0

	row := s.db.QueryRow(ctx, `
		INSERT INTO places (id, name, address, lat, lng, owner_id, visibility, type, claimed, favorite_count, is_deleted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,0,false)
		RETURNING created_at
	`, input.ID, input.Name, input.Address, input.Lat, input.Lng, input.OwnerID, input.Visibility, input.Type)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Place{}, err
	}
	return input, nil
}

func (s *Service) GetPlace(ctx context.Context, id string) (Place, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, address, lat, lng, owner_id, visibility, type, claimed, favorite_count, created_at
		FROM places WHERE id=$1 AND is_deleted=false
	`, id)
	var p Place
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Lat, &p.Lng, &p.OwnerID,
		&p.Visibility, &p.Type, &p.Claimed, &p.FavoriteCount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Place{}, apperr.NotFound("place not found")
		}
		return Place{}, err
	}
	return p, nil
}

// Patch carries the fields a place update may change. Nil fields keep the
// stored value, so zero coordinates are a legal target.
type Patch struct {
	Name       *string  `json:"name"`
	Address    *string  `json:"address"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Visibility *string  `json:"visibility"`
}

func (s *Service) UpdatePlace(ctx context.Context, id, callerID string, patch Patch) (Place, error) {
	p, err := s.GetPlace(ctx, id)
	if err != nil {
		return Place{}, err
	}
	if err := s.requireOwnerOrAdmin(ctx, p, callerID); err != nil {
		return Place{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Place{}, apperr.InvalidArgument("place name is required")
		}
		p.Name = name
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Lat != nil {
		if *patch.Lat < -90 || *patch.Lat > 90 {
			return Place{}, apperr.InvalidArgument("coordinates out of range")
		}
		p.Lat = *patch.Lat
	}
	if patch.Lng != nil {
		if *patch.Lng < -180 || *patch.Lng > 180 {
			return Place{}, apperr.InvalidArgument("coordinates out of range")
		}
		p.Lng = *patch.Lng
	}
	if patch.Visibility != nil {
		if *patch.Visibility != VisibilityPublic && *patch.Visibility != VisibilityPrivate {
			return Place{}, apperr.InvalidArgument("visibility must be public or private")
		}
		p.Visibility = *patch.Visibility
	}

	_, err = s.db.Exec(ctx, `
		UPDATE places
		SET name=$2, address=$3, lat=$4, lng=$5, visibility=$6
		WHERE id=$1
	`, p.ID, p.Name, p.Address, p.Lat, p.Lng, p.Visibility)
	if err != nil {
		return Place{}, err
	}
	return p, nil
}

// DeletePlace soft-deletes. The row stays so reviews and claims keep their
// foreign keys.
func (s *Service) DeletePlace(ctx context.Context, id, callerID string) error {
	p, err := s.GetPlace(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(ctx, p, callerID); err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `UPDATE places SET is_deleted=true WHERE id=$1`, id)
	return err
}

func (s *Service) requireOwnerOrAdmin(ctx context.Context, p Place, callerID string) error {
	if p.OwnerID == callerID {
		return nil
	}
	admin, err := s.admins.IsAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.Unauthorized("only the owner or an admin can modify this place")
	}
	return nil
}

// FavoritePlace is idempotent: the count only moves when a new favorite row
// is actually inserted. Row and counter commit together.
func (s *Service) FavoritePlace(ctx context.Context, placeID, userID string) error {
	if _, err := s.GetPlace(ctx, placeID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO place_favorites (place_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, placeID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE places SET favorite_count = favorite_count + 1 WHERE id=$1
	`, placeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) UnfavoritePlace(ctx context.Context, placeID, userID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM place_favorites WHERE place_id=$1 AND user_id=$2
	`, placeID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE places SET favorite_count = GREATEST(favorite_count - 1, 0) WHERE id=$1
	`, placeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) IsFavorited(ctx context.Context, placeID, userID string) (bool, error) {
	var favorited bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM place_favorites WHERE place_id=$1 AND user_id=$2
		)
	`, placeID, userID).Scan(&favorited)
	return favorited, err
}

func (s *Service) CreateClaim(ctx context.Context, placeID, userID, evidence string) (Claim, error) {
	p, err := s.GetPlace(ctx, placeID)
	if err != nil {
		return Claim{}, err
	}
	if p.Claimed {
		return Claim{}, apperr.Conflict("place is already claimed")
	}

	var pending bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM place_claims WHERE place_id=$1 AND user_id=$2 AND status='pending'
		)
	`, placeID, userID).Scan(&pending)
	if err != nil {
		return Claim{}, err
	}
	if pending {
		return Claim{}, apperr.Conflict("you already have a pending claim on this place")
	}

	claim := Claim{
		ID:       uuid.NewString(),
		PlaceID:  placeID,
		UserID:   userID,
		Evidence: evidence,
		Status:   ClaimPending,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO place_claims (id, place_id, user_id, evidence, status)
		VALUES ($1,$2,$3,$4,'pending')
		RETURNING created_at
	`, claim.ID, claim.PlaceID, claim.UserID, claim.Evidence)
	if err := row.Scan(&claim.CreatedAt); err != nil {
		return Claim{}, err
	}
	return claim, nil
}

// ResolveClaim approves or rejects a pending claim. Approval transfers
// ownership and marks the place claimed and verified, in the same
// transaction as the claim update.
func (s *Service) ResolveClaim(ctx context.Context, claimID, reviewerID string, approve bool) error {
	var claim Claim
	err := s.db.QueryRow(ctx, `
		SELECT id, place_id, user_id, status FROM place_claims WHERE id=$1
	`, claimID).Scan(&claim.ID, &claim.PlaceID, &claim.UserID, &claim.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("claim not found")
		}
		return err
	}
	if claim.Status != ClaimPending {
		return apperr.Conflict("claim is already resolved")
	}

	status := ClaimRejected
	if approve {
		status = ClaimApproved
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE place_claims SET status=$2, reviewer_id=$3, reviewed_at=now()
		WHERE id=$1
	`, claimID, status, reviewerID); err != nil {
		return err
	}

	if approve {
		if _, err := tx.Exec(ctx, `
			UPDATE places SET claimed=true, type='verified', owner_id=$2
			WHERE id=$1
		`, claim.PlaceID, claim.UserID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Service) ListClaims(ctx context.Context, status string) ([]Claim, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, place_id, user_id, evidence, status, COALESCE(reviewer_id,''), reviewed_at, created_at
		FROM place_claims
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.ID, &c.PlaceID, &c.UserID, &c.Evidence, &c.Status, &c.ReviewerID, &c.ReviewedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}
