package activity

import (
	"context"
	"errors"
	"log"
	"strings"

	"backend-ping/internal/db"
	"backend-ping/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Classifier resolves semantic near-duplicates: given a candidate name and
// the names already attached to the place, it returns the existing name the
// candidate duplicates, or "" when it is genuinely new. Implementations may
// call an external model; errors are treated as "no duplicate".
type Classifier interface {
	FindDuplicate(ctx context.Context, newName string, existing []string) (string, error)
}

// NoopClassifier never finds a duplicate. Exact normalized-name matches are
// still caught before the classifier runs.
type NoopClassifier struct{}

func (NoopClassifier) FindDuplicate(context.Context, string, []string) (string, error) {
	return "", nil
}

type Service struct {
	db         db.Querier
	classifier Classifier
}

func NewService(db db.Querier, classifier Classifier) *Service {
	if classifier == nil {
		classifier = NoopClassifier{}
	}
	return &Service{db: db, classifier: classifier}
}

// CreateActivity enforces (place, normalized name) uniqueness. An exact
// normalized match, or a semantic duplicate reported by the classifier,
// remaps onto the existing activity instead of inserting.
func (s *Service) CreateActivity(ctx context.Context, placeID, name, kindID, notes string) (Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Activity{}, apperr.InvalidArgument("activity name is required")
	}
	if kindID != "" {
		var kindExists bool
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM activity_kinds WHERE id=$1)
		`, kindID).Scan(&kindExists)
		if err != nil {
			return Activity{}, err
		}
		if !kindExists {
			return Activity{}, apperr.NotFound("activity kind not found")
		}
	}

	existing, err := s.ListActivities(ctx, placeID)
	if err != nil {
		return Activity{}, err
	}

	normalized := strings.ToLower(name)
	names := make([]string, 0, len(existing))
	for _, a := range existing {
		if strings.ToLower(a.Name) == normalized {
			return a, nil
		}
		names = append(names, a.Name)
	}

	if len(names) > 0 {
		match, err := s.classifier.FindDuplicate(ctx, name, names)
		if err != nil {
			// Classifier trouble must not block activity creation.
			log.Printf("activity classifier error: %v", err)
		} else if match != "" {
			for _, a := range existing {
				if strings.EqualFold(a.Name, match) {
					return a, nil
				}
			}
		}
	}

	act := Activity{
		ID:      uuid.NewString(),
		PlaceID: placeID,
		Name:    name,
		KindID:  kindID,
		Notes:   notes,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (id, place_id, name, kind_id, notes)
		VALUES ($1,$2,$3,NULLIF($4,''),$5)
		RETURNING created_at
	`, act.ID, act.PlaceID, act.Name, act.KindID, act.Notes)
	if err := row.Scan(&act.CreatedAt); err != nil {
		return Activity{}, err
	}
	return act, nil
}

func (s *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, place_id, name, COALESCE(kind_id,''), COALESCE(notes,''), created_at
		FROM activities WHERE id=$1
	`, id)
	var a Activity
	if err := row.Scan(&a.ID, &a.PlaceID, &a.Name, &a.KindID, &a.Notes, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, apperr.NotFound("activity not found")
		}
		return Activity{}, err
	}
	return a, nil
}

func (s *Service) ListActivities(ctx context.Context, placeID string) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, place_id, name, COALESCE(kind_id,''), COALESCE(notes,''), created_at
		FROM activities WHERE place_id=$1
		ORDER BY created_at
	`, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.PlaceID, &a.Name, &a.KindID, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM activities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("activity not found")
	}
	return nil
}

const maxCheckinNoteLength = 500

func (s *Service) CheckIn(ctx context.Context, activityID, userID, note string) (Checkin, error) {
	note = strings.TrimSpace(note)
	if len(note) > maxCheckinNoteLength {
		return Checkin{}, apperr.InvalidArgument("note must be at most 500 characters")
	}
	if _, err := s.GetActivity(ctx, activityID); err != nil {
		return Checkin{}, err
	}

	checkin := Checkin{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		UserID:     userID,
		Note:       note,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO checkins (id, activity_id, user_id, note)
		VALUES ($1,$2,$3,NULLIF($4,''))
		RETURNING created_at
	`, checkin.ID, checkin.ActivityID, checkin.UserID, checkin.Note)
	if err := row.Scan(&checkin.CreatedAt); err != nil {
		return Checkin{}, err
	}
	return checkin, nil
}

func (s *Service) ListCheckins(ctx context.Context, activityID string) ([]Checkin, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, activity_id, user_id, COALESCE(note,''), created_at
		FROM checkins WHERE activity_id=$1
		ORDER BY created_at DESC
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkins := []Checkin{}
	for rows.Next() {
		var c Checkin
		if err := rows.Scan(&c.ID, &c.ActivityID, &c.UserID, &c.Note, &c.CreatedAt); err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

func (s *Service) CreateKind(ctx context.Context, name string) (Kind, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Kind{}, apperr.InvalidArgument("kind name is required")
	}

	var existing Kind
	err := s.db.QueryRow(ctx, `
		SELECT id, name FROM activity_kinds WHERE lower(name)=lower($1)
	`, name).Scan(&existing.ID, &existing.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Kind{}, err
	}

	kind := Kind{ID: uuid.NewString(), Name: name}
	_, err = s.db.Exec(ctx, `
		INSERT INTO activity_kinds (id, name) VALUES ($1,$2)
	`, kind.ID, kind.Name)
	if err != nil {
		return Kind{}, err
	}
	return kind, nil
}

func (s *Service) ListKinds(ctx context.Context) ([]Kind, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM activity_kinds ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []Kind
	for rows.Next() {
		var k Kind
		if err := rows.Scan(&k.ID, &k.Name); err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
