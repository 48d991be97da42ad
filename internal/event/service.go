package event

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"backend-ping/internal/db"
	"backend-ping/internal/notification"
	"backend-ping/internal/shared/apperr"
	"backend-ping/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Notifier delivers event invitations. Satisfied by *notification.Service;
// nil disables notifications.
type Notifier interface {
	Notify(ctx context.Context, recipientID, kind, message string) error
}

type Service struct {
	db       db.Querier
	notifier Notifier
}

func NewService(db db.Querier, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

func (s *Service) CreateEvent(ctx context.Context, creatorID string, input Event) (Event, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Event{}, apperr.InvalidArgument("event name is required")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return Event{}, apperr.InvalidArgument("coordinates out of range")
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return Event{}, apperr.InvalidArgument("start and end times are required")
	}
	if !input.EndTime.After(input.StartTime) {
		return Event{}, apperr.InvalidArgument("event must end after it starts")
	}

	input.ID = uuid.NewString()
	input.CreatorID = creatorID

	row := s.db.QueryRow(ctx, `
		INSERT INTO events (id, creator_id, place_id, name, description, lat, lng, start_time, end_time, is_public)
		VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, input.ID, input.CreatorID, input.PlaceID, input.Name, input.Description, input.Lat, input.Lng,
		input.StartTime, input.EndTime, input.IsPublic)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Event{}, err
	}

	// The creator attends their own event.
	if _, err := s.db.Exec(ctx, `
		INSERT INTO event_attendees (event_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, input.ID, creatorID); err != nil {
		return Event{}, err
	}

	input.Status = input.ComputeStatus(time.Now().UTC())
	return input, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, creator_id, COALESCE(place_id,''), name, COALESCE(description,''), lat, lng,
		       start_time, end_time, is_public, created_at
		FROM events WHERE id=$1
	`, id)
	var e Event
	err := row.Scan(&e.ID, &e.CreatorID, &e.PlaceID, &e.Name, &e.Description, &e.Lat, &e.Lng,
		&e.StartTime, &e.EndTime, &e.IsPublic, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, apperr.NotFound("event not found")
		}
		return Event{}, err
	}
	e.Status = e.ComputeStatus(time.Now().UTC())
	return e, nil
}

func (s *Service) MyEvents(ctx context.Context, userID string) ([]Event, error) {
	return s.listEvents(ctx, `
		SELECT id, creator_id, COALESCE(place_id,''), name, COALESCE(description,''), lat, lng,
		       start_time, end_time, is_public, created_at
		FROM events WHERE creator_id=$1
		ORDER BY start_time
	`, userID)
}

func (s *Service) AttendingEvents(ctx context.Context, userID string) ([]Event, error) {
	return s.listEvents(ctx, `
		SELECT e.id, e.creator_id, COALESCE(e.place_id,''), e.name, COALESCE(e.description,''), e.lat, e.lng,
		       e.start_time, e.end_time, e.is_public, e.created_at
		FROM events e
		JOIN event_attendees ea ON ea.event_id = e.id
		WHERE ea.user_id=$1
		ORDER BY e.start_time
	`, userID)
}

// PublicEvents finds public events within radiusKm of the center. The SQL
// bounding box is a superset pre-filter; the haversine distance computed
// here is the authoritative cutoff.
func (s *Service) PublicEvents(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyEvent, error) {
	if radiusKm <= 0 {
		return nil, apperr.InvalidArgument("radius must be positive")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.InvalidArgument("coordinates out of range")
	}
	if math.Abs(lat) > 85 {
		return nil, apperr.InvalidArgument("latitude too close to a pole")
	}

	box := geo.BoxAround(lat, lng, radiusKm)
	events, err := s.listEvents(ctx, `
		SELECT id, creator_id, COALESCE(place_id,''), name, COALESCE(description,''), lat, lng,
		       start_time, end_time, is_public, created_at
		FROM events
		WHERE is_public=true
		  AND end_time > now()
		  AND lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
	`, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if err != nil {
		return nil, err
	}

	results := []NearbyEvent{}
	for _, e := range events {
		d := geo.HaversineKm(lat, lng, e.Lat, e.Lng)
		if d > radiusKm {
			continue
		}
		results = append(results, NearbyEvent{Event: e, DistanceKm: d})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results, nil
}

// DeleteEvent removes the event and everything hanging off it. Only the
// creator may delete.
func (s *Service) DeleteEvent(ctx context.Context, id, callerID string) error {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if e.CreatorID != callerID {
		return apperr.Unauthorized("only the creator can delete this event")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, q := range []string{
		`DELETE FROM event_comments WHERE event_id=$1`,
		`DELETE FROM event_invites WHERE event_id=$1`,
		`DELETE FROM event_attendees WHERE event_id=$1`,
		`DELETE FROM events WHERE id=$1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Join is idempotent; attending twice is not an error.
func (s *Service) Join(ctx context.Context, eventID, userID string) error {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if e.Status == StatusEnded {
		return apperr.InvalidArgument("event has already ended")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO event_attendees (event_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, eventID, userID)
	return err
}

func (s *Service) Leave(ctx context.Context, eventID, userID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM event_attendees WHERE event_id=$1 AND user_id=$2
	`, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("you are not attending this event")
	}
	return nil
}

func (s *Service) AddComment(ctx context.Context, eventID, userID, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, apperr.InvalidArgument("comment content is required")
	}
	if len(content) > maxCommentLength {
		return Comment{}, apperr.InvalidArgument("comment must be at most 500 characters")
	}
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return Comment{}, err
	}

	comment := Comment{
		ID:      uuid.NewString(),
		EventID: eventID,
		UserID:  userID,
		Content: content,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO event_comments (id, event_id, user_id, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, comment.ID, comment.EventID, comment.UserID, comment.Content)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, eventID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.event_id, c.user_id, u.username, c.content, c.created_at
		FROM event_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.event_id=$1
		ORDER BY c.created_at
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// InviteFriend records the invitation and notifies the friend. Only accepted
// friends of the inviter may be invited.
func (s *Service) InviteFriend(ctx context.Context, eventID, inviterID, friendID string) error {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	var isFriend bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE user_id=$1 AND friend_id=$2 AND status='accepted'
		)
	`, inviterID, friendID).Scan(&isFriend)
	if err != nil {
		return err
	}
	if !isFriend {
		return apperr.InvalidArgument("you can only invite your friends")
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO event_invites (event_id, inviter_id, invitee_id)
		VALUES ($1,$2,$3)
		ON CONFLICT DO NOTHING
	`, eventID, inviterID, friendID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("friend is already invited")
	}

	if s.notifier != nil {
		msg := "you were invited to " + e.Name
		if err := s.notifier.Notify(ctx, friendID, notification.KindEventInvite, msg); err != nil {
			log.Printf("event invite notification: %v", err)
		}
	}
	return nil
}

// FriendInviteStatuses lists the caller's friends with each one's standing
// on the event: attending beats invited, which beats none.
func (s *Service) FriendInviteStatuses(ctx context.Context, eventID, userID string) ([]FriendInvite, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username,
		       EXISTS (SELECT 1 FROM event_invites i WHERE i.event_id=$2 AND i.invitee_id=u.id),
		       EXISTS (SELECT 1 FROM event_attendees a WHERE a.event_id=$2 AND a.user_id=u.id)
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id=$1 AND f.status='accepted'
		ORDER BY u.username
	`, userID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []FriendInvite{}
	for rows.Next() {
		var inv FriendInvite
		var invited, attending bool
		if err := rows.Scan(&inv.UserID, &inv.Username, &invited, &attending); err != nil {
			return nil, err
		}
		switch {
		case attending:
			inv.Status = InviteAttending
		case invited:
			inv.Status = InviteInvited
		default:
			inv.Status = InviteNone
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (s *Service) listEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var events []Event
	for rows.Next() {
		var e Event
		err := rows.Scan(&e.ID, &e.CreatorID, &e.PlaceID, &e.Name, &e.Description, &e.Lat, &e.Lng,
			&e.StartTime, &e.EndTime, &e.IsPublic, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.Status = e.ComputeStatus(now)
		events = append(events, e)
	}
	return events, rows.Err()
}
