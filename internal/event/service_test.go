package event

import (
	"context"
	"strings"
	"testing"
	"time"

	"backend-ping/internal/notification"
	"backend-ping/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

type fakeNotifier struct {
	recipients []string
	kinds      []string
}

func (n *fakeNotifier) Notify(_ context.Context, recipientID, kind, _ string) error {
	n.recipients = append(n.recipients, recipientID)
	n.kinds = append(n.kinds, kind)
	return nil
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func expectGetEvent(mock pgxmock.PgxPoolIface, id, creatorID string, start, end time.Time) {
	mock.ExpectQuery(`SELECT id, creator_id, COALESCE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "creator_id", "place_id", "name", "description", "lat", "lng",
			"start_time", "end_time", "is_public", "created_at",
		}).AddRow(id, creatorID, "", "Picnic", "", 40.0, -74.0, start, end, true, time.Now()))
}

func TestCreateEvent(t *testing.T) {
	mock := newMock(t)
	start := time.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(pgxmock.AnyArg(), "user-a", "", "Picnic", "bring food", 40.7128, -74.0060,
			start, end, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO event_attendees`).
		WithArgs(pgxmock.AnyArg(), "user-a").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock, nil)
	created, err := svc.CreateEvent(context.Background(), "user-a", Event{
		Name: "  Picnic ", Description: "bring food", Lat: 40.7128, Lng: -74.0060,
		StartTime: start, EndTime: end, IsPublic: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Name != "Picnic" || created.CreatorID != "user-a" {
		t.Fatalf("unexpected event: %+v", created)
	}
	if created.Status != StatusUpcoming {
		t.Fatalf("status = %q, want upcoming", created.Status)
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc := NewService(newMock(t), nil)
	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	cases := []Event{
		{Name: "  ", StartTime: start, EndTime: end},
		{Name: "ok", Lat: 91, StartTime: start, EndTime: end},
		{Name: "ok", Lng: -181, StartTime: start, EndTime: end},
		{Name: "ok"},
		{Name: "ok", StartTime: end, EndTime: start},
	}
	for _, input := range cases {
		if _, err := svc.CreateEvent(context.Background(), "user-a", input); apperr.KindOf(err) != apperr.KindInvalidArgument {
			t.Fatalf("input %+v: expected invalid argument, got %v", input, err)
		}
	}
}

func TestComputeStatus(t *testing.T) {
	now := time.Now()
	e := Event{StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)}

	if got := e.ComputeStatus(now); got != StatusUpcoming {
		t.Fatalf("before start: %q", got)
	}
	if got := e.ComputeStatus(now.Add(90 * time.Minute)); got != StatusOngoing {
		t.Fatalf("inside window: %q", got)
	}
	if got := e.ComputeStatus(now.Add(3 * time.Hour)); got != StatusEnded {
		t.Fatalf("after end: %q", got)
	}
}

func TestGetEventNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, creator_id, COALESCE`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock, nil)
	if _, err := svc.GetEvent(context.Background(), "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteEventCreatorOnly(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-b", time.Now(), time.Now().Add(time.Hour))

	svc := NewService(mock, nil)
	err := svc.DeleteEvent(context.Background(), "event-1", "user-a")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestDeleteEventRemovesAttachments(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-a", time.Now(), time.Now().Add(time.Hour))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM event_comments`).
		WithArgs("event-1").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM event_invites`).
		WithArgs("event-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM event_attendees`).
		WithArgs("event-1").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM events`).
		WithArgs("event-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	svc := NewService(mock, nil)
	if err := svc.DeleteEvent(context.Background(), "event-1", "user-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJoinEvent(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-b", time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	mock.ExpectExec(`INSERT INTO event_attendees`).
		WithArgs("event-1", "user-a").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock, nil)
	if err := svc.Join(context.Background(), "event-1", "user-a"); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func TestJoinEndedEvent(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-b", time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))

	svc := NewService(mock, nil)
	err := svc.Join(context.Background(), "event-1", "user-a")
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestLeaveNotAttending(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM event_attendees`).
		WithArgs("event-1", "user-a").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	svc := NewService(mock, nil)
	err := svc.Leave(context.Background(), "event-1", "user-a")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddCommentValidation(t *testing.T) {
	svc := NewService(newMock(t), nil)

	if _, err := svc.AddComment(context.Background(), "event-1", "user-a", "   "); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("empty content: expected invalid argument, got %v", err)
	}
	long := strings.Repeat("x", maxCommentLength+1)
	if _, err := svc.AddComment(context.Background(), "event-1", "user-a", long); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("long content: expected invalid argument, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-b", time.Now(), time.Now().Add(time.Hour))
	mock.ExpectQuery(`INSERT INTO event_comments`).
		WithArgs(pgxmock.AnyArg(), "event-1", "user-a", "see you there").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	svc := NewService(mock, nil)
	comment, err := svc.AddComment(context.Background(), "event-1", "user-a", " see you there ")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if comment.Content != "see you there" || comment.EventID != "event-1" {
		t.Fatalf("unexpected comment: %+v", comment)
	}
}

func TestInviteFriendRequiresFriendship(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-a", time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-a", "user-b").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	svc := NewService(mock, nil)
	err := svc.InviteFriend(context.Background(), "event-1", "user-a", "user-b")
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestInviteFriendNotifies(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-a", time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-a", "user-b").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`INSERT INTO event_invites`).
		WithArgs("event-1", "user-a", "user-b").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	notifier := &fakeNotifier{}
	svc := NewService(mock, notifier)
	if err := svc.InviteFriend(context.Background(), "event-1", "user-a", "user-b"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if len(notifier.recipients) != 1 || notifier.recipients[0] != "user-b" || notifier.kinds[0] != notification.KindEventInvite {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}
}

func TestInviteFriendTwice(t *testing.T) {
	mock := newMock(t)
	expectGetEvent(mock, "event-1", "user-a", time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-a", "user-b").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`INSERT INTO event_invites`).
		WithArgs("event-1", "user-a", "user-b").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	notifier := &fakeNotifier{}
	svc := NewService(mock, notifier)
	err := svc.InviteFriend(context.Background(), "event-1", "user-a", "user-b")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(notifier.recipients) != 0 {
		t.Fatalf("duplicate invite must not notify")
	}
}

func TestFriendInviteStatuses(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT u.id, u.username`).
		WithArgs("user-a", "event-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "invited", "attending"}).
			AddRow("user-b", "bob", false, true).
			AddRow("user-c", "carol", true, false).
			AddRow("user-d", "dave", false, false))

	svc := NewService(mock, nil)
	invites, err := svc.FriendInviteStatuses(context.Background(), "event-1", "user-a")
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	want := []string{InviteAttending, InviteInvited, InviteNone}
	if len(invites) != 3 {
		t.Fatalf("expected 3 friends, got %d", len(invites))
	}
	for i, inv := range invites {
		if inv.Status != want[i] {
			t.Fatalf("friend %s: status %q, want %q", inv.Username, inv.Status, want[i])
		}
	}
}

func TestPublicEventsRadiusCutoff(t *testing.T) {
	mock := newMock(t)
	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	// Both rows survive the bounding box; only the close one survives the
	// haversine cutoff.
	mock.ExpectQuery(`SELECT id, creator_id, COALESCE`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "creator_id", "place_id", "name", "description", "lat", "lng",
			"start_time", "end_time", "is_public", "created_at",
		}).
			AddRow("event-near", "user-b", "", "Near", "", 40.7130, -74.0060, start, end, true, time.Now()).
			AddRow("event-far", "user-c", "", "Far", "", 40.7500, -74.0060, start, end, true, time.Now()))

	svc := NewService(mock, nil)
	events, err := svc.PublicEvents(context.Background(), 40.7128, -74.0060, 1)
	if err != nil {
		t.Fatalf("public events: %v", err)
	}
	if len(events) != 1 || events[0].ID != "event-near" {
		t.Fatalf("unexpected results: %+v", events)
	}
	if events[0].DistanceKm <= 0 {
		t.Fatalf("distance not computed: %+v", events[0])
	}
}

func TestPublicEventsValidation(t *testing.T) {
	svc := NewService(newMock(t), nil)

	if _, err := svc.PublicEvents(context.Background(), 40, -74, 0); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("zero radius: expected invalid argument, got %v", err)
	}
	if _, err := svc.PublicEvents(context.Background(), 89, -74, 5); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("near-polar center: expected invalid argument, got %v", err)
	}
}
