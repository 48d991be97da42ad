package review

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func fakeAuth(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func newTestApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface, *fakeNotifier) {
	t.Helper()
	mock := newMock(t)
	notifier := &fakeNotifier{}
	app := fiber.New()
	RegisterRoutes(app, NewService(mock, notifier), fakeAuth("user-a"))
	return app, mock, notifier
}

func TestHandlerCreateReview(t *testing.T) {
	app, mock, _ := newTestApp(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("act-1", "user-a").
		WillReturnRows(pgxmock.NewRows([]string{"activity", "reviewed"}).AddRow(true, false))
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(pgxmock.AnyArg(), "act-1", "user-a", 5, "perfect morning run").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	req := httptest.NewRequest("POST", "/activities/act-1/reviews",
		bytes.NewReader([]byte(`{"rating":5,"comment":"perfect morning run"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var created Review
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Rating != 5 || created.ActivityID != "act-1" {
		t.Fatalf("unexpected review: %+v", created)
	}
}

func TestHandlerCreateReviewBadRating(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/activities/act-1/reviews",
		bytes.NewReader([]byte(`{"rating":9}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandlerLikeReview(t *testing.T) {
	app, mock, notifier := newTestApp(t)

	expectGetReview(mock, "rev-1", "user-b")
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO review_likes`).
		WithArgs("rev-1", "user-a").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE reviews SET like_count`).
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest("POST", "/reviews/rev-1/like", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(notifier.recipients) != 1 || notifier.recipients[0] != "user-b" {
		t.Fatalf("expected author notification, got %v", notifier.recipients)
	}
}

func TestHandlerListReviews(t *testing.T) {
	app, mock, _ := newTestApp(t)

	mock.ExpectQuery(`SELECT id, activity_id, author_id`).
		WithArgs("act-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "activity_id", "author_id", "rating", "comment", "like_count", "created_at",
		}).AddRow("rev-1", "act-1", "user-b", 4, "nice", 2, time.Now()))

	resp, err := app.Test(httptest.NewRequest("GET", "/activities/act-1/reviews", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var reviews []Review
	if err := json.Unmarshal(body, &reviews); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reviews) != 1 || reviews[0].LikeCount != 2 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}
