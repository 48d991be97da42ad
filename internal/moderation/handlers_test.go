package moderation

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

func denyAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}
}

func allowAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error { return c.Next() }
}

func newTestApp(t *testing.T, admin fiber.Handler) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := newMock(t)
	_, store := newStore(t)
	app := fiber.New()
	RegisterRoutes(app, NewService(mock, store, 3, 10), fakeAuth("user-a"), admin)
	return app, mock
}

func TestHandlerReportUser(t *testing.T) {
	app, mock := newTestApp(t, denyAdmin())

	mock.ExpectQuery(`INSERT INTO user_reports`).
		WithArgs(pgxmock.AnyArg(), "user-a", "user-b", "spam profile").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("user-b").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	req := httptest.NewRequest("POST", "/reports",
		bytes.NewReader([]byte(`{"target_id":"user-b","reason":"spam profile"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TargetID != "user-b" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestHandlerBanUserRequiresAdmin(t *testing.T) {
	app, _ := newTestApp(t, denyAdmin())

	req := httptest.NewRequest("POST", "/moderation/users/user-b/ban",
		bytes.NewReader([]byte(`{"reason":"abuse"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestHandlerBanUser(t *testing.T) {
	app, mock := newTestApp(t, allowAdmin())

	expectUserLookup(mock, "user-b", false, 0, "")
	mock.ExpectExec(`UPDATE users SET is_banned=true`).
		WithArgs("user-b", "abuse").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	req := httptest.NewRequest("POST", "/moderation/users/user-b/ban",
		bytes.NewReader([]byte(`{"reason":"abuse"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHandlerBannedUsers(t *testing.T) {
	app, mock := newTestApp(t, allowAdmin())

	mock.ExpectQuery(`SELECT id, username`).
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "ban_reason", "ban_count"}).
			AddRow("user-b", "bob", "abuse", 2))

	resp, err := app.Test(httptest.NewRequest("GET", "/moderation/banned-users", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var users []BannedUser
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("unexpected users: %+v", users)
	}
}
