package tag

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

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
	app := fiber.New()
	RegisterRoutes(app, NewService(mock), fakeAuth("user-a"), admin)
	return app, mock
}

func TestHandlerSearchTags(t *testing.T) {
	app, mock := newTestApp(t, denyAdmin())

	mock.ExpectQuery(`SELECT id, name, is_approved, is_banned`).
		WithArgs("scen", 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "is_approved", "is_banned"}).
			AddRow("tag-1", "scenic", true, false))

	resp, err := app.Test(httptest.NewRequest("GET", "/tags/search?q=scen", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var tags []Tag
	if err := json.Unmarshal(body, &tags); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "scenic" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
}

func TestHandlerSearchTagsMissingQuery(t *testing.T) {
	app, _ := newTestApp(t, denyAdmin())

	resp, err := app.Test(httptest.NewRequest("GET", "/tags/search", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandlerMergeRequiresAdmin(t *testing.T) {
	app, _ := newTestApp(t, denyAdmin())

	resp, err := app.Test(httptest.NewRequest("POST", "/tags/tag-1/merge/tag-2", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestHandlerMergeTags(t *testing.T) {
	app, mock := newTestApp(t, allowAdmin())

	mock.ExpectQuery(`SELECT`).
		WithArgs("tag-src", "tag-dst").
		WillReturnRows(pgxmock.NewRows([]string{"source", "target"}).AddRow(true, true))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM review_tags`).
		WithArgs("tag-src", "tag-dst").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`UPDATE review_tags SET tag_id`).
		WithArgs("tag-src", "tag-dst").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(`DELETE FROM tags`).
		WithArgs("tag-src").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest("POST", "/tags/tag-dst/merge/tag-src", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHandlerApproveTagNotFound(t *testing.T) {
	app, mock := newTestApp(t, allowAdmin())

	mock.ExpectExec(`UPDATE tags SET is_approved`).
		WithArgs("tag-missing", true, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	resp, err := app.Test(httptest.NewRequest("POST", "/tags/tag-missing/approve", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
