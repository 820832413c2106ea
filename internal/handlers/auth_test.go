package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rlaxodnjs199/natours-api/internal/models"
)

func ok(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "success"})
}

func TestProtect_MissingHeader(t *testing.T) {
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Get("/secure", Protect, ok)
	})

	status, body := doGet(t, app, "/secure")

	assert.Equal(t, 401, status)
	assert.Equal(t, "You are not logged in! Please log in to get access.", body["message"])
}

func TestProtect_NonBearerHeader(t *testing.T) {
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Get("/secure", Protect, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 401, resp.StatusCode)
}

func TestProtect_MalformedToken(t *testing.T) {
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Get("/secure", Protect, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 401, resp.StatusCode)
}

// fakeUser injects a resolved user the way Protect does, so role gating
// can be tested without a database.
func fakeUser(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localUserKey, &models.User{Name: "Test", Role: role})
		return c.Next()
	}
}

func TestRestrictTo(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		allowed    []string
		wantStatus int
	}{
		{"allowed role", "admin", []string{"admin", "lead-guide"}, 200},
		{"second allowed role", "lead-guide", []string{"admin", "lead-guide"}, 200},
		{"forbidden role", "user", []string{"admin", "lead-guide"}, 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(t, "production", func(app *fiber.App) {
				app.Get("/admin", fakeUser(tt.role), RestrictTo(tt.allowed...), ok)
			})

			status, body := doGet(t, app, "/admin")
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantStatus == 403 {
				assert.Equal(t, "You do not have permission to perform this action", body["message"])
			}
		})
	}
}

func TestRestrictTo_WithoutProtect(t *testing.T) {
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Get("/admin", RestrictTo("admin"), ok)
	})

	status, _ := doGet(t, app, "/admin")
	assert.Equal(t, 401, status)
}

func TestLogin_MissingCredentials(t *testing.T) {
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Post("/login", Login)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 400, resp.StatusCode)
}

func TestAliasTopTours(t *testing.T) {
	var captured map[string]string
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Get("/tours/top-5-cheap", AliasTopTours, func(c *fiber.Ctx) error {
			captured = c.Queries()
			return ok(c)
		})
	})

	status, _ := doGet(t, app, "/tours/top-5-cheap")
	require.Equal(t, 200, status)

	assert.Equal(t, "5", captured["limit"])
	assert.Equal(t, "-ratingsAverage,price", captured["sort"])
	assert.Equal(t, "name,price,ratingsAverage,summary,difficulty", captured["fields"])
}

func TestPasswordUpdate_ClearsResetToken(t *testing.T) {
	changedAt := time.Now().Add(-2 * time.Second)
	update := passwordUpdate("$2a$12$hash", changedAt)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "$2a$12$hash", set["password"])
	assert.Equal(t, changedAt, set["passwordChangedAt"])

	// A consumed reset token must not survive the password change,
	// otherwise the same reset link could be used twice.
	unset, ok := update["$unset"].(bson.M)
	require.True(t, ok)
	assert.Contains(t, unset, "passwordResetToken")
	assert.Contains(t, unset, "passwordResetExpires")
}

func TestCurrentUser_Unauthenticated(t *testing.T) {
	app := setupApp(t, "production", func(app *fiber.App) {
		app.Get("/whoami", func(c *fiber.Ctx) error {
			assert.Nil(t, CurrentUser(c))
			return ok(c)
		})
	})

	status, _ := doGet(t, app, "/whoami")
	assert.Equal(t, 200, status)
}
