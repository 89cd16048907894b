package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hirelink/internal/config"
	"hirelink/internal/middleware"
	"hirelink/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTest(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Employer{},
		&models.Job{},
		&models.Application{},
		&models.ApplicationStatusHistory{},
		&models.Thread{},
		&models.Message{},
		&models.Attachment{},
		&models.Reaction{},
		&models.MessageTemplate{},
		&models.Notification{},
	))

	cfg := &config.Config{JWTSecret: "test-secret", Env: "test"}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	// Test auth shim: headers stand in for a verified JWT.
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-Actor"); id != "" {
			c.Locals("actorID", id)
			role := c.Get("X-Test-Role")
			if role == "" {
				role = middleware.RoleUser
			}
			c.Locals("actorRole", role)
		}
		return c.Next()
	})

	api := app.Group("/api")
	msgs := api.Group("/messages")
	msgs.Post("/send", srv.SendMessage)
	msgs.Get("/search-recipients", srv.SearchRecipients)
	threads := msgs.Group("/threads")
	threads.Get("/", srv.ListThreads)
	threads.Get("/unread-count", srv.UnreadCount)
	threads.Get("/:threadId/messages", srv.ListThreadMessages)
	threads.Post("/:threadId/read", srv.MarkThreadRead)
	threads.Post("/:threadId/archive", srv.ArchiveThread)
	threads.Get("/:threadId", srv.GetThread)

	return app, srv, db
}

func seedHandlerParties(t *testing.T, db *gorm.DB) (models.User, models.Employer) {
	t.Helper()
	user := models.User{Name: "Ana Lima", Email: "ana@example.com"}
	require.NoError(t, db.Create(&user).Error)
	employer := models.Employer{CompanyName: "Acme Corp", ContactEmail: "jobs@acme.example"}
	require.NoError(t, db.Create(&employer).Error)
	return user, employer
}

func doJSON(t *testing.T, app *fiber.App, method, path, actorID, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set("X-Test-Actor", actorID)
		req.Header.Set("X-Test-Role", role)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSendMessageOpensThreadByRecipientContact(t *testing.T) {
	t.Parallel()
	app, _, db := setupHandlerTest(t)
	user, employer := seedHandlerParties(t, db)

	resp := doJSON(t, app, fiber.MethodPost, "/api/messages/send", user.ID, middleware.RoleUser, fiber.Map{
		"recipient": employer.ContactEmail,
		"subject":   "Question about the role",
		"content":   "Hi, is the position still open?",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	threadID, _ := body["threadId"].(string)
	require.NotEmpty(t, threadID)

	var thread models.Thread
	require.NoError(t, db.First(&thread, "id = ?", threadID).Error)
	assert.Equal(t, 1, thread.UnreadByEmployer)
	assert.Equal(t, 0, thread.UnreadByUser)
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	t.Parallel()
	app, _, db := setupHandlerTest(t)
	user, _ := seedHandlerParties(t, db)

	resp := doJSON(t, app, fiber.MethodPost, "/api/messages/send", user.ID, middleware.RoleUser, fiber.Map{
		"recipient": "nobody@nowhere.example",
		"content":   "hello?",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSendMessageRequiresAuth(t *testing.T) {
	t.Parallel()
	app, _, _ := setupHandlerTest(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/messages/send", "", "", fiber.Map{
		"content": "anonymous",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestThreadReadAndUnreadCountFlow(t *testing.T) {
	t.Parallel()
	app, _, db := setupHandlerTest(t)
	user, employer := seedHandlerParties(t, db)

	// Employer opens the thread toward the user.
	resp := doJSON(t, app, fiber.MethodPost, "/api/messages/send", employer.ID, middleware.RoleEmployer, fiber.Map{
		"recipient": user.Email,
		"subject":   "Interview invite",
		"content":   "Can you come in on Monday?",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	threadID := decodeBody(t, resp)["threadId"].(string)

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/threads/unread-count", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["unread_count"])

	resp = doJSON(t, app, fiber.MethodPost, "/api/messages/threads/"+threadID+"/read", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["marked_count"])

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/threads/unread-count", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decodeBody(t, resp)["unread_count"])
}

func TestThreadAccessIsSideScoped(t *testing.T) {
	t.Parallel()
	app, _, db := setupHandlerTest(t)
	user, employer := seedHandlerParties(t, db)
	outsider := models.User{Name: "Eve", Email: "eve@example.com"}
	require.NoError(t, db.Create(&outsider).Error)

	resp := doJSON(t, app, fiber.MethodPost, "/api/messages/send", user.ID, middleware.RoleUser, fiber.Map{
		"recipient": employer.ContactEmail,
		"content":   "private",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	threadID := decodeBody(t, resp)["threadId"].(string)

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/threads/"+threadID, outsider.ID, middleware.RoleUser, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/threads/"+threadID, employer.ID, middleware.RoleEmployer, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestArchiveThreadHidesFromDefaultListing(t *testing.T) {
	t.Parallel()
	app, _, db := setupHandlerTest(t)
	user, employer := seedHandlerParties(t, db)

	resp := doJSON(t, app, fiber.MethodPost, "/api/messages/send", user.ID, middleware.RoleUser, fiber.Map{
		"recipient": employer.ContactEmail,
		"content":   "old conversation",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	threadID := decodeBody(t, resp)["threadId"].(string)

	resp = doJSON(t, app, fiber.MethodPost, "/api/messages/threads/"+threadID+"/archive", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/threads/", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decodeBody(t, resp)["count"])

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/threads/?filter=archived", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["count"])
}

func TestSearchRecipientsIsCrossSide(t *testing.T) {
	t.Parallel()
	app, _, db := setupHandlerTest(t)
	user, employer := seedHandlerParties(t, db)

	resp := doJSON(t, app, fiber.MethodGet, "/api/messages/search-recipients?q=Acme", user.ID, middleware.RoleUser, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	recipients := decodeBody(t, resp)["recipients"].([]interface{})
	require.Len(t, recipients, 1)
	first := recipients[0].(map[string]interface{})
	assert.Equal(t, employer.ID, first["id"])
	assert.Equal(t, "employer", first["kind"])

	resp = doJSON(t, app, fiber.MethodGet, "/api/messages/search-recipients?q=a", user.ID, middleware.RoleUser, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
