package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"erp-backend/internal/admin"
	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/database/memory"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func post(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/admin/users", &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreateAndListUsers(t *testing.T) {
	store := memory.New()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, "admin-1")
		c.Locals(auth.CtxUserNameKey, "Admin")
		return c.Next()
	})
	app.Post("/admin/users", admin.CreateUserHandler(store, audit.NewWriter(store), zap.NewNop()))
	app.Get("/admin/users", admin.ListUsersHandler(store))

	resp := post(t, app, map[string]string{"name": "Mehmet", "email": "mehmet@example.com", "password": "warehouse1"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post(t, app, map[string]string{"name": "Mehmet", "email": "mehmet@example.com", "password": "warehouse1"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post(t, app, map[string]string{"name": "X", "email": "x@example.com", "password": "warehouse1", "role": "owner"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/users", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var users []auth.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleStaff, users[0].Role)

	logs, err := store.ListAuditLogs(context.Background(), audit.Filter{EntityType: "user"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin-1", logs[0].UserID)
	assert.Equal(t, users[0].ID, logs[0].EntityID)
}
