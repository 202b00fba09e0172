package inventory_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"erp-backend/internal/auth"
	"erp-backend/internal/database/memory"
	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := inventory.NewService(memory.New())
	app := fiber.New(fiber.Config{ErrorHandler: inventory.ErrorHandler(zap.NewNop())})
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, "u-1")
		c.Locals(auth.CtxUserNameKey, "Tester")
		c.Locals(auth.CtxUserRoleKey, models.RoleAdmin)
		return c.Next()
	})
	inventory.RegisterRoutes(api, svc, func(c *fiber.Ctx) error { return c.Next() })
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHandlers_StockFlow(t *testing.T) {
	app := newTestApp(t)

	code, item := do(t, app, http.MethodPost, "/api/inventory", map[string]any{"name": "Drill", "minimum": 2})
	require.Equal(t, http.StatusCreated, code)
	id := item["id"].(string)
	assert.Equal(t, "OutOfStock", item["status"])

	code, _ = do(t, app, http.MethodPost, "/api/stock-in", map[string]any{
		"reference_number": "PO-1",
		"date":             "2025-03-01",
		"items":            []map[string]any{{"item_id": id, "quantity": 10, "unit_price": 250}},
	})
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, app, http.MethodPost, "/api/stock-out", map[string]any{
		"date":  "2025-03-02",
		"items": []map[string]any{{"item_id": id, "quantity": 11}},
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient_stock", body["code"])
	assert.Equal(t, id, body["item_id"])
	assert.EqualValues(t, 10, body["available"])

	code, body = do(t, app, http.MethodPost, "/api/loans", map[string]any{
		"inventory_id": id,
		"borrower_id":  "crew-7",
		"quantity":     4,
		"date":         "2025-03-02",
	})
	require.Equal(t, http.StatusCreated, code)
	loanID := body["id"].(string)

	code, body = do(t, app, http.MethodPost, "/api/loans/"+loanID+"/return", map[string]any{"quantity": 4, "date": "2025-03-03"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "RETURNED", body["status"])

	code, body = do(t, app, http.MethodPost, "/api/loans/"+loanID+"/return", map[string]any{"quantity": 1, "date": "2025-03-04"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_state", body["code"])

	code, body = do(t, app, http.MethodGet, "/api/inventory/"+id+"/balance", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["consistent"])
	assert.EqualValues(t, 3, body["entries"])

	code, body = do(t, app, http.MethodGet, "/api/inventory/summary", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["Available"])
}

func TestHandlers_LedgerRangeIncludesEndDate(t *testing.T) {
	app := newTestApp(t)
	_, item := do(t, app, http.MethodPost, "/api/inventory", map[string]any{"name": "Cable"})
	id := item["id"].(string)

	for i, d := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		code, _ := do(t, app, http.MethodPost, "/api/stock-in", map[string]any{
			"reference_number": "PO-" + d,
			"date":             d,
			"items":            []map[string]any{{"item_id": id, "quantity": i + 1}},
		})
		require.Equal(t, http.StatusCreated, code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/"+id+"/ledger?from=2025-03-02&to=2025-03-03", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.StockLedgerEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.Equal(t, 3, entries[1].Quantity)
}

func TestHandlers_Errors(t *testing.T) {
	app := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/api/inventory/9d3c1a52-7a51-4b8e-9c3e-5f1a2b3c4d5e", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["code"])

	code, body = do(t, app, http.MethodPost, "/api/stock-out", map[string]any{
		"date":  "2025-03-01",
		"items": []map[string]any{{"item_id": "not-a-uuid", "quantity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", body["code"])
	assert.Len(t, body["fields"], 2)

	code, body = do(t, app, http.MethodPost, "/api/stock-in", map[string]any{"reference_number": "PO-1", "date": "03/01/2025"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", body["code"])

	code, _ = do(t, app, http.MethodGet, "/api/inventory?status=Discontinued", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodGet, "/api/loans?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
