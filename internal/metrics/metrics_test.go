package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder(t *testing.T) {
	r := New()
	app := fiber.New()
	app.Get("/metrics", r.Handler())

	r.MovementRecorded(models.LedgerStockIn, 10)
	r.MovementRecorded(models.LedgerStockIn, 5)
	r.MovementRecorded(models.LedgerLoan, 2)
	r.MovementRejected("issue", "insufficient_stock")

	body := scrape(t, app)
	assert.Contains(t, body, `erp_stock_movements_total{type="STOCK_IN"} 2`)
	assert.Contains(t, body, `erp_stock_moved_units_total{type="STOCK_IN"} 15`)
	assert.Contains(t, body, `erp_stock_moved_units_total{type="LOAN"} 2`)
	assert.Contains(t, body, `erp_stock_movements_rejected_total{operation="issue",reason="insufficient_stock"} 1`)
}

func TestHandler(t *testing.T) {
	r := New()
	app := fiber.New()
	app.Use(r.Middleware())
	app.Get("/metrics", r.Handler())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	r.MovementRecorded(models.LedgerStockOut, 3)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/abc", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	body := scrape(t, app)
	assert.Contains(t, body, `erp_stock_movements_total{type="STOCK_OUT"} 1`)
	assert.Contains(t, body, `route="/items/:id"`)
}
