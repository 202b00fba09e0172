package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"erp-backend/internal/audit"
	"erp-backend/internal/database/memory"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) InsertAuditLog(context.Context, *models.AuditLog) error {
	return errors.New("db down")
}

func (failingStore) ListAuditLogs(context.Context, audit.Filter) ([]models.AuditLog, error) {
	return nil, errors.New("db down")
}

func TestWriterAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := audit.NewWriter(store)

	require.NoError(t, w.WriteLog(ctx, audit.LogOptions{
		UserID: "u-1", EntityType: "loan", EntityID: "l-1",
		Action: models.AuditActionCreate, After: map[string]int{"quantity": 3},
	}))
	require.NoError(t, w.WriteLog(ctx, audit.LogOptions{
		UserID: "u-2", EntityType: "inventory_item", EntityID: "i-1",
		Action: models.AuditActionDelete,
	}))

	app := fiber.New()
	app.Get("/audit-logs", audit.ListAuditLogsHandler(store))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs?entity_type=loan", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var logs []audit.AuditLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "l-1", logs[0].EntityID)
	assert.JSONEq(t, `{"quantity":3}`, string(logs[0].After))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs?limit=-1", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWriterWrapsStoreError(t *testing.T) {
	err := audit.NewWriter(failingStore{}).WriteLog(context.Background(), audit.LogOptions{EntityType: "loan"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
