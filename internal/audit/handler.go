package audit

import (
	"encoding/json"
	"strconv"

	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxListLimit = 500

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	After       json.RawMessage    `json:"after"`
}

// GET /api/audit-logs?entity_type=loan&entity_id=...&user_id=...&limit=100
func ListAuditLogsHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "100"))
		if err != nil || limit <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}

		logs, err := store.ListAuditLogs(c.UserContext(), Filter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			UserID:     c.Query("user_id"),
			Limit:      limit,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "audit logs could not be listed")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			after := json.RawMessage(log.AfterData)
			if len(after) == 0 {
				after = json.RawMessage("null")
			}
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      log.UserID,
				UserName:    log.UserName,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
				After:       after,
			})
		}
		return c.JSON(resp)
	}
}
