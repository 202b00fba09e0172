package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"erp-backend/internal/models"
)

type LogOptions struct {
	UserID      string
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	After       any
}

type Filter struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
}

// Store persists audit rows. Rows are append-only.
type Store interface {
	InsertAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, f Filter) ([]models.AuditLog, error)
}

type Writer struct {
	store Store
}

func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

func (w *Writer) WriteLog(ctx context.Context, opts LogOptions) error {
	// jsonb needs "null", not an empty string
	afterStr := "null"
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		AfterData:   afterStr,
	}

	if err := w.store.InsertAuditLog(ctx, &log); err != nil {
		return fmt.Errorf("audit log not saved: %w", err)
	}
	return nil
}
