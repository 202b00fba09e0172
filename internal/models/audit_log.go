package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionReturn AuditAction = "return"
	AuditActionAdjust AuditAction = "adjust"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   string `gorm:"size:64;index" json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // denormalized

	// ex: "inventory_item", "stock_in", "stock_out", "loan", "stock_count"
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   string `gorm:"size:64;index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// snapshot after the change (JSON)
	AfterData string `gorm:"type:jsonb" json:"after_data"`
}
