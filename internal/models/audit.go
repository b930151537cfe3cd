package models

import (
	"time"
)

// AuditLog records who changed a contract's lifecycle or a branch's templates
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   uint      `gorm:"not null;index" json:"actor_id"`
	Action    string    `gorm:"size:50;not null" json:"action"` // SUBMIT, APPROVE, EXPIRE, UPDATE_TEMPLATES, ...
	Entity    string    `gorm:"size:50;not null" json:"entity"` // Contract, Branch
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
