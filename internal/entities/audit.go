package entities

import "time"

type AuditEventType string

const (
	AuditEventBorrow  AuditEventType = "borrow"
	AuditEventReturn  AuditEventType = "return"
	AuditEventOverdue AuditEventType = "overdue"
	AuditEventClass   AuditEventType = "class"
	AuditEventProfile AuditEventType = "profile"
	AuditEventAuth    AuditEventType = "auth"
	AuditEventSeed    AuditEventType = "seed"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "borrow_book", "class_add"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "book", "borrow_record", "class"
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	RequestID   string         `gorm:"size:36" json:"request_id,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
