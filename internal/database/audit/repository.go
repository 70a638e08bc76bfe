// Package audit stores and queries the library audit trail.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/entities"
)

const defaultPageSize = 50

// Filter narrows an event listing. Zero values match everything.
type Filter struct {
	UserID    uint
	EventType entities.AuditEventType
	Since     time.Time
	Limit     int
	Offset    int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// ListEvents returns a page of events matching the filter, newest first,
// together with the total number of matches.
func (r *Repository) ListEvents(f Filter) ([]entities.AuditEvent, int64, error) {
	query := r.db.Model(&entities.AuditEvent{})
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if !f.Since.IsZero() {
		query = query.Where("created_at > ?", f.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var events []entities.AuditEvent
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// HasEvent reports whether an event of the given type and action was already
// recorded for the entity.
func (r *Repository) HasEvent(eventType entities.AuditEventType, action string, entityID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.AuditEvent{}).
		Where("event_type = ? AND action = ? AND entity_id = ?", eventType, action, entityID).
		Count(&count).Error
	return count > 0, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
