package audit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/classlib/internal/database/audit"
	"github.com/mrlokans/classlib/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	info := RequestInfoFrom(ctx)
	event.RequestID = info.RequestID
	event.IPAddress = info.IPAddress
	event.UserAgent = truncate(info.UserAgent, 500)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogBorrow records a borrow attempt.
func (s *Service) LogBorrow(ctx context.Context, userID, bookID uint, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBorrow,
		Action:      "borrow_book",
		Description: fmt.Sprintf("Borrow book #%d", bookID),
		EntityType:  "book",
		EntityID:    &bookID,
	}
	s.LogAsync(ctx, withOutcome(event, err))
}

// LogReturn records a return attempt.
func (s *Service) LogReturn(ctx context.Context, userID, recordID uint, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReturn,
		Action:      "return_book",
		Description: fmt.Sprintf("Return borrow record #%d", recordID),
		EntityType:  "borrow_record",
		EntityID:    &recordID,
	}
	s.LogAsync(ctx, withOutcome(event, err))
}

// LogClass records a teacher linking or unlinking a class.
func (s *Service) LogClass(ctx context.Context, teacherID uint, action, classID string, err error) {
	event := &entities.AuditEvent{
		UserID:      teacherID,
		EventType:   entities.AuditEventClass,
		Action:      action,
		Description: "Class " + classID,
		EntityType:  "class",
	}
	s.LogAsync(ctx, withOutcome(event, err))
}

// LogProfile records a profile change.
func (s *Service) LogProfile(ctx context.Context, userID uint, action, description string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventProfile,
		Action:      action,
		Description: description,
		EntityType:  "user",
		EntityID:    &userID,
		Status:      entities.AuditStatusSuccess,
	}
	s.LogAsync(ctx, event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(ctx context.Context, userID uint, action string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(ctx, event)
}

// LogOverdue records an overdue notice for an open borrow record. It writes
// synchronously because it runs inside a background task.
func (s *Service) LogOverdue(record *entities.BorrowRecord, now time.Time) error {
	days := int(now.Sub(record.DueAt).Hours() / 24)
	event := &entities.AuditEvent{
		UserID:      record.UserID,
		EventType:   entities.AuditEventOverdue,
		Action:      OverdueAction,
		Description: fmt.Sprintf("%q is %d days overdue", record.Book.Title, days),
		EntityType:  "borrow_record",
		EntityID:    &record.ID,
		Status:      entities.AuditStatusSuccess,
	}
	return s.repo.LogEvent(event)
}

// OverdueNoticed reports whether an overdue notice exists for the record.
func (s *Service) OverdueNoticed(recordID uint) (bool, error) {
	return s.repo.HasEvent(entities.AuditEventOverdue, OverdueAction, recordID)
}

// OverdueAction is the action name of overdue notices.
const OverdueAction = "overdue_notice"

// ListEvents retrieves a page of audit events.
func (s *Service) ListEvents(f audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.ListEvents(f)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func withOutcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
