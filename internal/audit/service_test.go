package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/classlib/internal/database/audit"
	"github.com/mrlokans/classlib/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventSeed,
		Action:    "seed",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "seed", saved.Action)
}

func TestService_LogBorrow_CarriesRequestInfo(t *testing.T) {
	svc, db := setupTestService(t)

	ctx := WithRequestInfo(context.Background(), RequestInfo{
		RequestID: "req-1",
		IPAddress: "10.0.0.1",
		UserAgent: strings.Repeat("a", 600),
	})

	t.Run("success", func(t *testing.T) {
		svc.LogBorrow(ctx, 3, 9, nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ? AND status = ?", "borrow_book", entities.AuditStatusSuccess).First(&event).Error)
		assert.Equal(t, uint(3), event.UserID)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, uint(9), *event.EntityID)
		assert.Equal(t, "req-1", event.RequestID)
		assert.Equal(t, "10.0.0.1", event.IPAddress)
		assert.Len(t, event.UserAgent, 500)
	})

	t.Run("failure", func(t *testing.T) {
		svc.LogBorrow(ctx, 3, 9, errors.New("no copies available"))
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ? AND status = ?", "borrow_book", entities.AuditStatusFailed).First(&event).Error)
		assert.Equal(t, "no copies available", event.ErrorMsg)
	})
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(context.Background(), 1, "login", false)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventAuth).First(&event).Error)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
}

func TestService_Overdue(t *testing.T) {
	svc, _ := setupTestService(t)
	now := time.Now()

	record := &entities.BorrowRecord{
		ID:     42,
		UserID: 5,
		DueAt:  now.Add(-3 * 24 * time.Hour),
		Book:   entities.Book{Title: "Linear Algebra"},
	}

	noticed, err := svc.OverdueNoticed(record.ID)
	require.NoError(t, err)
	assert.False(t, noticed)

	require.NoError(t, svc.LogOverdue(record, now))

	noticed, err = svc.OverdueNoticed(record.ID)
	require.NoError(t, err)
	assert.True(t, noticed)

	events, _, err := svc.ListEvents(auditRepo.Filter{EventType: entities.AuditEventOverdue})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Description, "3 days overdue")
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{EventType: entities.AuditEventAuth, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}))
	require.NoError(t, svc.Log(&entities.AuditEvent{EventType: entities.AuditEventAuth}))

	deleted, err := svc.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
