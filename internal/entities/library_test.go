package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBook_BeforeSave(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		available int
		wantErr   bool
	}{
		{"all copies on shelf", 3, 3, false},
		{"none on shelf", 3, 0, false},
		{"more available than total", 3, 4, true},
		{"negative available", 3, -1, true},
		{"negative total", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Book{Total: tt.total, Available: tt.available}
			err := b.BeforeSave(nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCopies)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBorrowRecord_IsOverdue(t *testing.T) {
	now := time.Now()
	r := &BorrowRecord{BorrowedAt: now.Add(-48 * time.Hour), DueAt: now.Add(-time.Hour)}
	assert.True(t, r.IsOverdue(now))

	returned := now
	r.ReturnedAt = &returned
	assert.False(t, r.IsOverdue(now))
	assert.False(t, r.IsOpen())
}

func TestUserRole(t *testing.T) {
	assert.True(t, RoleTeacher.CanOverseeClasses())
	assert.False(t, RoleStudent.CanOverseeClasses())
	assert.True(t, RoleStudent.IsStudent())
	assert.False(t, UserRole("ADM").Valid())
	assert.Equal(t, "Teacher", RoleTeacher.Label())
}
