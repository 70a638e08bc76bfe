// Package borrows provides database operations for borrow records.
//
// A record is open while returned_at IS NULL.
//
// # Usage
//
//	repo := borrows.NewRepository(db)
//	open, err := repo.ListOpenForUser(userID)
package borrows

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/entities"
)

// Repository handles all borrow record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrows repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new borrow record.
func (r *Repository) Create(record *entities.BorrowRecord) error {
	return r.db.Create(record).Error
}

// GetByID retrieves a borrow record with its book.
func (r *Repository) GetByID(id uint) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord
	err := r.db.Preload("Book").First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// HasOpen reports whether the user holds an unreturned copy of the book.
func (r *Repository) HasOpen(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// CountOpen returns how many unreturned records the user holds.
func (r *Repository) CountOpen(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("user_id = ? AND returned_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// CountOpenForBook returns how many copies of a book are currently lent out.
func (r *Repository) CountOpenForBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&count).Error
	return count, err
}

// ListOpenForUser returns unreturned records, soonest due first.
func (r *Repository) ListOpenForUser(userID uint) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("user_id = ? AND returned_at IS NULL", userID).
		Order("due_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

// ListHistoryForUser returns every record of the user, most recent first.
func (r *Repository) ListHistoryForUser(userID uint) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("borrowed_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

// MarkReturned closes an open record. It returns false when the record was
// already closed.
func (r *Repository) MarkReturned(id uint, at time.Time) (bool, error) {
	result := r.db.Model(&entities.BorrowRecord{}).
		Where("id = ? AND returned_at IS NULL", id).
		UpdateColumn("returned_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListOverdue returns open records whose due date is before now.
func (r *Repository) ListOverdue(now time.Time) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").Preload("User").
		Where("returned_at IS NULL AND due_at < ?", now).
		Order("due_at ASC").
		Find(&records).Error
	return records, err
}
