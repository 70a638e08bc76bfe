package entities

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Category string

const (
	CategoryComputerScience Category = "CS"
	CategoryMath            Category = "MATH"
	CategoryPhysics         Category = "PHY"
	CategoryLiterature      Category = "LIT"
)

// ErrInvalidCopies is returned when a book's copy counters fall outside 0 <= available <= total.
var ErrInvalidCopies = errors.New("available copies must be between 0 and total")

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ISBN      string    `gorm:"uniqueIndex;size:20;not null" json:"isbn"`
	Title     string    `gorm:"index;size:255;not null" json:"title"`
	Category  Category  `gorm:"index;size:10" json:"category"`
	Authors   string    `gorm:"size:255" json:"authors"`
	Publisher string    `gorm:"size:255" json:"publisher"`
	Keywords  string    `gorm:"size:255" json:"keywords,omitempty"`
	Total     int       `gorm:"not null" json:"total"`
	Available int       `gorm:"not null" json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Book) BeforeSave(tx *gorm.DB) error {
	if b.Total < 0 || b.Available < 0 || b.Available > b.Total {
		return ErrInvalidCopies
	}
	return nil
}

// BorrowRecord links a user to a book for a borrow interval. The record is
// open while ReturnedAt is nil.
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueAt      time.Time  `gorm:"index;not null" json:"due_at"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at,omitempty"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book"`
}

func (r *BorrowRecord) IsOpen() bool {
	return r.ReturnedAt == nil
}

// IsOverdue reports whether an open record is past its due date at t.
func (r *BorrowRecord) IsOverdue(t time.Time) bool {
	return r.IsOpen() && t.After(r.DueAt)
}
