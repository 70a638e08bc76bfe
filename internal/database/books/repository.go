// Package books provides database operations for the library catalog.
//
// Copy counters are only changed through TakeCopy and PutBackCopy, whose
// guarded updates keep 0 <= available <= total at the SQL level.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	available, err := repo.ListAvailable(entities.CategoryMath)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/entities"
)

var (
	// ErrNoCopies is returned by TakeCopy when the book has no copy on the shelf.
	ErrNoCopies = errors.New("no copies available")
	// ErrAllCopiesPresent is returned by PutBackCopy when available already equals total.
	ErrAllCopiesPresent = errors.New("all copies already on the shelf")
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a book; the entity hook validates the copy counters.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByISBN retrieves a book by ISBN.
func (r *Repository) GetBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListAvailable returns books with at least one copy on the shelf, optionally
// restricted to one category.
func (r *Repository) ListAvailable(category entities.Category) ([]entities.Book, error) {
	var books []entities.Book
	query := r.db.Where("available > 0")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("category ASC, title ASC").Find(&books).Error
	return books, err
}

// Categories returns the distinct categories present in the catalog.
func (r *Repository) Categories() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Model(&entities.Book{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// TakeCopy decrements the available counter by one.
func (r *Repository) TakeCopy(id uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND available > 0", id).
		UpdateColumn("available", gorm.Expr("available - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoCopies
	}
	return nil
}

// PutBackCopy increments the available counter by one.
func (r *Repository) PutBackCopy(id uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND available < total", id).
		UpdateColumn("available", gorm.Expr("available + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAllCopiesPresent
	}
	return nil
}
