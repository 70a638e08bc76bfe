package books

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/classlib/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "books.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func createBook(t *testing.T, repo *Repository, isbn string, category entities.Category, total, available int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		ISBN:      isbn,
		Title:     "Book " + isbn,
		Category:  category,
		Total:     total,
		Available: available,
	}
	require.NoError(t, repo.CreateBook(book))
	return book
}

func TestRepository_CreateBook_RejectsInvalidCounters(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.CreateBook(&entities.Book{ISBN: "1", Title: "Broken", Total: 1, Available: 2})
	assert.ErrorIs(t, err, entities.ErrInvalidCopies)
}

func TestRepository_ListAvailable(t *testing.T) {
	repo := setupTestDB(t)
	createBook(t, repo, "1", entities.CategoryMath, 3, 3)
	createBook(t, repo, "2", entities.CategoryMath, 2, 0)
	createBook(t, repo, "3", entities.CategoryPhysics, 1, 1)

	all, err := repo.ListAvailable("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	math, err := repo.ListAvailable(entities.CategoryMath)
	require.NoError(t, err)
	require.Len(t, math, 1)
	assert.Equal(t, "1", math[0].ISBN)
}

func TestRepository_Categories(t *testing.T) {
	repo := setupTestDB(t)
	createBook(t, repo, "1", entities.CategoryMath, 1, 1)
	createBook(t, repo, "2", entities.CategoryMath, 1, 1)
	createBook(t, repo, "3", entities.CategoryComputerScience, 1, 0)

	categories, err := repo.Categories()
	require.NoError(t, err)
	assert.Equal(t, []entities.Category{entities.CategoryComputerScience, entities.CategoryMath}, categories)
}

func TestRepository_TakeCopy(t *testing.T) {
	repo := setupTestDB(t)
	book := createBook(t, repo, "1", entities.CategoryMath, 2, 1)

	require.NoError(t, repo.TakeCopy(book.ID))
	assert.ErrorIs(t, repo.TakeCopy(book.ID), ErrNoCopies)

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)
}

func TestRepository_PutBackCopy(t *testing.T) {
	repo := setupTestDB(t)
	book := createBook(t, repo, "1", entities.CategoryMath, 2, 1)

	require.NoError(t, repo.PutBackCopy(book.ID))
	assert.ErrorIs(t, repo.PutBackCopy(book.ID), ErrAllCopiesPresent)

	got, err := repo.GetBookByISBN("1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Available)
}
