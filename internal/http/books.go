package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/entities"
)

// BooksController lists the books that can be borrowed.
type BooksController struct {
	catalog Catalog
}

func NewBooksController(catalog Catalog) *BooksController {
	return &BooksController{catalog: catalog}
}

// BooksPage handles GET /books with an optional ?category= filter.
func (bc *BooksController) BooksPage(c *gin.Context) {
	bc.renderBooks(c, c.Query("category"))
}

// CategoryPage handles GET /books/category/:category.
func (bc *BooksController) CategoryPage(c *gin.Context) {
	bc.renderBooks(c, c.Param("category"))
}

func (bc *BooksController) renderBooks(c *gin.Context, rawCategory string) {
	ctx := c.Request.Context()
	category := entities.Category(strings.ToUpper(strings.TrimSpace(rawCategory)))

	books, err := bc.catalog.AvailableBooks(ctx, category)
	if err != nil {
		respondPageError(c, err, "list available books")
		return
	}
	categories, err := bc.catalog.Categories(ctx)
	if err != nil {
		respondPageError(c, err, "list categories")
		return
	}

	render(c, http.StatusOK, "books", "Available books", gin.H{
		"Books":      books,
		"Categories": categories,
		"Category":   category,
	}, gin.H{
		"category":   category,
		"categories": categories,
		"books":      books,
		"total":      len(books),
	})
}
