package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
)

// BorrowController handles borrowing, returning and the user's own records.
type BorrowController struct {
	circulation Circulation
}

func NewBorrowController(circulation Circulation) *BorrowController {
	return &BorrowController{circulation: circulation}
}

// Borrow handles POST /borrow with form field book_id.
func (bc *BorrowController) Borrow(c *gin.Context) {
	bookID, ok := parseFormID(c, "book_id")
	if !ok {
		return
	}

	record, err := bc.circulation.Borrow(c.Request.Context(), auth.GetUser(c), bookID)
	if err != nil {
		respondActionError(c, err, "borrow book", "/books")
		return
	}

	message := fmt.Sprintf("Borrowed %q, due %s", record.Book.Title, record.DueAt.Format("2006-01-02"))
	respondActionSuccess(c, http.StatusCreated, message, "/my/borrows", record)
}

// Return handles POST /return/:id.
func (bc *BorrowController) Return(c *gin.Context) {
	recordID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := bc.circulation.Return(c.Request.Context(), auth.GetUser(c), recordID)
	if err != nil {
		respondActionError(c, err, "return book", "/my/borrows")
		return
	}

	message := fmt.Sprintf("Returned %q", record.Book.Title)
	respondActionSuccess(c, http.StatusOK, message, "/my/borrows", record)
}

// MyBorrowsPage handles GET /my/borrows.
func (bc *BorrowController) MyBorrowsPage(c *gin.Context) {
	user := auth.GetUser(c)

	records, err := bc.circulation.CurrentBorrows(c.Request.Context(), user.ID)
	if err != nil {
		respondPageError(c, err, "list current borrows")
		return
	}

	quota := bc.circulation.Quota(user)
	render(c, http.StatusOK, "my_borrows", "My borrowed books", gin.H{
		"Records": records,
		"Quota":   quota,
	}, gin.H{
		"records": records,
		"quota":   quota,
	})
}

// HistoryPage handles GET /my/history.
func (bc *BorrowController) HistoryPage(c *gin.Context) {
	records, err := bc.circulation.BorrowHistory(c.Request.Context(), auth.GetUser(c).ID)
	if err != nil {
		respondPageError(c, err, "list borrow history")
		return
	}

	render(c, http.StatusOK, "history", "Borrow history", gin.H{
		"Records": records,
	}, gin.H{
		"records": records,
	})
}
