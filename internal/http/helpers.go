package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/library"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Mapping ---

type errorMapping struct {
	err    error
	status int
	code   string
}

// domainErrors maps library and auth failures to HTTP statuses. The error
// text itself is the user-facing message.
var domainErrors = []errorMapping{
	{library.ErrBookNotFound, http.StatusNotFound, "book_not_found"},
	{library.ErrRecordNotFound, http.StatusNotFound, "record_not_found"},
	{library.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{library.ErrClassNotFound, http.StatusNotFound, "class_not_found"},
	{library.ErrStudentNotInClass, http.StatusNotFound, "student_not_in_class"},
	{library.ErrNoCopies, http.StatusConflict, "no_copies"},
	{library.ErrAlreadyBorrowed, http.StatusConflict, "already_borrowed"},
	{library.ErrQuotaExceeded, http.StatusConflict, "quota_exceeded"},
	{library.ErrAlreadyReturned, http.StatusConflict, "already_returned"},
	{library.ErrNotTeacher, http.StatusForbidden, "not_teacher"},
	{library.ErrClassNotOverseen, http.StatusForbidden, "class_not_overseen"},
	{library.ErrNameRequired, http.StatusBadRequest, "name_required"},
	{library.ErrInvalidAge, http.StatusBadRequest, "invalid_age"},
	{auth.ErrPasswordRequired, http.StatusBadRequest, "password_required"},
	{auth.ErrPasswordTooShort, http.StatusBadRequest, "password_too_short"},
	{auth.ErrPasswordTooLong, http.StatusBadRequest, "password_too_long"},
}

// errMismatchedPasswords is returned when the confirmation differs.
var errMismatchedPasswords = errors.New("new passwords do not match")

// classifyError returns the status, code and message for err. Unknown errors
// are logged and hidden behind a generic 500.
func classifyError(err error, context string) (int, string, string) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error()
		}
	}
	switch {
	case errors.Is(err, auth.ErrInvalidPassword):
		return http.StatusBadRequest, "wrong_password", "current password is incorrect"
	case errors.Is(err, errMismatchedPasswords):
		return http.StatusBadRequest, "password_mismatch", err.Error()
	}
	log.Printf("Internal error (%s): %v", context, err)
	return http.StatusInternalServerError, "", "internal server error"
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondPageError answers a failed page load: JSON for API clients, the
// error page otherwise.
func respondPageError(c *gin.Context, err error, context string) {
	status, code, message := classifyError(err, context)
	if !wantsHTML(c) {
		c.JSON(status, ErrorResponse{Error: message, Code: code})
		return
	}
	renderHTML(c, status, "error", "Error", gin.H{"Status": status, "Message": message})
}

// respondActionError answers a failed form submission: JSON for API
// clients, a flash message and a redirect otherwise.
func respondActionError(c *gin.Context, err error, context, redirectTo string) {
	status, code, message := classifyError(err, context)
	if !wantsHTML(c) {
		c.JSON(status, ErrorResponse{Error: message, Code: code})
		return
	}
	addFlash(c, auth.FlashError, capitalize(message))
	c.Redirect(http.StatusSeeOther, redirectTo)
}

// respondActionSuccess answers a successful form submission.
func respondActionSuccess(c *gin.Context, status int, message, redirectTo string, data any) {
	if !wantsHTML(c) {
		c.JSON(status, SuccessResponse{Message: message, Data: data})
		return
	}
	addFlash(c, auth.FlashSuccess, message)
	c.Redirect(http.StatusSeeOther, redirectTo)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseFormID extracts an unsigned integer ID from a form field.
func parseFormID(c *gin.Context, field string) (uint, bool) {
	value := c.PostForm(field)
	if value == "" {
		respondBadRequest(c, field+" is required")
		return 0, false
	}
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+field)
		return 0, false
	}
	return uint(id), true
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
