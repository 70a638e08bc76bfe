package library

import "errors"

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrNoCopies        = errors.New("no copies available")
	ErrAlreadyBorrowed = errors.New("book already borrowed and not returned")
	ErrQuotaExceeded   = errors.New("borrow limit reached")

	ErrRecordNotFound  = errors.New("borrow record not found")
	ErrAlreadyReturned = errors.New("book already returned")

	ErrUserNotFound      = errors.New("user not found")
	ErrNotTeacher        = errors.New("only teachers can do this")
	ErrClassNotFound     = errors.New("class not found")
	ErrClassNotOverseen  = errors.New("class is not under your supervision")
	ErrStudentNotInClass = errors.New("student is not in this class")

	ErrNameRequired = errors.New("name must not be empty")
	ErrInvalidAge   = errors.New("age must be a positive number")

	// ErrInventoryInconsistent means a return would push available above total.
	ErrInventoryInconsistent = errors.New("book inventory is inconsistent")
)
