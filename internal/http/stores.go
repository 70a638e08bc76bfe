package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	auditdb "github.com/mrlokans/classlib/internal/database/audit"
	"github.com/mrlokans/classlib/internal/entities"
	"github.com/mrlokans/classlib/internal/library"
)

// Each controller depends on the narrow slice of the library it uses.
// *library.Service satisfies all of the library interfaces below.

// Catalog lists books that can be borrowed.
type Catalog interface {
	AvailableBooks(ctx context.Context, category entities.Category) ([]entities.Book, error)
	Categories(ctx context.Context) ([]entities.Category, error)
}

// Circulation borrows and returns books.
type Circulation interface {
	Borrow(ctx context.Context, user *entities.User, bookID uint) (*entities.BorrowRecord, error)
	Return(ctx context.Context, user *entities.User, recordID uint) (*entities.BorrowRecord, error)
	CurrentBorrows(ctx context.Context, userID uint) ([]entities.BorrowRecord, error)
	BorrowHistory(ctx context.Context, userID uint) ([]entities.BorrowRecord, error)
	Quota(user *entities.User) int
}

// ClassDirectory serves the teacher views.
type ClassDirectory interface {
	ClassOverview(ctx context.Context, teacher *entities.User) (*library.ClassOverview, error)
	AddClass(ctx context.Context, teacher *entities.User, classID string) error
	RemoveClass(ctx context.Context, teacher *entities.User, classID string) error
	TeacherClasses(ctx context.Context, teacher *entities.User) ([]entities.Class, error)
	ClassStudents(ctx context.Context, teacher *entities.User, classID string) (*entities.Class, []entities.User, error)
	StudentBorrows(ctx context.Context, teacher *entities.User, classID, studentUID string, includeReturned bool) (*library.StudentBorrows, error)
}

// ProfileStore reads and edits the signed-in user's profile.
type ProfileStore interface {
	Profile(ctx context.Context, userID uint) (*library.Profile, error)
	UpdateName(ctx context.Context, userID uint, name string) error
	UpdateAge(ctx context.Context, userID uint, age int) error
}

// PasswordChanger is implemented by *auth.Service.
type PasswordChanger interface {
	ChangePassword(userID uint, oldPassword, newPassword string) error
}

// ProfileRecorder receives profile changes made outside the library service.
type ProfileRecorder interface {
	LogProfile(ctx context.Context, userID uint, action, description string)
}

// AuditReader is implemented by *audit.Service.
type AuditReader interface {
	ListEvents(f auditdb.Filter) ([]entities.AuditEvent, int64, error)
}

// TaskRunner is implemented by *tasks.Client.
type TaskRunner interface {
	Trigger(name string) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
