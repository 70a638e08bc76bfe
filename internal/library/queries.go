package library

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/database/books"
	"github.com/mrlokans/classlib/internal/database/borrows"
	"github.com/mrlokans/classlib/internal/database/classes"
	"github.com/mrlokans/classlib/internal/database/users"
	"github.com/mrlokans/classlib/internal/entities"
)

// ClassOverview splits all classes into the ones a teacher oversees and the rest.
type ClassOverview struct {
	Overseen []entities.Class `json:"overseen"`
	Others   []entities.Class `json:"others"`
}

// Profile is a user together with the classes shown on their info page.
type Profile struct {
	User    *entities.User   `json:"user"`
	Classes []entities.Class `json:"classes"`
}

// StudentBorrows is the third level of the teacher drill-down.
type StudentBorrows struct {
	Class   *entities.Class         `json:"class"`
	Student *entities.User          `json:"student"`
	Records []entities.BorrowRecord `json:"records"`
}

// AvailableBooks lists books with at least one copy on the shelf. An empty
// category lists every category.
func (s *Service) AvailableBooks(ctx context.Context, category entities.Category) ([]entities.Book, error) {
	return books.NewRepository(s.db.WithContext(ctx)).ListAvailable(category)
}

// Categories lists the distinct categories in the catalog.
func (s *Service) Categories(ctx context.Context) ([]entities.Category, error) {
	return books.NewRepository(s.db.WithContext(ctx)).Categories()
}

// CurrentBorrows lists the user's open records, soonest due first.
func (s *Service) CurrentBorrows(ctx context.Context, userID uint) ([]entities.BorrowRecord, error) {
	return borrows.NewRepository(s.db.WithContext(ctx)).ListOpenForUser(userID)
}

// BorrowHistory lists all of the user's records, newest first.
func (s *Service) BorrowHistory(ctx context.Context, userID uint) ([]entities.BorrowRecord, error) {
	return borrows.NewRepository(s.db.WithContext(ctx)).ListHistoryForUser(userID)
}

// UserClasses returns the classes a teacher oversees, or a student's own class.
func (s *Service) UserClasses(ctx context.Context, user *entities.User) ([]entities.Class, error) {
	repo := classes.NewRepository(s.db.WithContext(ctx))
	if user.IsTeacher() {
		return repo.ListForTeacher(user.ID)
	}

	class, err := repo.GetStudentClass(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []entities.Class{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []entities.Class{*class}, nil
}

// Profile loads the user and their classes.
func (s *Service) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	classList, err := s.UserClasses(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}
	return &Profile{User: user, Classes: classList}, nil
}

// TeacherClasses lists the classes overseen by the teacher.
func (s *Service) TeacherClasses(ctx context.Context, teacher *entities.User) ([]entities.Class, error) {
	if !teacher.IsTeacher() {
		return nil, ErrNotTeacher
	}
	return classes.NewRepository(s.db.WithContext(ctx)).ListForTeacher(teacher.ID)
}

// ClassOverview returns overseen and other classes for the association page.
func (s *Service) ClassOverview(ctx context.Context, teacher *entities.User) (*ClassOverview, error) {
	if !teacher.IsTeacher() {
		return nil, ErrNotTeacher
	}
	repo := classes.NewRepository(s.db.WithContext(ctx))

	overseen, err := repo.ListForTeacher(teacher.ID)
	if err != nil {
		return nil, err
	}
	all, err := repo.ListAll()
	if err != nil {
		return nil, err
	}

	mine := make(map[string]bool, len(overseen))
	for _, c := range overseen {
		mine[c.ID] = true
	}
	overview := &ClassOverview{Overseen: overseen, Others: []entities.Class{}}
	for _, c := range all {
		if !mine[c.ID] {
			overview.Others = append(overview.Others, c)
		}
	}
	return overview, nil
}

// AddClass puts a class under the teacher's supervision.
func (s *Service) AddClass(ctx context.Context, teacher *entities.User, classID string) error {
	err := s.addClass(ctx, teacher, classID)
	if s.recorder != nil && teacher.IsTeacher() {
		s.recorder.LogClass(ctx, teacher.ID, "class_add", classID, err)
	}
	return err
}

func (s *Service) addClass(ctx context.Context, teacher *entities.User, classID string) error {
	if !teacher.IsTeacher() {
		return ErrNotTeacher
	}
	repo := classes.NewRepository(s.db.WithContext(ctx))
	if _, err := repo.GetClass(classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return repo.Link(teacher.ID, classID)
}

// RemoveClass ends the teacher's supervision of a class.
func (s *Service) RemoveClass(ctx context.Context, teacher *entities.User, classID string) error {
	err := s.removeClass(ctx, teacher, classID)
	if s.recorder != nil && teacher.IsTeacher() {
		s.recorder.LogClass(ctx, teacher.ID, "class_remove", classID, err)
	}
	return err
}

func (s *Service) removeClass(ctx context.Context, teacher *entities.User, classID string) error {
	if !teacher.IsTeacher() {
		return ErrNotTeacher
	}
	removed, err := classes.NewRepository(s.db.WithContext(ctx)).Unlink(teacher.ID, classID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrClassNotOverseen
	}
	return nil
}

// ClassStudents lists the students of a class the teacher oversees.
func (s *Service) ClassStudents(ctx context.Context, teacher *entities.User, classID string) (*entities.Class, []entities.User, error) {
	repo := classes.NewRepository(s.db.WithContext(ctx))
	class, err := s.overseenClass(repo, teacher, classID)
	if err != nil {
		return nil, nil, err
	}
	students, err := repo.ListStudents(classID)
	if err != nil {
		return nil, nil, err
	}
	return class, students, nil
}

// StudentBorrows lists the borrow records of a student in a class the
// teacher oversees. With includeReturned the full history is returned.
func (s *Service) StudentBorrows(ctx context.Context, teacher *entities.User, classID, studentUID string, includeReturned bool) (*StudentBorrows, error) {
	db := s.db.WithContext(ctx)
	classRepo := classes.NewRepository(db)

	class, err := s.overseenClass(classRepo, teacher, classID)
	if err != nil {
		return nil, err
	}

	student, err := users.NewRepository(db).GetUserByUID(studentUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotInClass
	}
	if err != nil {
		return nil, err
	}
	in, err := classRepo.IsStudentInClass(student.ID, classID)
	if err != nil {
		return nil, err
	}
	if !in {
		return nil, ErrStudentNotInClass
	}

	borrowRepo := borrows.NewRepository(db)
	var records []entities.BorrowRecord
	if includeReturned {
		records, err = borrowRepo.ListHistoryForUser(student.ID)
	} else {
		records, err = borrowRepo.ListOpenForUser(student.ID)
	}
	if err != nil {
		return nil, err
	}

	return &StudentBorrows{Class: class, Student: student, Records: records}, nil
}

func (s *Service) overseenClass(repo *classes.Repository, teacher *entities.User, classID string) (*entities.Class, error) {
	if !teacher.IsTeacher() {
		return nil, ErrNotTeacher
	}
	ok, err := repo.IsOverseenBy(teacher.ID, classID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrClassNotOverseen
	}
	return repo.GetClass(classID)
}
