package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/database/books"
	"github.com/mrlokans/classlib/internal/database/borrows"
	"github.com/mrlokans/classlib/internal/database/users"
	"github.com/mrlokans/classlib/internal/entities"
)

// Recorder receives the outcome of state-changing operations.
type Recorder interface {
	LogBorrow(ctx context.Context, userID, bookID uint, err error)
	LogReturn(ctx context.Context, userID, recordID uint, err error)
	LogClass(ctx context.Context, teacherID uint, action, classID string, err error)
	LogProfile(ctx context.Context, userID uint, action, description string)
}

type Service struct {
	db       *gorm.DB
	cfg      config.Library
	recorder Recorder
	now      func() time.Time
}

// NewService creates the library service. recorder may be nil.
func NewService(db *gorm.DB, cfg config.Library, recorder Recorder) *Service {
	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = config.DefaultLoanPeriod
	}
	return &Service{
		db:       db,
		cfg:      cfg,
		recorder: recorder,
		now:      time.Now,
	}
}

// Quota returns the maximum number of open borrows for the user, 0 meaning unlimited.
func (s *Service) Quota(user *entities.User) int {
	return s.cfg.Quota(user.IsTeacher())
}

// Borrow lends one copy of a book to the user.
func (s *Service) Borrow(ctx context.Context, user *entities.User, bookID uint) (*entities.BorrowRecord, error) {
	var record *entities.BorrowRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookRepo := books.NewRepository(tx)
		borrowRepo := borrows.NewRepository(tx)

		book, err := bookRepo.GetBookByID(bookID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}
		if book.Available <= 0 {
			return ErrNoCopies
		}

		has, err := borrowRepo.HasOpen(user.ID, book.ID)
		if err != nil {
			return fmt.Errorf("failed to check open borrows: %w", err)
		}
		if has {
			return ErrAlreadyBorrowed
		}

		if quota := s.Quota(user); quota > 0 {
			open, err := borrowRepo.CountOpen(user.ID)
			if err != nil {
				return fmt.Errorf("failed to count open borrows: %w", err)
			}
			if open >= int64(quota) {
				return ErrQuotaExceeded
			}
		}

		if err := bookRepo.TakeCopy(book.ID); err != nil {
			if errors.Is(err, books.ErrNoCopies) {
				return ErrNoCopies
			}
			return fmt.Errorf("failed to update book: %w", err)
		}

		now := s.now()
		record = &entities.BorrowRecord{
			UserID:     user.ID,
			BookID:     book.ID,
			BorrowedAt: now,
			DueAt:      now.Add(s.cfg.LoanPeriod),
		}
		if err := borrowRepo.Create(record); err != nil {
			return fmt.Errorf("failed to create borrow record: %w", err)
		}

		book.Available--
		record.Book = *book
		return nil
	})

	if s.recorder != nil {
		s.recorder.LogBorrow(ctx, user.ID, bookID, err)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Return closes an open borrow record owned by the user and puts the copy
// back on the shelf.
func (s *Service) Return(ctx context.Context, user *entities.User, recordID uint) (*entities.BorrowRecord, error) {
	var record *entities.BorrowRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		borrowRepo := borrows.NewRepository(tx)

		var err error
		record, err = borrowRepo.GetByID(recordID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load borrow record: %w", err)
		}
		// someone else's record looks the same as a missing one
		if record.UserID != user.ID {
			return ErrRecordNotFound
		}
		if !record.IsOpen() {
			return ErrAlreadyReturned
		}

		returnedAt := s.now()
		if returnedAt.Before(record.BorrowedAt) {
			returnedAt = record.BorrowedAt
		}

		closed, err := borrowRepo.MarkReturned(record.ID, returnedAt)
		if err != nil {
			return fmt.Errorf("failed to close borrow record: %w", err)
		}
		if !closed {
			return ErrAlreadyReturned
		}

		if err := books.NewRepository(tx).PutBackCopy(record.BookID); err != nil {
			if errors.Is(err, books.ErrAllCopiesPresent) {
				return ErrInventoryInconsistent
			}
			return fmt.Errorf("failed to update book: %w", err)
		}

		record.ReturnedAt = &returnedAt
		record.Book.Available++
		return nil
	})

	if s.recorder != nil {
		s.recorder.LogReturn(ctx, user.ID, recordID, err)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetUser loads a user by primary key.
func (s *Service) GetUser(ctx context.Context, id uint) (*entities.User, error) {
	user, err := users.NewRepository(s.db.WithContext(ctx)).GetUserByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateName changes the user's display name.
func (s *Service) UpdateName(ctx context.Context, userID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if err := s.updateProfile(ctx, userID, func(r *users.Repository) error {
		return r.UpdateName(userID, name)
	}); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.LogProfile(ctx, userID, "update_name", "Name changed to "+name)
	}
	return nil
}

// UpdateAge changes the user's age.
func (s *Service) UpdateAge(ctx context.Context, userID uint, age int) error {
	if age <= 0 {
		return ErrInvalidAge
	}
	if err := s.updateProfile(ctx, userID, func(r *users.Repository) error {
		return r.UpdateAge(userID, age)
	}); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.LogProfile(ctx, userID, "update_age", fmt.Sprintf("Age changed to %d", age))
	}
	return nil
}

func (s *Service) updateProfile(ctx context.Context, userID uint, update func(*users.Repository) error) error {
	err := update(users.NewRepository(s.db.WithContext(ctx)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
