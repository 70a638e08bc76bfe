package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/database/users"
	"github.com/mrlokans/classlib/internal/entities"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUIDRequired   = errors.New("user id is required")
	ErrAuthRequired  = errors.New("authentication required")
	ErrAccountLocked = errors.New("account is locked due to too many failed login attempts")
)

// normalizeUID is applied to every login id before it is looked up or used
// as a key. Ids are matched exactly, so only surrounding space is dropped.
func normalizeUID(uid string) string {
	return strings.TrimSpace(uid)
}

// Service handles credential checks and password changes.
type Service struct {
	db     *gorm.DB
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		users:  users.NewRepository(db),
		config: cfg,
	}
}

// Authenticate validates a login id and password and returns the user.
// Implements account lockout after too many failed attempts.
func (s *Service) Authenticate(uid, password string) (*entities.User, error) {
	uid = normalizeUID(uid)
	if uid == "" {
		return nil, ErrUIDRequired
	}

	user, err := s.users.GetUserByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user)
		return nil, err
	}

	// Successful login - reset failed attempts and update last login
	now := time.Now()
	s.db.Model(user).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

// recordFailedLogin increments the failed login counter and locks the account if threshold reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++

	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		lockedUntil := time.Now().Add(lockoutDuration)
		updates["locked_until"] = lockedUntil
	}

	s.db.Model(user).Updates(updates)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePasswordHash(user.ID, newHash)
}

// SetPassword replaces the password of the user with the given login id
// without checking the old one. Used by the command line.
func (s *Service) SetPassword(uid, password string) error {
	user, err := s.users.GetUserByUID(normalizeUID(uid))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(user.ID, hash)
}
