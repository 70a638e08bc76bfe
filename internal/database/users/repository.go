// Package users provides database operations for library accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUID("S001")
package users

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user. The password must already be hashed.
func (r *Repository) CreateUser(user *entities.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("invalid role %q", user.Role)
	}
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUID retrieves a user by their login id.
func (r *Repository) GetUserByUID(uid string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("uid = ?", uid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateName sets the display name of a user.
func (r *Repository) UpdateName(id uint, name string) error {
	return r.updateColumn(id, "name", name)
}

// UpdateAge sets the age of a user.
func (r *Repository) UpdateAge(id uint, age int) error {
	return r.updateColumn(id, "age", age)
}

// UpdatePasswordHash replaces the stored password hash and clears any lockout.
func (r *Repository) UpdatePasswordHash(id uint, hash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash":      hash,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) updateColumn(id uint, column string, value any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
