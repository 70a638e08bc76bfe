// Package classes provides database operations for classes, student
// membership and teacher oversight.
//
// # Usage
//
//	repo := classes.NewRepository(db)
//	ok, err := repo.IsOverseenBy(teacherID, "C001")
package classes

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/classlib/internal/entities"
)

// Repository handles class related database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new classes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateClass inserts a class.
func (r *Repository) CreateClass(class *entities.Class) error {
	return r.db.Create(class).Error
}

// GetClass retrieves a class by ID.
func (r *Repository) GetClass(id string) (*entities.Class, error) {
	var class entities.Class
	err := r.db.Where("id = ?", id).First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// ListAll returns every class ordered by ID.
func (r *Repository) ListAll() ([]entities.Class, error) {
	var classes []entities.Class
	err := r.db.Order("id ASC").Find(&classes).Error
	return classes, err
}

// ListForTeacher returns the classes a teacher oversees.
func (r *Repository) ListForTeacher(teacherID uint) ([]entities.Class, error) {
	var classes []entities.Class
	err := r.db.
		Joins("JOIN teacher_classes ON teacher_classes.class_id = classes.id").
		Where("teacher_classes.teacher_id = ?", teacherID).
		Order("classes.id ASC").
		Find(&classes).Error
	return classes, err
}

// IsOverseenBy reports whether the teacher oversees the class.
func (r *Repository) IsOverseenBy(teacherID uint, classID string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.TeacherClass{}).
		Where("teacher_id = ? AND class_id = ?", teacherID, classID).
		Count(&count).Error
	return count > 0, err
}

// Link makes the teacher an overseer of the class. Linking twice is a no-op.
func (r *Repository) Link(teacherID uint, classID string) error {
	link := entities.TeacherClass{TeacherID: teacherID, ClassID: classID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&link).Error
}

// Unlink removes the oversight relation. It reports whether a row was removed.
func (r *Repository) Unlink(teacherID uint, classID string) (bool, error) {
	result := r.db.Where("teacher_id = ? AND class_id = ?", teacherID, classID).
		Delete(&entities.TeacherClass{})
	return result.RowsAffected > 0, result.Error
}

// AddStudent places a student user in a class, replacing any previous class.
func (r *Repository) AddStudent(userID uint, classID string) error {
	student := entities.Student{UserID: userID, ClassID: classID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"class_id"}),
	}).Omit(clause.Associations).Create(&student).Error
}

// ListStudents returns the student users of a class ordered by UID.
func (r *Repository) ListStudents(classID string) ([]entities.User, error) {
	var users []entities.User
	err := r.db.
		Joins("JOIN students ON students.user_id = users.id").
		Where("students.class_id = ?", classID).
		Order("users.uid ASC").
		Find(&users).Error
	return users, err
}

// GetStudentClass returns the class a student belongs to.
func (r *Repository) GetStudentClass(userID uint) (*entities.Class, error) {
	var class entities.Class
	err := r.db.
		Joins("JOIN students ON students.class_id = classes.id").
		Where("students.user_id = ?", userID).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// IsStudentInClass reports whether the user is a member of the class.
func (r *Repository) IsStudentInClass(userID uint, classID string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Student{}).
		Where("user_id = ? AND class_id = ?", userID, classID).
		Count(&count).Error
	return count > 0, err
}
