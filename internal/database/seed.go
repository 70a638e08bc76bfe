package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mrlokans/classlib/internal/entities"
)

type seedUser struct {
	UID      string
	Name     string
	Sex      string
	Age      int
	College  string
	JoinYear int
	Password string
	Role     entities.UserRole
	ClassID  string // students only
}

var seedClasses = []entities.Class{
	{ID: "C001", Name: "Mathematics 2023 Class 1"},
	{ID: "C002", Name: "Mathematics 2023 Class 2"},
}

var seedUsers = []seedUser{
	{UID: "T001", Name: "Ms. Zhang", Sex: "F", Age: 40, College: "School of Mathematics", JoinYear: 2010, Password: "123456", Role: entities.RoleTeacher},
	{UID: "T002", Name: "Mr. Li", Sex: "M", Age: 38, College: "School of Mathematics", JoinYear: 2015, Password: "123456", Role: entities.RoleTeacher},
	{UID: "S001", Name: "Alice", Sex: "F", Age: 19, College: "School of Mathematics", Password: "111", Role: entities.RoleStudent, ClassID: "C001"},
	{UID: "S002", Name: "Bob", Sex: "M", Age: 20, College: "School of Mathematics", Password: "111", Role: entities.RoleStudent, ClassID: "C001"},
	{UID: "S003", Name: "Carol", Sex: "F", Age: 19, College: "School of Mathematics", Password: "111", Role: entities.RoleStudent, ClassID: "C002"},
	{UID: "S004", Name: "Dave", Sex: "M", Age: 21, College: "School of Mathematics", Password: "111", Role: entities.RoleStudent, ClassID: "C002"},
	{UID: "S005", Name: "Eve", Sex: "F", Age: 20, College: "School of Mathematics", Password: "111", Role: entities.RoleStudent, ClassID: "C001"},
}

// teacher UID -> overseen class IDs
var seedOversight = map[string][]string{
	"T001": {"C001", "C002"},
}

var seedBooks = []entities.Book{
	{ISBN: "9787111234567", Title: "Programming in Python", Category: entities.CategoryComputerScience, Authors: "Guido et al.", Publisher: "China Machine Press", Keywords: "python beginner", Total: 5},
	{ISBN: "9787042345678", Title: "Mathematical Analysis", Category: entities.CategoryMath, Authors: "Zhang San", Publisher: "Higher Education Press", Keywords: "math analysis", Total: 3},
	{ISBN: "9787301123456", Title: "General Physics", Category: entities.CategoryPhysics, Authors: "Li Si", Publisher: "Tsinghua University Press", Keywords: "physics basics", Total: 4},
	{ISBN: "9787021456789", Title: "Fortress Besieged", Category: entities.CategoryLiterature, Authors: "Qian Zhongshu", Publisher: "People's Literature", Keywords: "novel modern", Total: 6},
	{ISBN: "9787031234567", Title: "Linear Algebra", Category: entities.CategoryMath, Authors: "Li Yongle", Publisher: "Science Press", Keywords: "algebra exam", Total: 4},
	{ISBN: "9787112345678", Title: "C++ Primer", Category: entities.CategoryComputerScience, Authors: "Lippman", Publisher: "China Machine Press", Keywords: "c++ beginner", Total: 5},
	{ISBN: "9787043456789", Title: "University Physics", Category: entities.CategoryPhysics, Authors: "Zhao Kaihua", Publisher: "Higher Education Press", Keywords: "physics general", Total: 3},
	{ISBN: "9787022567890", Title: "Dream of the Red Chamber", Category: entities.CategoryLiterature, Authors: "Cao Xueqin", Publisher: "People's Literature", Keywords: "classic novel", Total: 6},
	{ISBN: "9787302123456", Title: "Introduction to Algorithms", Category: entities.CategoryComputerScience, Authors: "CLRS", Publisher: "Tsinghua University Press", Keywords: "algorithms classic", Total: 2},
	{ISBN: "9787011345678", Title: "Modern History", Category: entities.CategoryLiterature, Authors: "Jiang Tingfu", Publisher: "People's Press", Keywords: "history modern", Total: 4},
}

// Seed populates classes, users and books when the users table is empty.
// It reports whether any rows were written.
func (d *Database) Seed(bcryptCost int) (bool, error) {
	var count int64
	if err := d.DB.Model(&entities.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		return seed(tx, bcryptCost)
	})
	if err != nil {
		return false, err
	}

	log.Printf("Seeded %d classes, %d users, %d books", len(seedClasses), len(seedUsers), len(seedBooks))
	return true, nil
}

// Reset wipes all library data and seeds it again.
func (d *Database) Reset(bcryptCost int) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		// children first so foreign keys hold
		tables := []any{
			&entities.BorrowRecord{},
			&entities.Book{},
			&entities.TeacherClass{},
			&entities.Student{},
			&entities.User{},
			&entities.Class{},
		}
		for _, t := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
				return fmt.Errorf("failed to wipe %T: %w", t, err)
			}
		}
		log.Printf("Library data wiped")
		return seed(tx, bcryptCost)
	})
}

func seed(tx *gorm.DB, bcryptCost int) error {
	classes := make([]entities.Class, len(seedClasses))
	copy(classes, seedClasses)
	if err := tx.Create(&classes).Error; err != nil {
		return fmt.Errorf("failed to seed classes: %w", err)
	}

	// bcrypt is slow; hash each distinct password once
	hashes := make(map[string]string)
	byUID := make(map[string]uint, len(seedUsers))

	for _, su := range seedUsers {
		hash, ok := hashes[su.Password]
		if !ok {
			b, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			hash = string(b)
			hashes[su.Password] = hash
		}

		user := entities.User{
			UID:          su.UID,
			Name:         su.Name,
			Sex:          su.Sex,
			Age:          su.Age,
			College:      su.College,
			PasswordHash: hash,
			Role:         su.Role,
		}
		if su.JoinYear != 0 {
			year := su.JoinYear
			user.JoinYear = &year
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.UID, err)
		}
		byUID[su.UID] = user.ID

		if su.ClassID != "" {
			if err := tx.Create(&entities.Student{UserID: user.ID, ClassID: su.ClassID}).Error; err != nil {
				return fmt.Errorf("failed to seed student %s: %w", su.UID, err)
			}
		}
	}

	for uid, classIDs := range seedOversight {
		for _, classID := range classIDs {
			link := entities.TeacherClass{TeacherID: byUID[uid], ClassID: classID}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link %s to %s: %w", uid, classID, err)
			}
		}
	}

	books := make([]entities.Book, len(seedBooks))
	copy(books, seedBooks)
	for i := range books {
		books[i].Available = books[i].Total
	}
	if err := tx.Create(&books).Error; err != nil {
		return fmt.Errorf("failed to seed books: %w", err)
	}

	return nil
}
