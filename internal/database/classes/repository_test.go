package classes

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/classlib/internal/entities"
)

type fixture struct {
	repo    *Repository
	teacher entities.User
	alice   entities.User
	bob     entities.User
}

func setupTestDB(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "classes.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Class{}, &entities.User{}, &entities.Student{}, &entities.TeacherClass{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	f := &fixture{repo: NewRepository(db)}
	require.NoError(t, f.repo.CreateClass(&entities.Class{ID: "C001", Name: "First"}))
	require.NoError(t, f.repo.CreateClass(&entities.Class{ID: "C002", Name: "Second"}))

	f.teacher = entities.User{UID: "T001", Role: entities.RoleTeacher}
	f.alice = entities.User{UID: "S001", Role: entities.RoleStudent}
	f.bob = entities.User{UID: "S002", Role: entities.RoleStudent}
	for _, u := range []*entities.User{&f.teacher, &f.alice, &f.bob} {
		require.NoError(t, db.Create(u).Error)
	}
	require.NoError(t, f.repo.AddStudent(f.alice.ID, "C001"))
	require.NoError(t, f.repo.AddStudent(f.bob.ID, "C002"))
	return f
}

func TestRepository_LinkAndUnlink(t *testing.T) {
	f := setupTestDB(t)

	require.NoError(t, f.repo.Link(f.teacher.ID, "C001"))
	require.NoError(t, f.repo.Link(f.teacher.ID, "C001"), "linking twice is a no-op")

	ok, err := f.repo.IsOverseenBy(f.teacher.ID, "C001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.repo.IsOverseenBy(f.teacher.ID, "C002")
	require.NoError(t, err)
	assert.False(t, ok)

	classes, err := f.repo.ListForTeacher(f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "First", classes[0].Name)

	removed, err := f.repo.Unlink(f.teacher.ID, "C001")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.repo.Unlink(f.teacher.ID, "C001")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepository_Students(t *testing.T) {
	f := setupTestDB(t)

	students, err := f.repo.ListStudents("C001")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "S001", students[0].UID)

	in, err := f.repo.IsStudentInClass(f.bob.ID, "C001")
	require.NoError(t, err)
	assert.False(t, in)

	class, err := f.repo.GetStudentClass(f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "C002", class.ID)

	// Moving a student replaces their class
	require.NoError(t, f.repo.AddStudent(f.bob.ID, "C001"))
	students, err = f.repo.ListStudents("C001")
	require.NoError(t, err)
	assert.Len(t, students, 2)
	students, err = f.repo.ListStudents("C002")
	require.NoError(t, err)
	assert.Empty(t, students, "a student belongs to one class only")

	_, err = f.repo.GetStudentClass(f.teacher.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListAll(t *testing.T) {
	f := setupTestDB(t)

	classes, err := f.repo.ListAll()
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "C001", classes[0].ID)

	_, err = f.repo.GetClass("C404")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
