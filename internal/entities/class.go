package entities

// Class is a grouping of students overseen by one or more teachers.
type Class struct {
	ID   string `gorm:"primaryKey;size:20" json:"id"` // e.g. "C001"
	Name string `gorm:"size:100;not null" json:"name"`
}

// Student links a student user to the single class they belong to.
type Student struct {
	UserID  uint   `gorm:"primaryKey" json:"user_id"`
	ClassID string `gorm:"index;size:20;not null" json:"class_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	Class   Class  `gorm:"foreignKey:ClassID" json:"class"`
}

// TeacherClass records that a teacher oversees a class.
type TeacherClass struct {
	TeacherID uint   `gorm:"primaryKey" json:"teacher_id"`
	ClassID   string `gorm:"primaryKey;size:20" json:"class_id"`
	Teacher   User   `gorm:"foreignKey:TeacherID" json:"-"`
	Class     Class  `gorm:"foreignKey:ClassID" json:"class"`
}
