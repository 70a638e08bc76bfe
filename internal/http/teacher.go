package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
)

// TeacherController serves class management and the three-level class
// borrowing drill-down. Routes are mounted behind a teacher role check; the
// library service repeats the oversight check per class.
type TeacherController struct {
	classes ClassDirectory
}

func NewTeacherController(classes ClassDirectory) *TeacherController {
	return &TeacherController{classes: classes}
}

// ClassesPage handles GET /classes: overseen classes and the rest.
func (tc *TeacherController) ClassesPage(c *gin.Context) {
	overview, err := tc.classes.ClassOverview(c.Request.Context(), auth.GetUser(c))
	if err != nil {
		respondPageError(c, err, "class overview")
		return
	}

	render(c, http.StatusOK, "classes", "Manage my classes", gin.H{
		"Overview": overview,
	}, overview)
}

// AddClass handles POST /classes/add with form field class_id.
func (tc *TeacherController) AddClass(c *gin.Context) {
	classID, ok := formClassID(c)
	if !ok {
		return
	}
	if err := tc.classes.AddClass(c.Request.Context(), auth.GetUser(c), classID); err != nil {
		respondActionError(c, err, "add class", "/classes")
		return
	}
	respondActionSuccess(c, http.StatusOK, fmt.Sprintf("Class %s added", classID), "/classes", gin.H{"class_id": classID})
}

// RemoveClass handles POST /classes/remove with form field class_id.
func (tc *TeacherController) RemoveClass(c *gin.Context) {
	classID, ok := formClassID(c)
	if !ok {
		return
	}
	if err := tc.classes.RemoveClass(c.Request.Context(), auth.GetUser(c), classID); err != nil {
		respondActionError(c, err, "remove class", "/classes")
		return
	}
	respondActionSuccess(c, http.StatusOK, fmt.Sprintf("Class %s removed", classID), "/classes", gin.H{"class_id": classID})
}

// ClassBorrowsPage handles GET /teacher/class-borrows: the overseen classes.
func (tc *TeacherController) ClassBorrowsPage(c *gin.Context) {
	classes, err := tc.classes.TeacherClasses(c.Request.Context(), auth.GetUser(c))
	if err != nil {
		respondPageError(c, err, "list overseen classes")
		return
	}

	render(c, http.StatusOK, "class_borrows", "Class borrowing", gin.H{
		"Classes": classes,
	}, gin.H{
		"classes": classes,
	})
}

// ClassStudentsPage handles GET /teacher/class-borrows/:classID.
func (tc *TeacherController) ClassStudentsPage(c *gin.Context) {
	class, students, err := tc.classes.ClassStudents(c.Request.Context(), auth.GetUser(c), normalizeClassID(c.Param("classID")))
	if err != nil {
		respondPageError(c, err, "list class students")
		return
	}

	render(c, http.StatusOK, "class_students", "Students of "+class.Name, gin.H{
		"Class":    class,
		"Students": students,
	}, gin.H{
		"class":    class,
		"students": students,
	})
}

// StudentBorrowsPage handles GET /teacher/student-borrows/:classID/:uid.
// ?all=1 includes returned records.
func (tc *TeacherController) StudentBorrowsPage(c *gin.Context) {
	all := c.Query("all") == "1" || c.Query("all") == "true"

	result, err := tc.classes.StudentBorrows(c.Request.Context(), auth.GetUser(c), normalizeClassID(c.Param("classID")), c.Param("uid"), all)
	if err != nil {
		respondPageError(c, err, "list student borrows")
		return
	}

	render(c, http.StatusOK, "student_borrows", "Books borrowed by "+result.Student.Name, gin.H{
		"Result": result,
		"All":    all,
	}, result)
}

// normalizeClassID makes class ids case-insensitive wherever they come from.
func normalizeClassID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func formClassID(c *gin.Context) (string, bool) {
	classID := normalizeClassID(c.PostForm("class_id"))
	if classID == "" {
		respondBadRequest(c, "class_id is required")
		return "", false
	}
	return classID, true
}
