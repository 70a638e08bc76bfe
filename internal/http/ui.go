package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/entities"
)

// MenuItem is one entry of the main menu.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var (
	commonMenu = []MenuItem{
		{Label: "Available books", Path: "/books"},
		{Label: "My borrowed books", Path: "/my/borrows"},
		{Label: "Borrow history", Path: "/my/history"},
		{Label: "My profile", Path: "/user/info"},
	}
	teacherMenu = []MenuItem{
		{Label: "Manage my classes", Path: "/classes"},
		{Label: "Class borrowing", Path: "/teacher/class-borrows"},
	}
)

// MenuFor returns the main menu for a role.
func MenuFor(role entities.UserRole) []MenuItem {
	items := append([]MenuItem{}, commonMenu...)
	if role.CanOverseeClasses() {
		items = append(items, teacherMenu...)
	}
	return items
}

type UIController struct{}

func NewUIController() *UIController {
	return &UIController{}
}

// Root sends visitors to the main menu.
func (controller *UIController) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/index")
}

// IndexPage renders the role-specific main menu.
func (controller *UIController) IndexPage(c *gin.Context) {
	user := auth.GetUser(c)
	menu := MenuFor(user.Role)

	render(c, http.StatusOK, "index", "Main menu", gin.H{
		"Menu": menu,
	}, gin.H{
		"user": user,
		"menu": menu,
	})
}
