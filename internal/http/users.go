package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/library"
)

// ProfileController handles the signed-in user's profile.
type ProfileController struct {
	profiles  ProfileStore
	passwords PasswordChanger
	sessions  *auth.SessionManager
	recorder  ProfileRecorder
}

// NewProfileController creates a new ProfileController. sessions and
// recorder may be nil.
func NewProfileController(profiles ProfileStore, passwords PasswordChanger, sessions *auth.SessionManager, recorder ProfileRecorder) *ProfileController {
	return &ProfileController{
		profiles:  profiles,
		passwords: passwords,
		sessions:  sessions,
		recorder:  recorder,
	}
}

// InfoPage handles GET /user/info.
func (pc *ProfileController) InfoPage(c *gin.Context) {
	profile, err := pc.profiles.Profile(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondPageError(c, err, "load profile")
		return
	}

	render(c, http.StatusOK, "user_info", "My profile", gin.H{
		"Profile": profile,
	}, profile)
}

// UpdateProfile handles POST /user/update. Empty fields are left unchanged.
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.GetUserID(c)

	name, hasName := c.GetPostForm("name")
	ageValue, hasAge := c.GetPostForm("age")
	name = strings.TrimSpace(name)
	ageValue = strings.TrimSpace(ageValue)

	if name == "" && ageValue == "" {
		err := library.ErrNameRequired
		if !hasName && hasAge {
			err = library.ErrInvalidAge
		}
		respondActionError(c, err, "update profile", "/user/info")
		return
	}

	if name != "" {
		if err := pc.profiles.UpdateName(ctx, userID, name); err != nil {
			respondActionError(c, err, "update name", "/user/info")
			return
		}
		if pc.sessions != nil {
			pc.sessions.SetName(c.Request, name)
		}
	}

	if ageValue != "" {
		age, err := strconv.Atoi(ageValue)
		if err != nil {
			respondActionError(c, library.ErrInvalidAge, "update age", "/user/info")
			return
		}
		if err := pc.profiles.UpdateAge(ctx, userID, age); err != nil {
			respondActionError(c, err, "update age", "/user/info")
			return
		}
	}

	profile, err := pc.profiles.Profile(ctx, userID)
	if err != nil {
		respondActionError(c, err, "reload profile", "/user/info")
		return
	}
	respondActionSuccess(c, http.StatusOK, "Profile updated", "/user/info", profile)
}

// ChangePassword handles POST /user/password.
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	userID := auth.GetUserID(c)
	currentPassword := c.PostForm("current_password")
	newPassword := c.PostForm("new_password")

	if confirm, ok := c.GetPostForm("confirm_password"); ok && confirm != newPassword {
		respondActionError(c, errMismatchedPasswords, "change password", "/user/info")
		return
	}

	if err := pc.passwords.ChangePassword(userID, currentPassword, newPassword); err != nil {
		respondActionError(c, err, "change password", "/user/info")
		return
	}

	if pc.recorder != nil {
		pc.recorder.LogProfile(c.Request.Context(), userID, "change_password", "Password changed")
	}
	respondActionSuccess(c, http.StatusOK, "Password changed", "/user/info", nil)
}
