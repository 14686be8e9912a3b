package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/app/repository"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/database"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/session"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/usercontext"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("login", fiber.Map{
			"Title": "Login",
			"Flash": flash.Get(c),
		}, "layouts/main")
	}

	fm := fiber.Map{
		"type": "error",
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(c.FormValue("email"))
	if err != nil {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.CheckPassword(c.FormValue("password")) {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.IsActive() {
		fm["message"] = "This account is disabled"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := startSession(c, user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		// Login still succeeds; the timestamp is best-effort.
		fmt.Printf("failed to update last login for user %d: %v\n", user.ID, err)
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Welcome back!",
	}

	return flash.WithSuccess(c, fm).Redirect("/dashboard")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("register", fiber.Map{
			"Title": "Register",
			"Flash": flash.Get(c),
		}, "layouts/main")
	}

	user, err := models.CreateUser(c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	if err := database.GetDB().Create(user).Error; err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "An account with this email already exists",
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	if err := startSession(c, user); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Account created. Welcome!",
	}

	return flash.WithSuccess(c, fm).Redirect("/dashboard")
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := sess.Destroy(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Bye bye! See you soon.",
	}

	c.Locals(usercontext.KeyFromProtected, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

// startSession writes the authenticated user into a fresh session.
func startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())

	return sess.Save()
}

// findOrCreateOAuthUser resolves a social login to a local account,
// creating one on first sign-in.
func findOrCreateOAuthUser(email, name string) (*models.User, error) {
	repo := repository.GetGlobalFactory().GetUserRepository()

	user, err := repo.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = email
	}
	user = &models.User{
		Name:     name,
		Email:    email,
		Password: "-", // no local password for social accounts
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
	}
	if err := repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
