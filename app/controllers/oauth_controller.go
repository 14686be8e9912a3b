package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"
)

// HandleOAuthCallback completes the Goth flow and signs the user in,
// creating a local account on first social sign-in.
func HandleOAuthCallback(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	gothUser, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		fm["message"] = fmt.Sprintf("social login failed: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	if gothUser.Email == "" {
		fm["message"] = "social login did not provide an email address"

		return flash.WithError(c, fm).Redirect("/login")
	}

	user, err := findOrCreateOAuthUser(gothUser.Email, gothUser.Name)
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

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

	fm = fiber.Map{
		"type":    "success",
		"message": "Welcome!",
	}

	return flash.WithSuccess(c, fm).Redirect("/dashboard")
}
