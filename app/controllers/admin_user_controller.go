package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/app/repository"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/usercontext"
)

const adminUserPageSize = 50

// HandleAdminListUsers returns a paginated user listing for the admin
// panel. Password hashes never leave the model thanks to its json tags.
func HandleAdminListUsers(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	users, err := repo.List((page-1)*adminUserPageSize, adminUserPageSize)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to load users")
	}
	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to count users")
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": adminUserPageSize,
	})
}

type createAdminPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleCreateAdmin creates an administrator account. While no admin
// exists yet the endpoint is open so the first operator can bootstrap
// the instance; afterwards it requires an admin session.
func HandleCreateAdmin(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	admins, err := repo.CountAdmins()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to count admins")
	}
	if admins > 0 && !usercontext.GetUserContext(c).IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "admin access required")
	}

	var payload createAdminPayload
	if err := c.BodyParser(&payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	user, err := models.CreateUser(strings.TrimSpace(payload.Username), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	user.Role = models.ROLE_ADMIN

	if err := repo.Create(user); err != nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}
