package controllers

import (
	"strings"

	"absensi_go/config"
	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/services"
	"absensi_go/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type AuthController struct {
	Sync *services.SyncService
}

func NewAuthController(sync *services.SyncService) *AuthController {
	return &AuthController{Sync: sync}
}

type loginRequest struct {
	Role     models.UserRole `json:"role" validate:"required,oneof=TEACHER ADMIN PARENT"`
	Username string          `json:"username"` // teacher name or admin username
	Password string          `json:"password"` // ADMIN only
	NIS      string          `json:"nis"`      // PARENT only
}

// Login authenticates one of the three roles. Teachers pick their name from
// the staff roster, admins present the configured password, parents log in
// with their child's NIS. The session is persisted in the local cache; its
// absence means unauthenticated.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session := models.AuthSession{Role: req.Role}

	switch req.Role {
	case models.RoleTeacher:
		teachers := ac.Sync.LoadTeachers(c.Context())
		found := false
		for _, t := range teachers {
			if strings.EqualFold(t.Name, req.Username) {
				session.Username = t.Name
				found = true
				break
			}
		}
		if !found {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Teacher not found"})
		}

	case models.RoleAdmin:
		if !ac.checkAdminPassword(req.Password) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid admin password"})
		}
		session.Username = "Administrator"
		if req.Username != "" {
			session.Username = req.Username
		}

	case models.RoleParent:
		students := ac.Sync.LoadStudents(c.Context())
		for i := range students {
			if students[i].ID == req.NIS {
				session.Student = &students[i]
				session.Username = students[i].Name
				break
			}
		}
		if session.Student == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Student NIS not found"})
		}
	}

	if err := ac.Sync.SaveSession(c.Context(), session); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to persist session"})
	}

	token, err := middleware.GenerateToken(session)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"session": session,
	})
}

// Logout removes the cached session.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Sync.ClearSession(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to clear session"})
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetProfile returns the cached session for the authenticated user.
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	session, ok := ac.Sync.LoadSession(c.Context())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}
	return c.JSON(fiber.Map{"session": session})
}

func (ac *AuthController) checkAdminPassword(password string) bool {
	if hash := config.AppConfig.AdminPasswordHash; hash != "" {
		return utils.CheckPassword(password, hash) == nil
	}
	// development fallback: plain comparison against the configured value
	return password != "" && password == config.AppConfig.AdminPassword
}
