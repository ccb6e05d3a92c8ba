package session

import (
	"errors"

	"equipment-manager/core/logger"
	authmw "equipment-manager/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")
	api.Post("/login", h.HandleLogin)
	api.Get("/me", authmw.RequireLogin(), h.HandleMe)
}

// HandleLogin exchanges credentials for a token.
// @Summary Login
// @Tags session
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Token and user"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /api/login [post]
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "invalid login body"})
	}

	token, user, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "message": err.Error()})
		}
		logger.WithRayID(h.service.logger, c).Error("Login failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"ok": true, "token": token, "user": user})
}

// HandleMe returns the user behind the token.
// @Summary Current User
// @Tags session
// @Produce json
// @Success 200 {object} map[string]interface{} "User"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Router /api/me [get]
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	claims := authmw.ClaimsFrom(c)
	me := fiber.Map{
		"username":    claims.Username,
		"displayName": claims.DisplayName,
		"role":        claims.Role,
	}
	if claims.ExpiresAt != nil {
		me["exp"] = claims.ExpiresAt.Time.Unix()
	}
	return c.JSON(fiber.Map{"ok": true, "user": me})
}
