package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
	"github.com/harentsoaR/mindcare-admin-api/internal/utils"
)

// Login authenticates an admin operator and returns a session token.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	// admins are stored under their lowercased email
	email := strings.ToLower(strings.TrimSpace(req.Email))
	admin, err := h.Admins.FindByEmail(c.Request.Context(), email)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.respondError(c, err, "Login failed")
		return
	}

	if !utils.CheckPasswordHash(req.Password, admin.Password) || admin.Role != models.RoleAdmin {
		h.logger().Warn("admin login rejected", slog.String("email", email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.GenerateJWT(admin.ID, admin.Role)
	if err != nil {
		h.respondError(c, err, "Could not generate token")
		return
	}

	// Don't send password back
	admin.Password = ""
	c.JSON(http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.Tokens.TTL().Seconds()),
		Admin:     admin,
	})
}
