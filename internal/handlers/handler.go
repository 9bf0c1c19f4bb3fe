package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
	"github.com/harentsoaR/mindcare-admin-api/internal/services"
)

type Moderator interface {
	SetVerification(ctx context.Context, uid, status string, isApproved *bool) (*models.User, error)
	Approve(ctx context.Context, uid string) (*models.User, error)
	Reject(ctx context.Context, uid string) (*models.User, error)
}

type Deleter interface {
	DeleteUser(ctx context.Context, uid string) error
	BulkDelete(ctx context.Context, uids []string) (*models.BulkOutcomes, error)
	Reconcile(ctx context.Context) (*models.BulkOutcomes, error)
}

type Pusher interface {
	Send(ctx context.Context, token string, n services.Notification) (string, error)
	SendBatch(ctx context.Context, tokens []string, n services.Notification) (*models.BatchPushResponse, error)
	SendToUser(ctx context.Context, uid string, n services.Notification) (string, error)
}

type StatsProvider interface {
	Dashboard(ctx context.Context) (*models.Stats, error)
}

type TokenIssuer interface {
	GenerateJWT(userID, role string) (string, error)
	TTL() time.Duration
}

// Handler holds everything the admin routes need.
type Handler struct {
	Users      repository.UserRepository
	Sessions   repository.SessionRepository
	Admins     repository.AdminRepository
	Identities identity.Store
	Moderation Moderator
	Deletion   Deleter
	Push       Pusher
	Stats      StatsProvider
	Tokens     TokenIssuer
	Logger     *slog.Logger
}

// Routes registers the admin API on r. protect is applied to every /api
// route and login is applied to POST /auth/login.
func (h *Handler) Routes(r gin.IRouter, login gin.HandlerFunc, protect ...gin.HandlerFunc) {
	auth := r.Group("/auth")
	if login != nil {
		auth.POST("/login", login, h.Login)
	} else {
		auth.POST("/login", h.Login)
	}

	api := r.Group("/api")
	api.Use(protect...)
	{
		api.GET("/users", h.ListUsers)
		api.GET("/users/:id", h.GetUser)
		api.DELETE("/users/:id", h.DeleteUser)
		api.POST("/users/delete", h.DeleteUsers)
		api.PUT("/users/:id/push-token", h.UpdatePushToken)

		api.GET("/counsellors", h.ListCounsellors)
		api.PATCH("/counsellors/:id/verification", h.UpdateVerification)
		api.POST("/counsellors/:id/approve", h.ApproveCounsellor)
		api.POST("/counsellors/:id/reject", h.RejectCounsellor)

		api.POST("/notifications/send", h.SendNotification)
		api.POST("/notifications/batch", h.SendBatchNotification)
		api.POST("/notifications/users/:id", h.NotifyUser)

		api.GET("/sessions", h.ListSessions)

		api.GET("/stats", h.GetStats)
		api.POST("/deletions/reconcile", h.ReconcileDeletions)
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// bindJSON decodes and validates a request body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	if err := models.ValidateRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError maps service and store errors to a status code.
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	var provider *services.ProviderError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, models.ErrInconsistentVerification),
		errors.Is(err, services.ErrNotCounsellor),
		errors.Is(err, services.ErrNoTokens):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoPushToken):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &provider):
		c.JSON(http.StatusBadGateway, gin.H{"error": provider.Message})
	default:
		h.logger().Error(msg, slog.String("path", c.FullPath()), slog.Any("error", err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
