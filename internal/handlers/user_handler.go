package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mindcare-admin-api/internal/identity"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
	"github.com/harentsoaR/mindcare-admin-api/internal/services"
)

// --- LIST USERS (with filtering & paging) ---
func (h *Handler) ListUsers(c *gin.Context) {
	var q models.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if err := models.ValidateRequest(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.UserFilter{
		Role:        models.Role(q.Role),
		VisibleOnly: q.Visible,
		// stored emails are lowercase, as the identity service keeps them
		EmailPrefix: strings.ToLower(strings.TrimSpace(q.Search)),
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if q.Status != "" {
		st, err := models.ParseVerificationStatus(q.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Status = st
	}
	h.listUsers(c, filter)
}

func (h *Handler) listUsers(c *gin.Context, filter repository.UserFilter) {
	ctx := c.Request.Context()
	users, err := h.Users.List(ctx, filter)
	if err != nil {
		h.respondError(c, err, "Failed to list users")
		return
	}
	total, err := h.Users.Count(ctx, filter)
	if err != nil {
		h.respondError(c, err, "Failed to count users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// GetUser returns the profile together with the state of its login
// account, so operators can spot profiles left behind by a partial delete.
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.Users.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch user")
		return
	}

	detail := models.UserDetail{User: *user}
	if h.Identities != nil {
		acct, err := h.Identities.GetUser(ctx, user.UID)
		switch {
		case errors.Is(err, identity.ErrNotFound):
			detail.Account = &models.AccountStatus{}
		case err != nil:
			h.logger().Warn("identity lookup failed", slog.String("uid", user.UID), slog.Any("error", err))
		default:
			detail.Account = &models.AccountStatus{Exists: true, Disabled: acct.Disabled, Email: acct.Email}
		}
	}
	c.JSON(http.StatusOK, detail)
}

// --- DELETE ONE USER ---
func (h *Handler) DeleteUser(c *gin.Context) {
	h.deleteOne(c, c.Param("id"))
}

// DeleteUsers accepts {"userId": "..."} or
// {"action": "bulk-delete", "userIds": [...]}.
func (h *Handler) DeleteUsers(c *gin.Context) {
	var req models.DeleteUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.DeleteResponse{Message: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.DeleteResponse{Message: err.Error()})
		return
	}

	if req.Action != models.ActionBulkDelete {
		h.deleteOne(c, req.UserID)
		return
	}

	out, err := h.Deletion.BulkDelete(c.Request.Context(), req.UserIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.DeleteResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{
		Success: true,
		Message: fmt.Sprintf("Deleted %d of %d users", len(out.Success), len(req.UserIDs)),
		Results: out,
	})
}

func (h *Handler) deleteOne(c *gin.Context, uid string) {
	err := h.Deletion.DeleteUser(c.Request.Context(), uid)
	switch {
	case errors.Is(err, services.ErrEmptyUserID):
		c.JSON(http.StatusBadRequest, models.DeleteResponse{Message: err.Error()})
	case err != nil:
		h.logger().Error("delete user failed", slog.String("uid", uid), slog.Any("error", err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.DeleteResponse{Message: "Failed to delete user"})
	default:
		c.JSON(http.StatusOK, models.DeleteResponse{Success: true, Message: "User deleted successfully"})
	}
}

func (h *Handler) UpdatePushToken(c *gin.Context) {
	var req models.PushTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.SetPushToken(c.Request.Context(), c.Param("id"), req.Token); err != nil {
		h.respondError(c, err, "Failed to update push token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token updated successfully"})
}
