package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/services"
)

func toNotification(req models.NotificationRequest) services.Notification {
	return services.Notification{Title: req.Title, Body: req.Body, Data: req.Data}
}

func (h *Handler) SendNotification(c *gin.Context) {
	var req models.SendNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.Push.Send(c.Request.Context(), req.Token, toNotification(req.NotificationRequest))
	if err != nil {
		h.respondError(c, err, "Failed to send notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messageId": id})
}

// SendBatchNotification always answers 200 with per-token outcomes once
// the batch has run.
func (h *Handler) SendBatchNotification(c *gin.Context) {
	var req models.BatchNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Push.SendBatch(c.Request.Context(), req.Tokens, toNotification(req.NotificationRequest))
	if err != nil {
		h.respondError(c, err, "Failed to send notifications")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) NotifyUser(c *gin.Context) {
	var req models.NotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.Push.SendToUser(c.Request.Context(), c.Param("id"), toNotification(req))
	if err != nil {
		h.respondError(c, err, "Failed to send notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messageId": id})
}
