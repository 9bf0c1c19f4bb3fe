package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListSessions returns the most recent sessions, optionally filtered by
// status, user or counsellor.
func (h *Handler) ListSessions(c *gin.Context) {
	var q models.SessionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if err := models.ValidateRequest(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessions, err := h.Sessions.List(c.Request.Context(), repository.SessionFilter{
		Status:       q.Status,
		UserID:       q.UserID,
		CounsellorID: q.CounsellorID,
		Limit:        q.Limit,
	})
	if err != nil {
		h.respondError(c, err, "Failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// ReconcileDeletions finishes deletions left half done in the journal.
func (h *Handler) ReconcileDeletions(c *gin.Context) {
	out, err := h.Deletion.Reconcile(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to reconcile deletions")
		return
	}
	c.JSON(http.StatusOK, out)
}
