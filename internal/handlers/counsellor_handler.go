package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/repository"
)

// ListCounsellors supports ?status= and ?visible=true, which returns only
// counsellors end users can book.
func (h *Handler) ListCounsellors(c *gin.Context) {
	filter := repository.UserFilter{Role: models.RoleCounsellor}

	if s := c.Query("status"); s != "" {
		st, err := models.ParseVerificationStatus(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Status = st
	}
	if v := c.Query("visible"); v != "" {
		visible, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "visible must be a boolean"})
			return
		}
		filter.VisibleOnly = visible
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 || limit > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		filter.Limit = limit
	}
	if o := c.Query("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		filter.Offset = offset
	}

	h.listUsers(c, filter)
}

func (h *Handler) UpdateVerification(c *gin.Context) {
	var req models.VerificationRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Moderation.SetVerification(c.Request.Context(), c.Param("id"), req.Status, req.IsApproved)
	if err != nil {
		h.respondError(c, err, "Failed to update verification status")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ApproveCounsellor(c *gin.Context) {
	user, err := h.Moderation.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to approve counsellor")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) RejectCounsellor(c *gin.Context) {
	user, err := h.Moderation.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to reject counsellor")
		return
	}
	c.JSON(http.StatusOK, user)
}
