// Package notifications exposes the per-user notification feed.
package notifications

import (
	"net/http"
	"strconv"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles /api/v1/notifications endpoints
type Controller struct {
	notifications services.NotificationService
	writer        *response.Writer
	logger        *zap.Logger
}

// NewController creates the notifications controller
func NewController(notifications services.NotificationService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{notifications: notifications, writer: writer, logger: logger}
}

func userID(r *http.Request) int64 {
	return contextutils.GetUserID(r.Context())
}

// List handles GET /notifications
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	p := response.ParsePagination(r)
	feed, err := c.notifications.List(r.Context(), userID(r), services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, feed)
}

// MarkRead handles PATCH /notifications/{id}/read
func (c *Controller) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := c.notifications.MarkRead(r.Context(), userID(r), id); err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllRead handles PATCH /notifications/read-all
func (c *Controller) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := c.notifications.MarkAllRead(r.Context(), userID(r)); err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, map[string]bool{"read": true})
}
