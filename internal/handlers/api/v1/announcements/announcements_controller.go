// Package announcements exposes broadcast announcements.
package announcements

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles /api/v1/announcements endpoints
type Controller struct {
	announcements services.AnnouncementService
	writer        *response.Writer
	logger        *zap.Logger
}

// NewController creates the announcements controller
func NewController(announcements services.AnnouncementService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{announcements: announcements, writer: writer, logger: logger}
}

func actor(r *http.Request) *contextutils.Identity {
	identity, _ := contextutils.GetIdentity(r.Context())
	return identity
}

// Create handles POST /announcements
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	announcement, err := c.announcements.Create(r.Context(), actor(r), &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Created(w, r, announcement)
}

// List handles GET /announcements
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	p := response.ParsePagination(r)
	announcements, total, err := c.announcements.List(r.Context(), actor(r), services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, response.NewPaginated(announcements, p, total))
}

// Delete handles DELETE /announcements/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid announcement id")
		return
	}

	if err := c.announcements.Delete(r.Context(), actor(r), id); err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// TogglePin handles PATCH /announcements/{id}/pin
func (c *Controller) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid announcement id")
		return
	}

	announcement, err := c.announcements.TogglePin(r.Context(), actor(r), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, announcement)
}
