// Package classes exposes the service class directory.
package classes

import (
	"net/http"
	"strconv"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles /api/v1/classes endpoints
type Controller struct {
	classes services.ClassService
	writer  *response.Writer
	logger  *zap.Logger
}

// NewController creates the classes controller
func NewController(classes services.ClassService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{classes: classes, writer: writer, logger: logger}
}

// List handles GET /classes. Public so the registration form can
// offer the class choices.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	classes, err := c.classes.ListClasses(r.Context())
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, classes)
}

// Get handles GET /classes/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid class id")
		return
	}

	class, err := c.classes.GetClass(r.Context(), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, class)
}

// Members handles GET /classes/{id}/members
func (c *Controller) Members(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid class id")
		return
	}

	identity, _ := contextutils.GetIdentity(r.Context())
	p := response.ParsePagination(r)

	members, total, err := c.classes.ListMembers(r.Context(), identity, id, services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, response.NewPaginated(members, p, total))
}
