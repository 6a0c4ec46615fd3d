// Package admin exposes the SUPER_ADMIN membership management
// endpoints. Role enforcement happens in the router middleware chain.
package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/repositories"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles /api/v1/admin endpoints
type Controller struct {
	admin  services.AdminService
	writer *response.Writer
	logger *zap.Logger
}

// NewController creates the admin controller
func NewController(admin services.AdminService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{admin: admin, writer: writer, logger: logger}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func actor(r *http.Request) *contextutils.Identity {
	identity, _ := contextutils.GetIdentity(r.Context())
	return identity
}

// DashboardStats handles GET /admin/dashboard-stats
func (c *Controller) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.admin.DashboardStats(r.Context())
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users
func (c *Controller) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := response.ParsePagination(r)
	filter := repositories.UserFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("class_id"); v != "" {
		if classID, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ClassID = classID
		}
	}

	users, total, err := c.admin.ListUsers(r.Context(), actor(r), filter, services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, response.NewPaginated(users, p, total))
}

// ApproveUser handles PATCH /admin/users/{id}/approve
func (c *Controller) ApproveUser(w http.ResponseWriter, r *http.Request) {
	c.userAction(w, r, func(id int64) (interface{}, error) {
		return c.admin.ApproveUser(r.Context(), actor(r), id)
	})
}

// RejectUser handles PATCH /admin/users/{id}/reject
func (c *Controller) RejectUser(w http.ResponseWriter, r *http.Request) {
	c.userAction(w, r, func(id int64) (interface{}, error) {
		return c.admin.RejectUser(r.Context(), actor(r), id)
	})
}

// SuspendUser handles PATCH /admin/users/{id}/suspend
func (c *Controller) SuspendUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req services.SuspendUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.admin.SuspendUser(r.Context(), actor(r), id, &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}

// ReactivateUser handles PATCH /admin/users/{id}/reactivate
func (c *Controller) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	c.userAction(w, r, func(id int64) (interface{}, error) {
		return c.admin.ReactivateUser(r.Context(), actor(r), id)
	})
}

// PromoteLeader handles PATCH /admin/users/{id}/promote
func (c *Controller) PromoteLeader(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req services.PromoteLeaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.admin.PromoteLeader(r.Context(), actor(r), id, &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}

// DemoteLeader handles PATCH /admin/users/{id}/demote
func (c *Controller) DemoteLeader(w http.ResponseWriter, r *http.Request) {
	c.userAction(w, r, func(id int64) (interface{}, error) {
		return c.admin.DemoteLeader(r.Context(), actor(r), id)
	})
}

// PromoteRole handles PATCH /admin/users/{id}/role
func (c *Controller) PromoteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req services.PromoteRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.admin.PromoteRole(r.Context(), actor(r), id, &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}

// ChangeClass handles PATCH /admin/users/{id}/class
func (c *Controller) ChangeClass(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req services.ChangeClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.admin.ChangeClass(r.Context(), actor(r), id, &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}

// OfficeData handles GET /admin/office
func (c *Controller) OfficeData(w http.ResponseWriter, r *http.Request) {
	data, err := c.admin.OfficeData(r.Context(), actor(r))
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, data)
}

// PendingOffice handles GET /admin/office/pending
func (c *Controller) PendingOffice(w http.ResponseWriter, r *http.Request) {
	users, err := c.admin.PendingOfficeRequests(r.Context())
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, users)
}

// ApproveOffice handles PATCH /admin/office/{id}/approve
func (c *Controller) ApproveOffice(w http.ResponseWriter, r *http.Request) {
	c.userAction(w, r, func(id int64) (interface{}, error) {
		return c.admin.ApproveOfficeMember(r.Context(), actor(r), id)
	})
}

// DisapproveOffice handles PATCH /admin/office/{id}/disapprove
func (c *Controller) DisapproveOffice(w http.ResponseWriter, r *http.Request) {
	c.userAction(w, r, func(id int64) (interface{}, error) {
		return c.admin.DisapproveOfficeMember(r.Context(), actor(r), id)
	})
}

// ActivityLogs handles GET /admin/activity-logs
func (c *Controller) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	p := response.ParsePagination(r)
	logs, total, err := c.admin.ActivityLogs(r.Context(), services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, response.NewPaginated(logs, p, total))
}

// UserWarnings handles GET /admin/users/{id}/warnings
func (c *Controller) UserWarnings(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	warnings, err := c.admin.UserWarnings(r.Context(), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, warnings)
}

func (c *Controller) userAction(w http.ResponseWriter, r *http.Request, fn func(id int64) (interface{}, error)) {
	id, ok := idParam(r)
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	result, err := fn(id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, result)
}
