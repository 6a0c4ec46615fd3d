// Package auth exposes registration, login and profile endpoints.
package auth

import (
	"encoding/json"
	"net/http"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"go.uber.org/zap"
)

// Controller handles /api/v1/auth endpoints
type Controller struct {
	auth    services.AuthService
	uploads services.UploadService
	writer  *response.Writer
	logger  *zap.Logger
}

// NewController creates the auth controller
func NewController(auth services.AuthService, uploads services.UploadService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{auth: auth, uploads: uploads, writer: writer, logger: logger}
}

// Register handles POST /auth/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.auth.Register(r.Context(), &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Created(w, r, result)
}

// Login handles POST /auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.auth.Login(r.Context(), &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, result)
}

// Me handles GET /auth/me
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.auth.GetProfile(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}

// UpdateProfile handles PUT /auth/me
func (c *Controller) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.auth.UpdateProfile(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}

// UploadProfileImage handles POST /auth/me/image
func (c *Controller) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	url, err := c.uploads.SaveImage(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}

	user, err := c.auth.SetProfileImage(r.Context(), contextutils.GetUserID(r.Context()), url)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, user)
}
