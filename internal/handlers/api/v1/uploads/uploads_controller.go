// Package uploads exposes image upload endpoints. Files land on local
// disk and are served back from the public uploads path.
package uploads

import (
	"net/http"

	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"go.uber.org/zap"
)

// Controller handles /api/v1/uploads endpoints
type Controller struct {
	uploads services.UploadService
	writer  *response.Writer
	logger  *zap.Logger
}

// NewController creates the uploads controller
func NewController(uploads services.UploadService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{uploads: uploads, writer: writer, logger: logger}
}

// Image handles POST /uploads/image. Used for post images and, on the
// public route, the profile picture chosen during registration.
func (c *Controller) Image(w http.ResponseWriter, r *http.Request) {
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
	c.writer.Created(w, r, map[string]string{"url": url})
}
