// Package posts exposes posts, reactions and comments.
package posts

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

// Controller handles /api/v1/posts endpoints
type Controller struct {
	posts  services.PostService
	writer *response.Writer
	logger *zap.Logger
}

// NewController creates the posts controller
func NewController(posts services.PostService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{posts: posts, writer: writer, logger: logger}
}

func param(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func actor(r *http.Request) *contextutils.Identity {
	identity, _ := contextutils.GetIdentity(r.Context())
	return identity
}

// Create handles POST /posts
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := c.posts.CreatePost(r.Context(), actor(r), &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Created(w, r, post)
}

// List handles GET /posts
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	p := response.ParsePagination(r)
	posts, total, err := c.posts.ListPosts(r.Context(), actor(r), services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, response.NewPaginated(posts, p, total))
}

// Get handles GET /posts/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := c.posts.GetPost(r.Context(), actor(r), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, post)
}

// Delete handles DELETE /posts/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := c.posts.DeletePost(r.Context(), actor(r), id); err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// TogglePin handles PATCH /posts/{id}/pin
func (c *Controller) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := c.posts.TogglePin(r.Context(), actor(r), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, post)
}

// React handles POST /posts/{id}/react
func (c *Controller) React(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	var req services.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	counts, err := c.posts.React(r.Context(), actor(r), id, &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, counts)
}

// RemoveReaction handles DELETE /posts/{id}/react
func (c *Controller) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	counts, err := c.posts.RemoveReaction(r.Context(), actor(r), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, counts)
}

// ListComments handles GET /posts/{id}/comments
func (c *Controller) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := c.posts.ListComments(r.Context(), id)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, comments)
}

// AddComment handles POST /posts/{id}/comments
func (c *Controller) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}

	var req services.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := c.posts.AddComment(r.Context(), actor(r), id, &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Created(w, r, comment)
}

// DeleteComment handles DELETE /posts/{id}/comments/{commentID}
func (c *Controller) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := param(r, "id")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid post id")
		return
	}
	commentID, ok := param(r, "commentID")
	if !ok {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := c.posts.DeleteComment(r.Context(), actor(r), postID, commentID); err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, map[string]bool{"deleted": true})
}
