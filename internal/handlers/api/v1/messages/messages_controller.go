// Package messages exposes direct messaging between members.
package messages

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

// Controller handles /api/v1/messages endpoints
type Controller struct {
	messages services.MessageService
	writer   *response.Writer
	logger   *zap.Logger
}

// NewController creates the messages controller
func NewController(messages services.MessageService, writer *response.Writer, logger *zap.Logger) *Controller {
	return &Controller{messages: messages, writer: writer, logger: logger}
}

func actor(r *http.Request) *contextutils.Identity {
	identity, _ := contextutils.GetIdentity(r.Context())
	return identity
}

// Send handles POST /messages
func (c *Controller) Send(w http.ResponseWriter, r *http.Request) {
	var req services.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := c.messages.Send(r.Context(), actor(r), &req)
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Created(w, r, msg)
}

// Conversations handles GET /messages/conversations
func (c *Controller) Conversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := c.messages.Conversations(r.Context(), actor(r))
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, conversations)
}

// Conversation handles GET /messages/conversations/{peerID}
func (c *Controller) Conversation(w http.ResponseWriter, r *http.Request) {
	peerID, err := strconv.ParseInt(chi.URLParam(r, "peerID"), 10, 64)
	if err != nil || peerID <= 0 {
		c.writer.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	p := response.ParsePagination(r)
	msgs, total, err := c.messages.Conversation(r.Context(), actor(r), peerID, services.Page{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, response.NewPaginated(msgs, p, total))
}

// UnreadCount handles GET /messages/unread-count
func (c *Controller) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := c.messages.UnreadCount(r.Context(), actor(r))
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, map[string]int64{"unread_count": count})
}

// SearchUsers handles GET /messages/users/search?q=
func (c *Controller) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.messages.SearchUsers(r.Context(), actor(r), r.URL.Query().Get("q"))
	if err != nil {
		c.writer.FromError(w, r, err)
		return
	}
	c.writer.Success(w, r, http.StatusOK, users)
}
