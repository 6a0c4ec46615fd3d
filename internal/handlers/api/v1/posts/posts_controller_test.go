package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubPostService implements services.PostService with canned data
type stubPostService struct {
	createErr error
}

func (s *stubPostService) CreatePost(ctx context.Context, actor *contextutils.Identity, req *services.CreatePostRequest) (*models.Post, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Post{ID: 1, AuthorID: actor.UserID, Title: req.Title, Content: req.Content, TargetType: req.TargetType}, nil
}

func (s *stubPostService) ListPosts(ctx context.Context, actor *contextutils.Identity, page services.Page) ([]*models.Post, int64, error) {
	return []*models.Post{
		{ID: 1, Title: "Pinned notice", IsPinned: true},
		{ID: 2, Title: "Weekly program"},
	}, 2, nil
}

func (s *stubPostService) GetPost(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.Post, error) {
	return &models.Post{ID: postID, Title: "Weekly program"}, nil
}

func (s *stubPostService) DeletePost(ctx context.Context, actor *contextutils.Identity, postID int64) error {
	return nil
}

func (s *stubPostService) TogglePin(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.Post, error) {
	return &models.Post{ID: postID, IsPinned: true}, nil
}

func (s *stubPostService) React(ctx context.Context, actor *contextutils.Identity, postID int64, req *services.ReactRequest) (*models.ReactionCounts, error) {
	return &models.ReactionCounts{Likes: 3, Dislikes: 1}, nil
}

func (s *stubPostService) RemoveReaction(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.ReactionCounts, error) {
	return &models.ReactionCounts{}, nil
}

func (s *stubPostService) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return nil, nil
}

func (s *stubPostService) AddComment(ctx context.Context, actor *contextutils.Identity, postID int64, req *services.CreateCommentRequest) (*models.Comment, error) {
	return &models.Comment{ID: 1, PostID: postID, Content: req.Content}, nil
}

func (s *stubPostService) DeleteComment(ctx context.Context, actor *contextutils.Identity, postID, commentID int64) error {
	return nil
}

func newTestRouter(svc services.PostService) http.Handler {
	logger := zap.NewNop()
	ctrl := NewController(svc, response.NewWriter(logger), logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			identity := &contextutils.Identity{
				UserID: 20,
				Role:   models.RoleClassLeader,
				Status: models.StatusActive,
			}
			next.ServeHTTP(w, req.WithContext(contextutils.WithIdentity(req.Context(), identity)))
		})
	})
	r.Post("/posts", ctrl.Create)
	r.Get("/posts", ctrl.List)
	r.Get("/posts/{id}", ctrl.Get)
	r.Put("/posts/{id}/reaction", ctrl.React)
	return r
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func TestCreatePostReturnsEnvelope(t *testing.T) {
	router := newTestRouter(&stubPostService{})

	body := `{"title":"Weekly program","content":"Practice moved","target_type":"CLASS","service_class_id":2}`
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "success", env.Status)

	var post models.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, "Weekly program", post.Title)
	assert.Equal(t, int64(20), post.AuthorID)
}

func TestCreatePostRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&stubPostService{})

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "fail", env.Status)
}

func TestCreatePostMapsServiceError(t *testing.T) {
	router := newTestRouter(&stubPostService{
		createErr: services.NewForbiddenError("members cannot create posts"),
	})

	body := `{"title":"t","content":"c","target_type":"GLOBAL"}`
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListPostsPaginates(t *testing.T) {
	router := newTestRouter(&stubPostService{})

	req := httptest.NewRequest(http.MethodGet, "/posts?page=1&limit=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var page response.Paginated
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, 1, page.Page)
}

func TestGetPostRejectsBadID(t *testing.T) {
	router := newTestRouter(&stubPostService{})

	req := httptest.NewRequest(http.MethodGet, "/posts/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReactReturnsCounts(t *testing.T) {
	router := newTestRouter(&stubPostService{})

	req := httptest.NewRequest(http.MethodPut, "/posts/1/reaction", strings.NewReader(`{"reaction_type":"LIKE"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var counts models.ReactionCounts
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, 3, counts.Likes)
}
