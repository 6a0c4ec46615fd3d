// Package router wires the HTTP surface to the service layer.
package router

import (
	"net/http"
	"time"

	"mahberhub/internal/cache"
	"mahberhub/internal/config"
	"mahberhub/internal/database"
	"mahberhub/internal/handlers/api/v1/admin"
	"mahberhub/internal/handlers/api/v1/announcements"
	"mahberhub/internal/handlers/api/v1/auth"
	"mahberhub/internal/handlers/api/v1/classes"
	"mahberhub/internal/handlers/api/v1/messages"
	"mahberhub/internal/handlers/api/v1/notifications"
	"mahberhub/internal/handlers/api/v1/posts"
	"mahberhub/internal/handlers/api/v1/uploads"
	"mahberhub/internal/middleware"
	"mahberhub/internal/realtime"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to assemble routes
type Dependencies struct {
	Config   *config.Config
	Services *services.Collection
	Auth     *middleware.AuthMiddleware
	Writer   *response.Writer
	Hub      *realtime.Hub
	DB       *database.Manager
	Cache    cache.Cache
	Logger   *zap.Logger
}

// New builds the full route tree
func New(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP)
	r.Use(middleware.CORS(deps.Config.Server.CORSOrigins))
	r.Use(middleware.Logging(deps.Logger))

	authCtrl := auth.NewController(deps.Services.Auth, deps.Services.Uploads, deps.Writer, deps.Logger)
	adminCtrl := admin.NewController(deps.Services.Admin, deps.Writer, deps.Logger)
	classCtrl := classes.NewController(deps.Services.Classes, deps.Writer, deps.Logger)
	postCtrl := posts.NewController(deps.Services.Posts, deps.Writer, deps.Logger)
	annCtrl := announcements.NewController(deps.Services.Announcements, deps.Writer, deps.Logger)
	msgCtrl := messages.NewController(deps.Services.Messages, deps.Writer, deps.Logger)
	notifCtrl := notifications.NewController(deps.Services.Notifications, deps.Writer, deps.Logger)
	uploadCtrl := uploads.NewController(deps.Services.Uploads, deps.Writer, deps.Logger)

	r.Get("/health", healthHandler(deps))

	// Uploaded images are served straight off the local disk.
	fileServer := http.StripPrefix(deps.Config.Uploads.PublicPath+"/", http.FileServer(http.Dir(deps.Config.Uploads.Dir)))
	r.Get(deps.Config.Uploads.PublicPath+"/*", fileServer.ServeHTTP)

	limiter := middleware.NewRateLimiter(deps.Cache, deps.Writer, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: registration needs the class list before login.
		// Credential endpoints are throttled per IP against brute force.
		r.With(limiter.Limit("register", 5, 15*time.Minute)).Post("/auth/register", authCtrl.Register)
		r.With(limiter.Limit("login", 10, 15*time.Minute)).Post("/auth/login", authCtrl.Login)
		r.Get("/classes", classCtrl.List)
		// Profile pictures are chosen before the account exists.
		r.Post("/uploads/public-image", uploadCtrl.Image)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)

			// Pending and office-pending members can still see their
			// own profile while waiting for approval.
			r.Get("/auth/me", authCtrl.Me)
			r.Patch("/auth/me", authCtrl.UpdateProfile)
			r.Post("/auth/me/image", authCtrl.UploadProfileImage)

			r.Group(func(r chi.Router) {
				r.Use(deps.Auth.RequireActive)

				r.Get("/ws", deps.Hub.ServeHTTP)

				r.Post("/uploads/image", uploadCtrl.Image)

				r.Get("/classes/{id}", classCtrl.Get)
				r.Get("/classes/{id}/members", classCtrl.Members)

				r.Route("/posts", func(r chi.Router) {
					r.Post("/", postCtrl.Create)
					r.Get("/", postCtrl.List)
					r.Get("/{id}", postCtrl.Get)
					r.Delete("/{id}", postCtrl.Delete)
					r.Patch("/{id}/pin", postCtrl.TogglePin)
					r.Put("/{id}/reaction", postCtrl.React)
					r.Delete("/{id}/reaction", postCtrl.RemoveReaction)
					r.Get("/{id}/comments", postCtrl.ListComments)
					r.Post("/{id}/comments", postCtrl.AddComment)
					r.Delete("/{id}/comments/{commentID}", postCtrl.DeleteComment)
				})

				r.Route("/announcements", func(r chi.Router) {
					r.Get("/", annCtrl.List)
					r.Post("/", annCtrl.Create)
					r.Delete("/{id}", annCtrl.Delete)
					r.Patch("/{id}/pin", annCtrl.TogglePin)
				})

				r.Route("/messages", func(r chi.Router) {
					r.Post("/", msgCtrl.Send)
					r.Get("/conversations", msgCtrl.Conversations)
					r.Get("/conversations/{peerID}", msgCtrl.Conversation)
					r.Get("/unread-count", msgCtrl.UnreadCount)
					r.Get("/users/search", msgCtrl.SearchUsers)
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", notifCtrl.List)
					r.Patch("/{id}/read", notifCtrl.MarkRead)
					r.Patch("/read-all", notifCtrl.MarkAllRead)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(deps.Auth.RequireAdmin)

				r.Get("/dashboard", adminCtrl.DashboardStats)
				r.Get("/users", adminCtrl.ListUsers)
				r.Patch("/users/{id}/approve", adminCtrl.ApproveUser)
				r.Patch("/users/{id}/reject", adminCtrl.RejectUser)
				r.Patch("/users/{id}/suspend", adminCtrl.SuspendUser)
				r.Patch("/users/{id}/reactivate", adminCtrl.ReactivateUser)
				r.Patch("/users/{id}/promote", adminCtrl.PromoteLeader)
				r.Patch("/users/{id}/demote", adminCtrl.DemoteLeader)
				r.Patch("/users/{id}/role", adminCtrl.PromoteRole)
				r.Patch("/users/{id}/class", adminCtrl.ChangeClass)
				r.Get("/users/{id}/warnings", adminCtrl.UserWarnings)

				r.Get("/office", adminCtrl.OfficeData)
				r.Get("/office/pending", adminCtrl.PendingOffice)
				r.Patch("/office/{id}/approve", adminCtrl.ApproveOffice)
				r.Patch("/office/{id}/disapprove", adminCtrl.DisapproveOffice)

				r.Get("/activity-logs", adminCtrl.ActivityLogs)
			})
		})
	})

	return r
}

func healthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := deps.DB.Health(r.Context())
		payload := map[string]interface{}{
			"database": status,
			"cache":    "ok",
		}
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		if err := deps.Cache.Health(r.Context()); err != nil {
			payload["cache"] = err.Error()
		}
		deps.Writer.Success(w, r, code, payload)
	}
}
