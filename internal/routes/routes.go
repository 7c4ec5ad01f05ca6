package routes

import (
	"net/http"

	"github.com/nimbusdrive/nimbus/internal/app"
	"github.com/nimbusdrive/nimbus/internal/handler"
	"github.com/nimbusdrive/nimbus/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Manager, app.Cfg)
	drive := handler.NewDriveHandler(app.Manager, app.Renderer)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Auth - Authentication flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// OAuth
	mux.HandleFunc("GET /auth/google", rateLimiter(auth.GoogleAuth))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))

	// ============================================================================
	// PROTECTED ROUTES (/app/*)
	// ============================================================================

	mux.HandleFunc("GET /app/me", middleware.RequireAuth(auth.Me))

	// Drive projection and navigation
	mux.HandleFunc("GET /app/drive", middleware.RequireAuth(drive.Drive))
	mux.HandleFunc("GET /app/storage", middleware.RequireAuth(drive.Storage))

	// Files
	mux.HandleFunc("POST /app/files", middleware.RequireAuth(drive.Upload))
	mux.HandleFunc("GET /app/files/{id}/download", middleware.RequireAuth(drive.Download))
	mux.HandleFunc("GET /app/files/{id}/preview", middleware.RequireAuth(drive.Preview))
	mux.HandleFunc("GET /app/files/{id}/render", middleware.RequireAuth(drive.Render))
	mux.HandleFunc("PATCH /app/files/{id}/star", middleware.RequireAuth(drive.ToggleStar))
	mux.HandleFunc("PATCH /app/files/{id}/name", middleware.RequireAuth(drive.Rename))
	mux.HandleFunc("POST /app/files/{id}/chat", middleware.RequireAuth(drive.Chat))

	// Folders
	mux.HandleFunc("POST /app/folders", middleware.RequireAuth(drive.CreateFolder))

	// Trash lifecycle
	mux.HandleFunc("DELETE /app/items/{id}", middleware.RequireAuth(drive.Delete))
	mux.HandleFunc("PATCH /app/items/{id}/restore", middleware.RequireAuth(drive.Restore))
	mux.HandleFunc("POST /app/trash/empty", middleware.RequireAuth(drive.EmptyTrash))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)
}
