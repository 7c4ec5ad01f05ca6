package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nimbusdrive/nimbus/internal/config"
	"github.com/nimbusdrive/nimbus/internal/ctxkeys"
	"github.com/nimbusdrive/nimbus/internal/model"
	"github.com/nimbusdrive/nimbus/internal/service"
	"github.com/nimbusdrive/nimbus/internal/vfs"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type AuthHandler struct {
	authService       *service.AuthService
	manager           *vfs.Manager
	googleOAuthConfig *oauth2.Config
	appURL            string
	isProduction      bool
}

func NewAuthHandler(authService *service.AuthService, manager *vfs.Manager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		manager:     manager,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		appURL:       cfg.AppURL,
		isProduction: cfg.IsProduction(),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.authService.Signup(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.startSession(w, user)
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrPasswordlessLogin) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.startSession(w, user)
	user.PasswordHash = nil
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := ctxkeys.User(r.Context()); user != nil {
		h.manager.EndSession(user.ID)
	}
	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}

// GoogleAuth redirects to the Google OAuth consent screen.
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	// Random state token for CSRF protection, carried in a short-lived cookie
	state := generateOAuthState()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	url := h.googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback handles the OAuth callback from Google.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("google oauth state validation failed", "error", err)
		respondError(w, http.StatusUnauthorized, "OAuth authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusUnauthorized, "OAuth authentication failed")
		return
	}

	token, err := h.googleOAuthConfig.Exchange(r.Context(), code)
	if err != nil {
		slog.Warn("google oauth code exchange failed", "error", err)
		respondError(w, http.StatusUnauthorized, "OAuth authentication failed")
		return
	}

	info, err := h.fetchGoogleUserInfo(r, token)
	if err != nil {
		slog.Warn("google userinfo fetch failed", "error", err)
		respondError(w, http.StatusUnauthorized, "OAuth authentication failed")
		return
	}

	user, err := h.authService.AuthenticateOAuth(info.Email, info.Name, info.Picture)
	if err != nil {
		slog.Error("oauth user authentication failed", "error", err)
		respondError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	h.startSession(w, user)
	http.Redirect(w, r, h.appURL, http.StatusSeeOther)
}

type googleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *AuthHandler) fetchGoogleUserInfo(r *http.Request, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.googleOAuthConfig.Client(r.Context(), token)

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	info := &googleUserInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, err
	}
	return info, nil
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *model.User) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate session token", "error", err, "user_id", user.ID)
		return
	}
	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))
}

func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
