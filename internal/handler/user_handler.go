package handler

import (
	"net/http"
	"time"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/middleware"
	"vidtube/internal/service"
	"vidtube/pkg/api"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshTokenCookie is the cookie holding the refresh token
const RefreshTokenCookie = "RefreshToken"

// CookieConfig controls the auth cookies
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// UserHandler handles account requests
type UserHandler struct {
	users     service.UserService
	stager    *media.Stager
	maxUpload int64
	cookies   CookieConfig
	logger    *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users service.UserService, stager *media.Stager, maxUpload int64, cookies CookieConfig, logger *logger.Logger) *UserHandler {
	return &UserHandler{users: users, stager: stager, maxUpload: maxUpload, cookies: cookies, logger: logger}
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	f, err := parseForm(w, r, h.stager, h.maxUpload)
	if err != nil {
		return err
	}
	defer f.Cleanup()

	avatar, err := f.File("avatar")
	if err != nil {
		return err
	}
	cover, err := f.File("coverImage")
	if err != nil {
		return err
	}

	user, err := h.users.Register(r.Context(), domain.RegisterInput{
		Username: f.Value("username"),
		Email:    f.Value("email"),
		FullName: f.Value("fullName"),
		Password: f.Value("password"),
	}, avatar, cover)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusCreated, user, "User registered successfully")
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var in domain.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}

	res, err := h.users.Login(r.Context(), in)
	if err != nil {
		return err
	}

	h.setAuthCookies(w, &res.TokenPair)
	return api.JSON(w, http.StatusOK, res, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.users.Logout(r.Context(), userID); err != nil {
		return err
	}

	h.clearAuthCookies(w)
	return api.JSON(w, http.StatusOK, map[string]interface{}{}, "User logged out")
}

// RefreshToken handles POST /api/v1/users/refresh-token
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		body.RefreshToken = c.Value
	}
	if body.RefreshToken == "" {
		if err := decodeJSON(r, &body); err != nil {
			return err
		}
	}

	tokens, err := h.users.RefreshTokens(r.Context(), body.RefreshToken)
	if err != nil {
		return err
	}

	h.setAuthCookies(w, tokens)
	return api.JSON(w, http.StatusOK, tokens, "Access token refreshed")
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	user, err := h.users.GetCurrentUser(r.Context(), userID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, user, "Current user fetched successfully")
}

// History handles GET /api/v1/users/history
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	videos, err := h.users.WatchHistory(r.Context(), userID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, videos, "Watch history fetched successfully")
}

// Channel handles GET /api/v1/users/channel/{username}
func (h *UserHandler) Channel(w http.ResponseWriter, r *http.Request) error {
	username := chi.URLParam(r, "username")
	if username == "" {
		return errors.NewValidationError("Username is required", nil)
	}

	var viewer *primitive.ObjectID
	if id, ok := middleware.GetUserID(r.Context()); ok {
		viewer = &id
	}

	profile, err := h.users.ChannelProfile(r.Context(), username, viewer)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, profile, "Channel fetched successfully")
}

func (h *UserHandler) setAuthCookies(w http.ResponseWriter, tokens *domain.TokenPair) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, tokens.AccessToken, h.cookies.AccessTTL))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, tokens.RefreshToken, h.cookies.RefreshTTL))
}

func (h *UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := h.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *UserHandler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
