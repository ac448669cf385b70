package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/shared/auth"
	"mindwell-backend/internal/shared/server/middleware"
	"mindwell-backend/internal/shared/server/respond"
	"mindwell-backend/internal/shared/telemetry"
)

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(subject string, claims auth.Claims) (string, error)
}

type Handler struct {
	Svc    *Service
	Tokens TokenSigner
	// OnLogout runs after a successful logout, e.g. to drop chat history.
	OnLogout func(userID string)
}

func NewHandler(svc *Service, tokens TokenSigner) *Handler {
	return &Handler{Svc: svc, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/me", h.me)
}

type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	user, err := h.Svc.SignUp(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		case errors.Is(err, ErrUsernameTaken):
			respond.Error(c, http.StatusConflict, "username_taken", "Username already exists. Please choose another.", nil)
		default:
			respond.Fail(c, respond.Internal("internal_error", "failed to create account", err))
		}
		return
	}
	h.issue(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	user, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password.", nil)
			return
		}
		respond.Fail(c, respond.Internal("internal_error", "failed to log in", err))
		return
	}
	h.issue(c, http.StatusOK, user)
}

func (h *Handler) issue(c *gin.Context, status int, user User) {
	token, err := h.Tokens.Sign(user.ID, auth.Claims{
		Name:     DisplayName(user),
		Email:    user.Email,
		Provider: user.Provider,
	})
	if err != nil {
		respond.Fail(c, respond.Internal("internal_error", "failed to issue token", err))
		return
	}
	telemetry.Info("auth.session.issued", map[string]any{
		"user_id":  user.ID,
		"provider": user.Provider,
	})
	respond.JSON(c, status, sessionResponse{Token: token, User: user})
}

func (h *Handler) logout(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	if h.OnLogout != nil {
		h.OnLogout(userID)
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Fail(c, respond.Internal("internal_error", "failed to load user", err))
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"displayName": DisplayName(user),
		"provider":    user.Provider,
		"email":       user.Email,
	})
}
