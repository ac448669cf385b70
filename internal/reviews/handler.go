package reviews

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/shared/server/middleware"
	"mindwell-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reviews", h.list)
	rg.POST("/reviews", h.create)
}

type createRequest struct {
	Content string `json:"content" form:"review_content"`
}

func (h *Handler) list(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	items, err := h.Svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respond.Fail(c, respond.Internal("internal_error", "failed to load reviews", err))
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) create(c *gin.Context) {
	author := middleware.UserNameFromContext(c)
	if middleware.UserIDFromContext(c) == "" || author == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	review, err := h.Svc.Create(c.Request.Context(), author, req.Content)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		respond.Fail(c, respond.Internal("internal_error", "failed to save review", err))
		return
	}
	respond.JSON(c, http.StatusCreated, review)
}
