package advisor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/llm"
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
	rg.POST("/advisor/chat", h.chat)
	rg.GET("/advisor/history", h.history)
	rg.DELETE("/advisor/history", h.clear)
}

type chatRequest struct {
	Message string     `json:"message" form:"message"`
	History []llm.Turn `json:"history"`
}

func (h *Handler) chat(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	reply, err := h.Svc.Reply(c.Request.Context(), userID, req.Message, req.History)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusServiceUnavailable, "chat_unavailable", "chat request was interrupted", nil)
		return
	}
	respond.OK(c, reply)
}

func (h *Handler) history(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	respond.OK(c, gin.H{"history": h.Svc.History(userID)})
}

func (h *Handler) clear(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	h.Svc.ClearHistory(userID)
	c.Status(http.StatusNoContent)
}
