package reports

import (
	"errors"
	"net/http"

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
	rg.POST("/reports", h.create)
	rg.GET("/reports/*key", h.download)
	rg.GET("/me/reports", h.list)
}

type createRequest struct {
	Prediction      string `json:"prediction" form:"prediction"`
	Recommendations string `json:"recommendations" form:"recommendations"`
	Symptoms        string `json:"symptoms" form:"symptoms"`
	SymptomsLong    string `json:"symptoms_long" form:"symptoms_long"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}

	report, err := h.Svc.Generate(c.Request.Context(), userID, Input{
		PatientName:     middleware.UserNameFromContext(c),
		Prediction:      req.Prediction,
		Recommendations: req.Recommendations,
		Symptoms:        req.Symptoms,
		SymptomsLong:    req.SymptomsLong,
	})
	if err != nil {
		respond.Fail(c, respond.Internal("report_failed", "failed to generate report", err))
		return
	}
	if report.StorageKey != "" {
		c.Set("reportKey", report.StorageKey)
		c.Header("X-Report-Key", report.StorageKey)
	}
	respond.Attachment(c, report.FileName, contentType, report.PDF)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	pdf, err := h.Svc.Open(c.Request.Context(), userID, c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
			return
		}
		respond.Fail(c, respond.Internal("internal_error", "failed to load report", err))
		return
	}
	respond.Attachment(c, FileName, contentType, pdf)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Fail(c, respond.ErrLoginRequired)
		return
	}
	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Fail(c, respond.Internal("internal_error", "failed to list reports", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
