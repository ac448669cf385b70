package assessments

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/assessments/features"
	"mindwell-backend/internal/assessments/recommendations"
	"mindwell-backend/internal/shared/server/respond"
)

const maxFormMemory = 1 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/assessments/features", h.schedule)
	rg.POST("/assessments", h.create)
}

type featureInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Default int    `json:"default"`
}

func (h *Handler) schedule(c *gin.Context) {
	names := features.Schedule()
	items := make([]featureInfo, 0, len(names))
	for _, name := range names {
		items = append(items, featureInfo{
			Name:    name,
			Label:   recommendations.Humanize(name),
			Min:     features.MinValue,
			Max:     features.MaxValue,
			Default: features.DefaultValue,
		})
	}
	respond.OK(c, gin.H{
		"features":       items,
		"modelAvailable": h.Svc.ModelAvailable(),
	})
}

func (h *Handler) create(c *gin.Context) {
	src, symptoms, symptomsLong, err := readSubmission(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}

	res, err := h.Svc.Assess(c.Request.Context(), src)
	if err != nil {
		var inputErr *InputError
		switch {
		case errors.Is(err, ErrModelUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "model_unavailable", msgModelUnavailable, nil)
		case errors.As(err, &inputErr):
			respond.Error(c, http.StatusBadRequest, "invalid_input", "Answers must be whole numbers from 1 to 10.", inputErr)
		default:
			respond.Error(c, http.StatusInternalServerError, "prediction_failed", msgPredictionFailed, nil)
		}
		return
	}

	res.Symptoms = symptoms
	res.SymptomsLong = symptomsLong
	c.Set("stressLevel", res.Level)
	respond.OK(c, res)
}

// readSubmission accepts a JSON object, a urlencoded form, or a multipart form.
func readSubmission(c *gin.Context) (features.Source, string, string, error) {
	contentType := c.ContentType()
	switch {
	case contentType == gin.MIMEJSON:
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, "", "", err
		}
		values := make(features.Map, len(body))
		for k, v := range body {
			values[k] = stringify(v)
		}
		return values, strings.TrimSpace(values["symptoms"]), strings.TrimSpace(values["symptoms_long"]), nil
	case strings.HasPrefix(contentType, "multipart/"):
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, "", "", err
		}
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, "", "", err
		}
	}
	form := c.Request.PostForm
	return features.Values(form), strings.TrimSpace(form.Get("symptoms")), strings.TrimSpace(form.Get("symptoms_long")), nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
