package assessments

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/assessments/classifier"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func decodeResult(t *testing.T, body []byte) Result {
	t.Helper()
	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func TestCreateAssessmentFromForm(t *testing.T) {
	r := newTestRouter(newBundledService(t, false))
	form := url.Values{
		"anxiety_level": {"9"},
		"sleep_quality": {"2"},
		"symptoms":      {"headaches"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	res := decodeResult(t, resp.Body.Bytes())
	if res.Symptoms != "headaches" {
		t.Fatalf("expected symptoms echoed, got %q", res.Symptoms)
	}
	if !strings.Contains(res.PackedRecommendations, "Affected Parameters:") ||
		!strings.Contains(res.PackedRecommendations, "Parameters to Maintain:") {
		t.Fatalf("unexpected packed text: %q", res.PackedRecommendations)
	}
}

func TestCreateAssessmentReturnsChartPercentages(t *testing.T) {
	r := newTestRouter(newBundledService(t, false))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(`{"anxiety_level": 9}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Level         string             `json:"level"`
		Probabilities map[string]float64 `json:"probabilities"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Probabilities) != len(classifier.Labels) {
		t.Fatalf("expected one bar per level, got %v", body.Probabilities)
	}
	sum, best := 0.0, ""
	for _, label := range classifier.Labels {
		v, ok := body.Probabilities[label]
		if !ok || v < 0 || v > 100 {
			t.Fatalf("bad %s percentage in %v", label, body.Probabilities)
		}
		if best == "" || v > body.Probabilities[best] {
			best = label
		}
		sum += v
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Fatalf("percentages sum to %v", sum)
	}
	if best != body.Level {
		t.Fatalf("tallest bar %s does not match level %s", best, body.Level)
	}
}

func TestCreateAssessmentFromJSON(t *testing.T) {
	r := newTestRouter(newBundledService(t, false))
	body := `{"anxiety_level": 9, "sleep_quality": "2", "headache": 7.5, "symptoms_long": "trouble focusing"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	res := decodeResult(t, resp.Body.Bytes())
	values := res.Features.Map()
	if values["anxiety_level"] != 9 || values["sleep_quality"] != 2 || values["headache"] != 5 {
		t.Fatalf("unexpected values: %v", values)
	}
	if res.SymptomsLong != "trouble focusing" {
		t.Fatalf("expected long symptoms echoed")
	}
}

func TestCreateAssessmentFromMultipart(t *testing.T) {
	r := newTestRouter(newBundledService(t, false))
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("bullying", "8")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	res := decodeResult(t, resp.Body.Bytes())
	if len(res.Recommendations) != 1 || res.Recommendations[0].Feature != "bullying" {
		t.Fatalf("unexpected attention: %+v", res.Recommendations)
	}
}

func TestCreateAssessmentErrors(t *testing.T) {
	tests := []struct {
		name    string
		svc     *Service
		body    string
		ctype   string
		status  int
		message string
	}{
		{
			name:    "model missing",
			svc:     NewService(classifier.NewAdapter(nil), false),
			body:    "anxiety_level=3",
			ctype:   "application/x-www-form-urlencoded",
			status:  http.StatusServiceUnavailable,
			message: "The prediction model is not loaded. Please contact the administrator.",
		},
		{
			name:    "scoring failure",
			svc:     NewService(classifier.NewAdapter(fixedModel{panic: true}), false),
			body:    "anxiety_level=3",
			ctype:   "application/x-www-form-urlencoded",
			status:  http.StatusInternalServerError,
			message: "An error occurred during prediction. Please try again.",
		},
		{
			name:   "strict rejects",
			svc:    newBundledService(t, true),
			body:   "anxiety_level=11",
			ctype:  "application/x-www-form-urlencoded",
			status: http.StatusBadRequest,
		},
		{
			name:   "bad json",
			svc:    newBundledService(t, false),
			body:   "{not json",
			ctype:  "application/json",
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ctype)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if tt.message != "" && !strings.Contains(resp.Body.String(), tt.message) {
				t.Fatalf("expected message %q in %s", tt.message, resp.Body.String())
			}
		})
	}
}

func TestFeatureSchedule(t *testing.T) {
	r := newTestRouter(newBundledService(t, false))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/assessments/features", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Features []featureInfo `json:"features"`
		Model    bool          `json:"modelAvailable"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Features) != 20 || body.Features[14].Label != "Teacher Student Relationship" || !body.Model {
		t.Fatalf("unexpected schedule: %+v", body)
	}
}
