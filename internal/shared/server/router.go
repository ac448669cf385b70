package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/advisor"
	"mindwell-backend/internal/assessments"
	googleauth "mindwell-backend/internal/auth"
	"mindwell-backend/internal/reports"
	"mindwell-backend/internal/reviews"
	"mindwell-backend/internal/services/health"
	"mindwell-backend/internal/shared/auth"
	"mindwell-backend/internal/shared/config"
	"mindwell-backend/internal/shared/metrics"
	"mindwell-backend/internal/shared/server/middleware"
	"mindwell-backend/internal/shared/server/respond"
	"mindwell-backend/internal/users"
)

// Rate limit groups.
const (
	GroupDefault = "DEFAULT"
	GroupLogin   = "LOGIN"
	GroupChat    = "CHAT"
)

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	Tokens            *auth.Issuer
	Health            *health.Service
	UserHandler       *users.Handler
	GoogleAuth        *googleauth.GoogleService
	AssessmentHandler *assessments.Handler
	ReportHandler     *reports.Handler
	ReviewHandler     *reviews.Handler
	AdvisorHandler    *advisor.Handler
	RateLimits        map[string]middleware.RateLimitRule
}

// DefaultRateLimits returns per-principal token bucket rules per group.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		GroupDefault: {Rate: 10, Burst: 30},
		GroupLogin:   {Rate: 0.2, Burst: 5},
		GroupChat:    {Rate: 0.5, Burst: 5},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	limits := deps.RateLimits
	if limits == nil {
		limits = DefaultRateLimits()
	}

	var verifier middleware.TokenVerifier
	if deps.Tokens != nil {
		verifier = deps.Tokens
	}

	r.Use(
		middleware.RequestID(),
		middleware.NoStore(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        limits,
			DefaultGroup: GroupDefault,
			GroupFor:     rateLimitGroup,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterRoutes(api)
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterRoutes(api)
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.RegisterRoutes(api)
	}
	if deps.AdvisorHandler != nil {
		deps.AdvisorHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/auth/login", "/api/v1/auth/signup":
		return GroupLogin
	case "/api/v1/advisor/chat":
		return GroupChat
	default:
		return GroupDefault
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
