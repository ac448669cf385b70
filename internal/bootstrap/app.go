package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/advisor"
	"mindwell-backend/internal/assessments"
	"mindwell-backend/internal/assessments/classifier"
	googleauth "mindwell-backend/internal/auth"
	"mindwell-backend/internal/llm"
	"mindwell-backend/internal/llm/gemini"
	"mindwell-backend/internal/reports"
	"mindwell-backend/internal/reviews"
	"mindwell-backend/internal/services/health"
	"mindwell-backend/internal/shared/auth"
	"mindwell-backend/internal/shared/config"
	"mindwell-backend/internal/shared/server"
	"mindwell-backend/internal/shared/storage/db"
	"mindwell-backend/internal/shared/storage/object"
	localstore "mindwell-backend/internal/shared/storage/object/local"
	s3store "mindwell-backend/internal/shared/storage/object/s3"
	"mindwell-backend/internal/shared/telemetry"
	"mindwell-backend/internal/users"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Store             object.ObjectStore
	Tokens            *auth.Issuer
	Classifier        *classifier.Adapter
	UsersRepo         users.Repo
	ReviewsRepo       reviews.Repo
	UsersService      *users.Service
	ReviewsService    *reviews.Service
	AssessmentService *assessments.Service
	ReportService     *reports.Service
	AdvisorService    *advisor.Service
	HealthService     *health.Service
	UsersHandler      *users.Handler
	GoogleAuth        *googleauth.GoogleService
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Init(cfg.Env)
	ctx := context.Background()

	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chat, err := buildChatClient(cfg)
	if err != nil {
		return nil, err
	}

	model, err := classifier.LoadAdapter(cfg.ModelPath)
	if err != nil {
		// Assessments answer 503 until a model is deployed; the rest of the app still serves.
		telemetry.Error("bootstrap.model_unavailable", map[string]any{
			"path":  cfg.ModelPath,
			"error": err.Error(),
		})
	}

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Store:      store,
		Tokens:     tokens,
		Classifier: model,
	}
	buildServices(app, chat)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Tokens:            tokens,
		Health:            app.HealthService,
		UserHandler:       app.UsersHandler,
		GoogleAuth:        app.GoogleAuth,
		AssessmentHandler: assessments.NewHandler(app.AssessmentService),
		ReportHandler:     reports.NewHandler(app.ReportService),
		ReviewHandler:     reviews.NewHandler(app.ReviewsService),
		AdvisorHandler:    advisor.NewHandler(app.AdvisorService),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     app.HealthService.Status(ctx).Database,
		"object_store": storeName(cfg, store),
		"model":        model.Available(),
		"chat":         app.AdvisorService.Configured(),
		"google_oauth": app.GoogleAuth.Configured(),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.DetectProfile())
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "migrations failed", "error": err.Error()})
			_ = sqlDB.Close()
			return nil, nil
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "none":
		return nil, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildChatClient(cfg config.Config) (llm.ChatClient, error) {
	if cfg.ChatProvider != "gemini" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.chat.disabled", map[string]any{"reason": "GEMINI_API_KEY empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("CHAT_PROVIDER=gemini requires GEMINI_API_KEY")
	}
	client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.ChatModel)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildServices(app *App, chat llm.ChatClient) {
	var userRepo users.Repo
	var reviewRepo reviews.Repo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		reviewRepo = &reviews.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		reviewRepo = reviews.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)
	advisorSvc := advisor.NewService(chat, advisor.Config{
		MaxRetries:   app.Config.ChatMaxRetries,
		RetryDelay:   app.Config.ChatRetryDelay,
		HistoryTurns: app.Config.ChatHistoryTurns,
	})

	usersHandler := users.NewHandler(userSvc, app.Tokens)
	usersHandler.OnLogout = advisorSvc.ClearHistory

	app.UsersRepo = userRepo
	app.ReviewsRepo = reviewRepo
	app.UsersService = userSvc
	app.ReviewsService = reviews.NewService(reviewRepo, app.Config.ReviewsRecentLimit)
	app.AssessmentService = assessments.NewService(app.Classifier, app.Config.StrictInput)
	app.ReportService = reports.NewService(app.Store)
	app.AdvisorService = advisorSvc
	app.HealthService = health.NewService(app.DB, app.AssessmentService)
	app.UsersHandler = usersHandler
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
		app.Tokens,
	)
}

func storeName(cfg config.Config, store object.ObjectStore) string {
	if store == nil {
		return "none"
	}
	return cfg.ObjectStoreType
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
