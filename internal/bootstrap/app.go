package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"web4all-backend/internal/audits"
	googleauth "web4all-backend/internal/auth"
	"web4all-backend/internal/fetch"
	"web4all-backend/internal/llm"
	openai "web4all-backend/internal/llm/openai"
	"web4all-backend/internal/mailer"
	"web4all-backend/internal/queue"
	"web4all-backend/internal/shared/config"
	"web4all-backend/internal/shared/server"
	"web4all-backend/internal/shared/server/middleware"
	"web4all-backend/internal/shared/storage/db"
	"web4all-backend/internal/shared/storage/object"
	localstore "web4all-backend/internal/shared/storage/object/local"
	s3store "web4all-backend/internal/shared/storage/object/s3"
	"web4all-backend/internal/usage"
	"web4all-backend/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	AuditsRepo    audits.Repo
	UsersRepo     users.Repo
	AuditsService *audits.Service
	UsageService  *usage.Service
	UsersService  *users.Service

	AuditProcessor AuditProcessor

	AuditHandler *audits.Handler
	UsageHandler *usage.Handler
	UsersHandler *users.Handler
	GoogleAuth   *googleauth.GoogleService
}

// AuditProcessor allows callers to override audit processing for tests.
type AuditProcessor interface {
	ProcessAudit(ctx context.Context, auditID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		AuditHandler: app.AuditHandler,
		UsageHandler: app.UsageHandler,
		UserHandler:  app.UsersHandler,
		GoogleAuth:   app.GoogleAuth,
		RateLimiter:  middleware.NewRateLimiter(time.Now),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("W4A_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var auditRepo audits.Repo
	var userRepo users.Repo
	var usageSvc *usage.Service

	if app.DB != nil {
		auditRepo = &audits.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB, app.Config.AuditLimit))
	} else {
		auditRepo = audits.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		usageSvc = usage.NewService(app.Config.AuditLimit)
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}

	var mailClient mailer.Mailer
	smtpMailer, err := mailer.NewSMTPMailer(
		app.Config.SMTPHost,
		app.Config.SMTPPort,
		app.Config.SMTPUser,
		app.Config.SMTPPass,
		app.Config.SMTPFrom,
	)
	switch {
	case err == nil:
		mailClient = smtpMailer
	case errors.Is(err, mailer.ErrNotConfigured):
		log.Printf("bootstrap: SMTP relay not configured; email delivery disabled")
	default:
		return err
	}

	auditSvc := &audits.Service{
		Repo:    auditRepo,
		Usage:   usageSvc,
		Fetcher: fetch.New(app.Config.FetchTimeout, app.Config.FetchUserAgent),
		Store:   app.Store,
		LLM:     llmClient,
		Mailer:  mailClient,
		Queue:   app.Queue,
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.AuditsRepo = auditRepo
	app.UsersRepo = userRepo
	app.AuditsService = auditSvc
	app.AuditProcessor = auditSvc
	app.UsageService = usageSvc
	app.UsersService = userSvc
	app.AuditHandler = audits.NewHandler(auditSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	return nil
}
