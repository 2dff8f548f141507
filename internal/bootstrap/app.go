package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"reconcile-backend/internal/citations"
	"reconcile-backend/internal/documents"
	"reconcile-backend/internal/extraction"
	openai "reconcile-backend/internal/extraction/openai"
	"reconcile-backend/internal/queue"
	"reconcile-backend/internal/recordstore"
	"reconcile-backend/internal/recordstore/notion"
	"reconcile-backend/internal/runs"
	"reconcile-backend/internal/shared/config"
	"reconcile-backend/internal/shared/server"
	"reconcile-backend/internal/shared/storage/db"
	"reconcile-backend/internal/shared/storage/object"
	localstore "reconcile-backend/internal/shared/storage/object/local"
	s3store "reconcile-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo   documents.DocumentsRepo
	CheckpointStore runs.CheckpointStore
	CitationLedger  citations.Ledger
	RecordStore     recordstore.Store

	DocumentsService *documents.Service
	RunsService      *runs.Service
	RunProcessor     RunProcessor

	DocumentsHandler *documents.Handler
	RunHandler       *runs.Handler
	CitationHandler  *citations.Handler
}

// RunProcessor allows callers to override run processing for tests.
type RunProcessor interface {
	Advance(ctx context.Context, scope, runID string) error
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
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		RunHandler:      app.RunHandler,
		CitationHandler: app.CitationHandler,
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

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("RUNS_SQS_QUEUE_URL")) == "" {
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
	var docRepo documents.DocumentsRepo
	var checkpoints runs.CheckpointStore
	var ledger citations.Ledger

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		checkpoints = runs.NewPGStore(app.DB)
		ledger = citations.NewPGLedger(app.DB)
	} else {
		docRepo = documents.NewMemoryRepo()
		checkpoints = runs.NewMemoryStore()
		ledger = citations.NewMemoryLedger()
	}

	records, err := buildRecordStore(app.Config)
	if err != nil {
		return err
	}

	extractor, err := buildExtractor(app.Config)
	if err != nil {
		return err
	}

	docSvc := &documents.Service{
		Repo:  docRepo,
		Store: app.Store,
	}

	runSvc := &runs.Service{
		Store:     checkpoints,
		DocRepo:   docRepo,
		Objects:   app.Store,
		Extractor: extractor,
		Records:   records,
		Citations: ledger,
		Queue:     app.Queue,
	}

	app.DocumentsRepo = docRepo
	app.CheckpointStore = checkpoints
	app.CitationLedger = ledger
	app.RecordStore = records
	app.DocumentsService = docSvc
	app.RunsService = runSvc
	app.RunProcessor = runSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.RunHandler = runs.NewHandler(runSvc)
	app.CitationHandler = citations.NewHandler(ledger)

	return nil
}

func buildRecordStore(cfg config.Config) (recordstore.Store, error) {
	if cfg.RecordStore == "notion" {
		return notion.NewClient(cfg.NotionToken, cfg.NotionDatabase)
	}
	return recordstore.NewMemoryStore(), nil
}

func buildExtractor(cfg config.Config) (extraction.Service, error) {
	if cfg.LLMProvider == "openai" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && isDevLike(cfg.Env) {
			log.Printf("bootstrap: OPENAI_API_KEY empty; using placeholder extractor")
			return extraction.Placeholder{}, nil
		}
		return openai.NewClient(apiKey, cfg.LLMModel)
	}
	return extraction.Placeholder{}, nil
}
