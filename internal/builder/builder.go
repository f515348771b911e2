package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/api"
	proposalapi "github.com/yswa-var/rfp-bid/internal/api/proposal"
	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/ingest"
	"github.com/yswa-var/rfp-bid/internal/integration/callback"
	"github.com/yswa-var/rfp-bid/internal/integration/embeddings"
	"github.com/yswa-var/rfp-bid/internal/integration/llm"
	"github.com/yswa-var/rfp-bid/internal/orchestrator"
	"github.com/yswa-var/rfp-bid/internal/pkg/assembly"
	"github.com/yswa-var/rfp-bid/internal/pkg/logger"
	"github.com/yswa-var/rfp-bid/internal/pkg/validator"
	"github.com/yswa-var/rfp-bid/internal/repository"
	"github.com/yswa-var/rfp-bid/internal/retrieval"
	"github.com/yswa-var/rfp-bid/internal/session"
	"github.com/yswa-var/rfp-bid/internal/teams"
	"github.com/yswa-var/rfp-bid/internal/usecase/proposal"
	"github.com/yswa-var/rfp-bid/internal/vectorstore"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	log.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	// Initialize repositories
	chunkRepo := repository.NewChunkPostgres(db)
	log.Info("Repositories initialized")

	// Initialize connectors
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, log)

	// Initialize external service connectors (with mock support)
	var llmConnector teams.Generator
	var embedder vectorstore.Embedder

	if cfg.EnableMocks {
		log.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(log)
		embedder = embeddings.NewMockConnector(cfg.EmbeddingsConnectorCfg.Dimensions, log)
	} else {
		log.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, log)
		embedder = embeddings.NewConnector(cfg.EmbeddingsConnectorCfg, log)
	}

	// Initialize vector stores and re-derive readiness from persisted chunks
	stores := vectorstore.NewManager(chunkRepo, embedder)
	if err := stores.Refresh(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("refresh vector stores: %w", err)
	}

	// One-time corpus setup: index any store still empty
	parser := ingest.NewParser()
	pipeline := ingest.NewPipeline(cfg.IngestCfg)
	corpus := retrieval.NewCorpusIndexer(cfg.CorpusCfg, parser, pipeline, stores)
	if err := corpus.EnsureReady(ctx); err != nil {
		log.Warn("corpus setup incomplete, retrieval will degrade", zap.Error(err))
	}

	coordinator := retrieval.NewCoordinator(stores, cfg.OrchestratorCfg.RetrievalTopK)

	// Initialize team agents and orchestration
	agents := make([]orchestrator.Agent, 0, len(entity.TeamPrecedence()))
	for _, team := range entity.TeamPrecedence() {
		agents = append(agents, teams.NewAgent(team, llmConnector, coordinator))
	}
	planner := orchestrator.NewPlanner(llmConnector, cfg.OrchestratorCfg.PlannerDisabled)
	supervisor := orchestrator.NewSupervisor(planner, agents, cfg.OrchestratorCfg)
	log.Info("Orchestrator initialized",
		zap.Int("agents", len(agents)),
		zap.Int("draft_workers", cfg.OrchestratorCfg.DraftWorkers),
	)

	// Initialize session store
	sessions, err := session.NewStore(cfg.SessionCfg, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}

	// Initialize use cases
	proposalUC := proposal.NewUsecase(
		supervisor,
		sessions,
		stores,
		corpus,
		callbackConnector,
		assembly.NewFactory(),
		validator.NewValidator(),
		log,
	)
	log.Info("Use cases initialized")

	// Setup API handlers
	proposalHandler := proposalapi.NewHandler(proposalUC)
	log.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(proposalHandler, log)
	log.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:   server,
		db:       db,
		sessions: sessions,
		logger:   log,
	}, nil
}

// BuildIndexer wires the minimal stack needed by the standalone corpus
// indexing command.
func BuildIndexer() (*retrieval.CorpusIndexer, *zap.Logger, func(), error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup database: %w", err)
	}

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	var embedder vectorstore.Embedder
	if cfg.EnableMocks {
		embedder = embeddings.NewMockConnector(cfg.EmbeddingsConnectorCfg.Dimensions, log)
	} else {
		embedder = embeddings.NewConnector(cfg.EmbeddingsConnectorCfg, log)
	}

	stores := vectorstore.NewManager(repository.NewChunkPostgres(db), embedder)
	if err := stores.Refresh(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("refresh vector stores: %w", err)
	}

	corpus := retrieval.NewCorpusIndexer(cfg.CorpusCfg, ingest.NewParser(), ingest.NewPipeline(cfg.IngestCfg), stores)

	return corpus, log, db.Close, nil
}

func setupLogger(level string) (*zap.Logger, error) {
	return logger.New(level)
}
