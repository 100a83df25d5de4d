package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"contractrag/app/agent"
	"contractrag/app/api"
	"contractrag/app/middleware"
	"contractrag/app/session"
	"contractrag/config"
	"contractrag/loader"
	"contractrag/model"
	"contractrag/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the components the HTTP surface is built on.
type Deps struct {
	Session   *session.Session
	Uploads   *loader.UploadStore
	Contracts *agent.ContractLoader
	Evidence  *agent.EvidenceMatcher
	Answerer  *agent.Answerer
	Letters   *agent.LetterWriter
}

type Server struct {
	cfg     *config.Config
	app     *fiber.App
	cleanup func()
	logger  *slog.Logger
}

// NewServer connects the configured backends and prepares the routes.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	deps, cleanup, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		app:     NewApp(cfg, deps),
		cleanup: cleanup,
		logger:  slog.Default().With("component", "server"),
	}, nil
}

// Build wires the components from cfg. cleanup releases backend
// connections.
func Build(ctx context.Context, cfg *config.Config) (Deps, func(), error) {
	uploads, err := loader.NewUploadStore(cfg.Uploads.Dir)
	if err != nil {
		return Deps{}, nil, fmt.Errorf("error to create uploads dir: %w", err)
	}

	gen, err := model.NewGenerator(cfg.LLM)
	if err != nil {
		return Deps{}, nil, err
	}
	embedder := model.NewOllamaEmbedder(cfg.Embedding.Endpoint, cfg.Embedding.Model,
		&http.Client{Timeout: cfg.Embedding.Timeout})
	ocr := model.NewVisionOCR(cfg.OCR.Endpoint, cfg.OCR.Model, cfg.OCR.Attempts,
		&http.Client{Timeout: cfg.OCR.Timeout})

	backend, cleanup, err := newRetriever(ctx, cfg.Vector, embedder)
	if err != nil {
		return Deps{}, nil, err
	}
	index := store.NewClauseIndex(backend)

	return Deps{
		Session:   session.New(),
		Uploads:   uploads,
		Contracts: agent.NewContractLoader(loader.NewPDFReader(cfg.PDF.CropTop, cfg.PDF.CropBottom), index),
		Evidence:  agent.NewEvidenceMatcher(ocr),
		Answerer:  agent.NewAnswerer(index, gen, cfg.RAG.TopK),
		Letters:   agent.NewLetterWriter(gen, cfg.Letter.ExcerptChars),
	}, cleanup, nil
}

func newRetriever(ctx context.Context, cfg config.VectorConfig, embedder model.Embedder) (store.Retriever, func(), error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(embedder), func() {}, nil
	case "pgvector":
		pg, err := store.NewPostgresStore(ctx, cfg.DSN, embedder, cfg.Dimension)
		if err != nil {
			return nil, nil, fmt.Errorf("error to connect to Postgres database: %w", err)
		}
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("error to create tables: %w", err)
		}
		return pg, func() { pg.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}

func NewApp(cfg *config.Config, deps Deps) *fiber.App {
	var (
		app = fiber.New(fiber.Config{
			ErrorHandler: api.ErrorHandler,
			BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		})
		checkHandler   = api.NewCheckHandler(deps.Session)
		configHandler  = api.NewConfigHandler(cfg)
		fileHandler    = api.NewFileHandler(deps.Uploads, deps.Session, deps.Contracts, deps.Evidence)
		requestHandler = api.NewRequestHandler(deps.Session, deps.Answerer, deps.Letters)
	)

	app.Use(middleware.RequestLogger(slog.Default().With("component", "http")))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.CORSOrigins, ","),
	}))

	check := app.Group("/check")
	apiv1 := app.Group("/api/v1")

	app.Get("/", checkHandler.HandleRoot)
	check.Get("/healthy", checkHandler.HandleHealthy)

	apiv1.Get("/config", configHandler.HandleGetConfig)
	apiv1.Post("/upload-contract", fileHandler.HandleUploadContract)
	apiv1.Post("/upload-evidence", fileHandler.HandleUploadEvidence)
	apiv1.Post("/chat", requestHandler.HandleChat)
	apiv1.Get("/history", requestHandler.HandleHistory)
	apiv1.Get("/clauses", requestHandler.HandleClauses)
	apiv1.Post("/generate-letter", requestHandler.HandleLetter)
	apiv1.Post("/generate-letter-from-selection", requestHandler.HandleLetterFromSelection)

	return app
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "addr", s.cfg.Server.Addr, "vector_backend", s.cfg.Vector.Backend, "llm", s.cfg.LLM.Provider)
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Error("error to shut down server", "error", err)
	}
	s.cleanup()
	s.logger.Info("server stopped")
}
