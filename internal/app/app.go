package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"swiftvisa/backend/features/assess"
	"swiftvisa/backend/features/document"
	"swiftvisa/backend/features/history"
	"swiftvisa/backend/internal/answer"
	"swiftvisa/backend/internal/config"
	"swiftvisa/backend/internal/decision"
	"swiftvisa/backend/internal/ingest"
	"swiftvisa/backend/internal/middleware"
	"swiftvisa/backend/internal/retrieval"
	"swiftvisa/backend/internal/worker"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler         http.Handler
	AssessService   *assess.Service
	RebuildConsumer *worker.RebuildConsumer

	port     int
	closeLog func() error
}

func New(
	cfg *config.Config,
	db *sql.DB,
	embedder retrieval.Embedder,
	searcher retrieval.Searcher,
	generator assess.Generator,
	swapper worker.SnapshotSwapper,
	taskPub TaskPublisher,
	sink ingest.Sink,
) (*App, error) {

	// Feature: Document registry
	documentRepo := document.NewPostgresRepo(db)
	documentService := document.NewService(documentRepo)
	documentHandler := document.NewHandler(documentService)

	// Decision audit trail
	recorder, closeLog, err := decision.NewFileLogger(cfg.DecisionLogPath)
	if err != nil {
		slog.Warn("failed to create decision logger, falling back to stdout", "error", err)
		recorder = decision.NewLogger(os.Stdout)
		closeLog = nil
	}
	announcer := decision.NewEventPublisher(taskPub)

	// Feature: Assess
	retrievalService := retrieval.NewService(embedder, searcher, cfg.RetrievalK)
	policy := answer.NewPolicy(cfg.ConfidenceCapYes, cfg.ConfidenceCapNo, cfg.ConfidenceAmbiguous)
	assessService := assess.NewService(retrievalService, generator, recorder, announcer, policy)
	assessHandler := assess.NewHandler(assessService)

	// Feature: History
	historyHandler := history.NewHandler(history.NewFileStore(cfg.DecisionLogPath))

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Corpus rebuild is queued, not run inline: builds can take minutes and
	// queries must keep serving the current snapshot meanwhile.
	rebuildHandler := func(w http.ResponseWriter, r *http.Request) {
		task := worker.RebuildTask{CorrelationID: middleware.GetCorrelationID(r.Context())}
		body, _ := json.Marshal(task)
		if err := taskPub.Publish(config.TopicCorpusRebuild, body); err != nil {
			slog.ErrorContext(r.Context(), "failed to publish rebuild task", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"failed to queue rebuild"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"queued"}`))
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /assess", middleware.CorrelationID(enableCORS(assessHandler.Assess)))

	mux.Handle("GET /decisions", middleware.CorrelationID(enableCORS(historyHandler.List)))

	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("GET /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Get)))

	mux.Handle("POST /corpus/rebuild", middleware.CorrelationID(enableCORS(rebuildHandler)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Worker (Rebuild Consumer) Setup
	builder := ingest.NewBuilder(embedder, cfg.ChunkWindow, cfg.ChunkOverlap).WithRegistry(documentService)
	if sink != nil {
		builder = builder.WithSink(sink)
	}
	rebuildConsumer := worker.NewRebuildConsumer(builder, swapper, cfg.CorpusDir, cfg.IndexPath, cfg.MetadataPath)

	return &App{
		Handler:         mux,
		AssessService:   assessService,
		RebuildConsumer: rebuildConsumer,
		port:            cfg.ServerPort,
		closeLog:        closeLog,
	}, nil
}

// Close releases resources held for the app's lifetime, currently the audit
// log file handle. Safe to call when the logger fell back to stdout.
func (a *App) Close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
