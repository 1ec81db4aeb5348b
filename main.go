package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nsqio/go-nsq"
	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"

	"swiftvisa/backend/internal/adapter/gemini"
	"swiftvisa/backend/internal/adapter/groq"
	wstore "swiftvisa/backend/internal/adapter/weaviate"
	"swiftvisa/backend/internal/app"
	"swiftvisa/backend/internal/config"
	"swiftvisa/backend/internal/ingest"
	"swiftvisa/backend/internal/logger"
	"swiftvisa/backend/internal/retrieval"
	"swiftvisa/backend/internal/vecindex"
	"swiftvisa/backend/internal/vector"
	"swiftvisa/backend/internal/worker"
)

func main() {
	// Initialize structured logger with correlation id injection
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("backend exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer deps.DB.Close()

	// External model adapters
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("gemini embedder: %w", err)
	}
	defer embedder.Close()

	generator := groq.NewClient(cfg.GroqAPIKey, cfg.GenerationModel)

	// Index backend
	provider := retrieval.NewSnapshotProvider()
	var searcher retrieval.Searcher = provider
	var swapper worker.SnapshotSwapper = provider
	var sink ingest.Sink

	switch cfg.IndexBackend {
	case "weaviate":
		wCfg := weaviateclient.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme}
		wClient, err := weaviateclient.NewClient(wCfg)
		if err != nil {
			return fmt.Errorf("weaviate client: %w", err)
		}
		wAdapter := vector.NewWeaviateClientAdapter(wClient)
		ensure := func(ctx context.Context) error {
			return vector.EnsureSchema(ctx, wAdapter)
		}
		retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
		if err := app.EnsureSchemaWithRetry(ctx, ensure, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
			return fmt.Errorf("weaviate schema: %w", err)
		}
		// Rebuilds write through the sink; no flat snapshot is served, so
		// none is persisted or swapped.
		store := wstore.NewStore(wClient)
		searcher = store
		sink = store
		swapper = nil
	default:
		// Flat in-memory index, loaded from the last persisted snapshot.
		snapshot, err := vecindex.Load(cfg.IndexPath, cfg.MetadataPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Warn("no index artifacts found, serving without a snapshot until first rebuild",
					"index_path", cfg.IndexPath)
			} else {
				return fmt.Errorf("load index artifacts: %w", err)
			}
		} else {
			provider.Swap(snapshot)
			slog.Info("index snapshot loaded",
				"vectors", snapshot.Index.Len(),
				"dimension", snapshot.Index.Dim())
		}
	}

	application, err := app.New(cfg, deps.DB, embedder, searcher, generator, swapper, deps.NSQProducer, sink)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	defer application.Close()

	// Rebuild worker
	if cfg.EnableRebuildWorker {
		nsqCfg := nsq.NewConfig()
		consumer, err := nsq.NewConsumer(config.TopicCorpusRebuild, "backend", nsqCfg)
		if err != nil {
			return fmt.Errorf("nsq rebuild consumer: %w", err)
		}
		consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
			return application.RebuildConsumer.HandleMessage(m)
		}))
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("rebuild consumer connected")
		}
		defer consumer.Stop()
	}

	if !cfg.EnableAPI {
		slog.Info("api disabled, running worker only")
		<-ctx.Done()
		return nil
	}

	return application.Run(ctx)
}
