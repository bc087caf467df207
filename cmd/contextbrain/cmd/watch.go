package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RealFaceCode/ContextBrain/internal/api"
	"github.com/RealFaceCode/ContextBrain/internal/chunk"
	"github.com/RealFaceCode/ContextBrain/internal/config"
	"github.com/RealFaceCode/ContextBrain/internal/embed"
	"github.com/RealFaceCode/ContextBrain/internal/exclude"
	"github.com/RealFaceCode/ContextBrain/internal/index"
	"github.com/RealFaceCode/ContextBrain/internal/logging"
	"github.com/RealFaceCode/ContextBrain/internal/query"
	"github.com/RealFaceCode/ContextBrain/internal/store"
	"github.com/RealFaceCode/ContextBrain/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a directory and keep its index up to date",
		Long: `Watch starts a long-running process that monitors the project for
file changes (via fsnotify, falling back to polling) and incrementally
re-indexes only what changed, debouncing bursts of edits.

Run 'contextbrain index' at least once before watching, so there is an
existing index to update.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runWatch(ctx, cmd, path, offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use the static embedder instead of Ollama")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, offline bool) error {
	if cleanup, err := logging.SetupFileOnlyMode(); err == nil {
		defer cleanup()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	root, err := config.FindProjectRoot(absPath)
	if err != nil {
		root = absPath
	}

	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.NewConfig()
	}

	dataDir := filepath.Join(root, ".contextbrain")
	metadataPath := filepath.Join(dataDir, "metadata.db")
	if _, err := os.Stat(metadataPath); err != nil {
		return fmt.Errorf("no existing index found at %s, run 'contextbrain index' first", dataDir)
	}

	metadata, err := store.NewSQLiteStore(metadataPath)
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	defer func() { _ = metadata.Close() }()

	bm25BasePath := filepath.Join(dataDir, "bm25")
	bm25, err := store.NewBM25IndexWithBackend(bm25BasePath, store.DefaultBM25Config(), "")
	if err != nil {
		return fmt.Errorf("failed to open BM25 index: %w", err)
	}
	defer func() { _ = bm25.Close() }()

	var embedder embed.Embedder
	if offline {
		embedder = embed.NewStaticEmbedder()
	} else {
		provider := embed.ParseProvider(cfg.Embeddings.Provider)
		embedder, err = embed.NewEmbedder(ctx, provider, cfg.Embeddings.ModelID)
		if err != nil {
			return fmt.Errorf("embedder initialization failed: %w", err)
		}
	}
	defer func() { _ = embedder.Close() }()

	vectorCfg := store.DefaultVectorStoreConfig(embedder.Dimensions())
	vector, err := store.NewHNSWStore(vectorCfg)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	defer func() { _ = vector.Close() }()

	vectorPath := filepath.Join(dataDir, "vectors.hnsw")
	if _, err := os.Stat(vectorPath); err == nil {
		if err := vector.Load(vectorPath); err != nil {
			return fmt.Errorf("failed to load vector store: %w", err)
		}
	}

	engineCfg := query.DefaultConfig()
	engine, err := query.NewEngine(bm25, vector, embedder, metadata, engineCfg)
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}
	defer func() { _ = engine.Close() }()

	defaultExclusions := true
	filterOpts := exclude.Options{
		UserPatterns:      cfg.Paths.Exclude,
		DefaultExclusions: &defaultExclusions,
		RespectGitignore:  true,
		Root:              root,
	}
	filter := exclude.NewFilter(filterOpts)

	projectID := hashProjectID(root)
	coordinator := index.NewCoordinator(index.CoordinatorConfig{
		ProjectID:     projectID,
		RootPath:      root,
		DataDir:       dataDir,
		Engine:        engine,
		Metadata:      metadata,
		CodeChunker:   chunk.NewCodeChunker(),
		MDChunker:     chunk.NewMarkdownChunker(),
		Filter:        filter,
		FilterOptions: &filterOpts,
		MaxFileSize:   cfg.Index.MaxFileSizeBytes,
	})

	if err := coordinator.Open(); err != nil {
		return fmt.Errorf("failed to start watch: %w", err)
	}
	defer func() { _ = coordinator.Close() }()

	if err := coordinator.ReconcileOnStartup(ctx); err != nil {
		slog.Warn("gitignore reconciliation failed", slog.String("error", err.Error()))
	}
	if err := coordinator.ReconcileFilesOnStartup(ctx); err != nil {
		slog.Warn("file reconciliation failed", slog.String("error", err.Error()))
	}

	watcherOpts := watcher.Options{
		DebounceWindow: time.Duration(cfg.Watcher.DebounceMs) * time.Millisecond,
	}
	hw, err := watcher.NewHybridWatcher(watcherOpts)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := hw.Start(ctx, root); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = hw.Stop() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (%s watcher)\n", root, hw.WatcherType())
	slog.Info("watch_started", slog.String("root", root), slog.String("watcher_type", hw.WatcherType()))

	if svc, err := api.NewService(engine, metadata, embedder, cfg, projectID, root); err == nil {
		if status, err := svc.IndexStatus(ctx); err == nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Index: %d files, %d chunks (embeddings: %s)\n",
				status.Stats.FileCount, status.Stats.ChunkCount, status.Embeddings.Status)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case events, ok := <-hw.Events():
			if !ok {
				return nil
			}
			if err := coordinator.HandleEvents(ctx, events); err != nil {
				slog.Error("failed to handle file events", slog.String("error", err.Error()))
			}
		case err, ok := <-hw.Errors():
			if !ok {
				continue
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

func hashProjectID(root string) string {
	h := sha256.Sum256([]byte(root))
	return hex.EncodeToString(h[:])
}
