package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RealFaceCode/ContextBrain/internal/api"
	"github.com/RealFaceCode/ContextBrain/internal/config"
	"github.com/RealFaceCode/ContextBrain/internal/embed"
	"github.com/RealFaceCode/ContextBrain/internal/index"
	"github.com/RealFaceCode/ContextBrain/internal/logging"
	"github.com/RealFaceCode/ContextBrain/internal/query"
	"github.com/RealFaceCode/ContextBrain/internal/store"
)

func newIndexCmd() *cobra.Command {
	var (
		resume  bool
		force   bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build or rebuild the index for a directory",
		Long: `Index scans a directory, extracts language-aware elements, and
builds both the structured metadata store and the semantic vector index
used for hybrid search.

Use --resume to continue from a previously interrupted run.
Use --force to discard the existing index and rebuild from scratch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			if force && resume {
				return fmt.Errorf("--force and --resume are mutually exclusive")
			}

			return runIndexWithResume(ctx, cmd, path, offline, resume, force)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Resume from previous checkpoint if available")
	cmd.Flags().BoolVar(&force, "force", false, "Discard the existing index and rebuild from scratch")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the static embedder instead of Ollama")

	return cmd
}

func runIndexWithResume(ctx context.Context, cmd *cobra.Command, path string, offline, resume, force bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	root, err := config.FindProjectRoot(absPath)
	if err != nil {
		root = absPath
	}

	dataDir := filepath.Join(root, ".contextbrain")
	metadataPath := filepath.Join(dataDir, "metadata.db")

	if force {
		if err := clearIndexData(dataDir); err != nil {
			return fmt.Errorf("failed to clear index data: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared existing index data, starting fresh...\n")
		slog.Info("index_force_clear", slog.String("data_dir", dataDir))
		return runIndexWithOptions(ctx, cmd, path, offline, 0, "")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	resumeFromChunk := 0
	checkpointEmbedderModel := ""

	if _, err := os.Stat(metadataPath); err == nil {
		metadata, err := store.NewSQLiteStore(metadataPath)
		if err == nil {
			loadCtx, loadCancel := context.WithTimeout(ctx, 3*time.Second)
			checkpoint, loadErr := metadata.LoadIndexCheckpoint(loadCtx)
			loadCancel()

			if loadErr != nil {
				slog.Warn("checkpoint_load_timeout", slog.String("error", loadErr.Error()))
			}

			if checkpoint != nil {
				if resume {
					chunkIDVersion, _ := metadata.GetState(ctx, store.StateKeyChunkIDVersion)
					if chunkIDVersion != "" && chunkIDVersion != store.ChunkIDVersionContent {
						_ = metadata.Close()
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
							"Warning: index uses legacy position-based chunk IDs (version %s).\n"+
								"These cannot reliably resume if files were modified.\n"+
								"Use --force to rebuild with element-derived IDs.\n",
							chunkIDVersion)
						return fmt.Errorf("legacy chunk ID version detected, use --force to rebuild")
					}

					slog.Info("checkpoint_found",
						slog.String("stage", checkpoint.Stage),
						slog.Int("embedded", checkpoint.EmbeddedCount),
						slog.Int("total", checkpoint.Total))
					_, _ = fmt.Fprintf(cmd.OutOrStdout(),
						"Resuming from checkpoint: %d/%d chunks embedded\n",
						checkpoint.EmbeddedCount, checkpoint.Total)
					resumeFromChunk = checkpoint.EmbeddedCount
					checkpointEmbedderModel = checkpoint.EmbedderModel
				} else {
					pct := 0
					if checkpoint.Total > 0 {
						pct = checkpoint.EmbeddedCount * 100 / checkpoint.Total
					}
					_ = metadata.Close()
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
						"Warning: previous indexing run was incomplete (stopped at %d%%).\n"+
							"Use --resume to continue, or --force to start fresh.\n",
						pct)
					return fmt.Errorf("incomplete checkpoint found, use --resume to continue")
				}
			}
			_ = metadata.Close()
		}
	}

	return runIndexWithOptions(ctx, cmd, path, offline, resumeFromChunk, checkpointEmbedderModel)
}

// clearIndexData removes all index-related files from the data directory.
// This preserves the .contextbrain.yaml config file, which lives at the
// project root rather than inside dataDir.
func clearIndexData(dataDir string) error {
	indexFiles := []string{
		filepath.Join(dataDir, "metadata.db"),
		filepath.Join(dataDir, "metadata.db-shm"),
		filepath.Join(dataDir, "metadata.db-wal"),
		filepath.Join(dataDir, "bm25.bleve"),
		filepath.Join(dataDir, "bm25.db"),
		filepath.Join(dataDir, "bm25.db-wal"),
		filepath.Join(dataDir, "bm25.db-shm"),
		filepath.Join(dataDir, "vectors.hnsw"),
	}

	for _, path := range indexFiles {
		if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func runIndexWithOptions(ctx context.Context, cmd *cobra.Command, path string, offline bool, resumeFromCheckpoint int, checkpointEmbedderModel string) error {
	if cleanup, err := logging.SetupFileOnlyMode(); err == nil {
		defer cleanup()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
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
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	metadataPath := filepath.Join(dataDir, "metadata.db")
	metadata, err := store.NewSQLiteStore(metadataPath)
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}
	defer func() { _ = metadata.Close() }()

	bm25BasePath := filepath.Join(dataDir, "bm25")
	bm25, err := store.NewBM25IndexWithBackend(bm25BasePath, store.DefaultBM25Config(), "")
	if err != nil {
		return fmt.Errorf("failed to create BM25 index: %w", err)
	}
	defer func() { _ = bm25.Close() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var embedder embed.Embedder
	if offline {
		embedder = embed.NewStaticEmbedder()
	} else {
		provider := embed.ParseProvider(cfg.Embeddings.Provider)
		embedCtx, embedCancel := context.WithTimeout(ctx, 15*time.Second)
		embedder, err = embed.NewEmbedder(embedCtx, provider, cfg.Embeddings.ModelID)
		embedCancel()
		if err != nil {
			return fmt.Errorf("embedder initialization failed: %w", err)
		}
	}
	defer func() { _ = embedder.Close() }()

	dimensions := embedder.Dimensions()
	vectorCfg := store.DefaultVectorStoreConfig(dimensions)
	vector, err := store.NewHNSWStore(vectorCfg)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	defer func() { _ = vector.Close() }()

	runner, err := index.NewRunner(index.RunnerDependencies{
		Config:   cfg,
		Metadata: metadata,
		BM25:     bm25,
		Vector:   vector,
		Embedder: embedder,
	})
	if err != nil {
		return fmt.Errorf("failed to create index runner: %w", err)
	}
	defer func() { _ = runner.Close() }()

	result, err := runner.Run(ctx, index.RunnerConfig{
		RootDir:              root,
		DataDir:              dataDir,
		Offline:              offline,
		ResumeFromCheckpoint: resumeFromCheckpoint,
		CheckpointModel:      checkpointEmbedderModel,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files, %d chunks, in %s\n",
		result.Files, result.Chunks, result.Duration.Round(time.Millisecond))
	if result.Warnings > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d warnings (see log)\n", result.Warnings)
	}

	if status, err := printIndexStatus(ctx, bm25, vector, embedder, metadata, cfg, root); err == nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Embeddings: %s (%s, %s quality)\n",
			status.Embeddings.Status, status.Embeddings.ActualProvider, status.Embeddings.SemanticQuality)
	}

	return nil
}

// printIndexStatus builds a throwaway query engine over the just-indexed
// stores and reports the same status summary a long-running host would
// surface through api.Service.IndexStatus.
func printIndexStatus(ctx context.Context, bm25 store.BM25Index, vector store.VectorStore, embedder embed.Embedder, metadata store.MetadataStore, cfg *config.Config, root string) (*api.IndexStatusOutput, error) {
	// Engine.Close would also close bm25/vector/metadata, which the caller
	// still owns (deferred closes already registered); leave it open here.
	engine, err := query.NewEngine(bm25, vector, embedder, metadata, query.DefaultConfig())
	if err != nil {
		return nil, err
	}

	svc, err := api.NewService(engine, metadata, embedder, cfg, hashProjectID(root), root)
	if err != nil {
		return nil, err
	}
	return svc.IndexStatus(ctx)
}
