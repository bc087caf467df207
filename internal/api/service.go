package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RealFaceCode/ContextBrain/internal/async"
	"github.com/RealFaceCode/ContextBrain/internal/config"
	"github.com/RealFaceCode/ContextBrain/internal/embed"
	"github.com/RealFaceCode/ContextBrain/internal/exclude"
	"github.com/RealFaceCode/ContextBrain/internal/query"
	"github.com/RealFaceCode/ContextBrain/internal/store"
)

// MaxResourceSize is the maximum file size served through ReadResource.
const MaxResourceSize = 1024 * 1024

// OperationInfo describes a callable operation, in case a caller wants to
// enumerate them (mirrors a tool-listing capability without committing to
// any particular wire format).
type OperationInfo struct {
	Name        string
	Description string
}

// Service exposes ContextBrain's search and index-status operations as
// plain Go method calls, backed by the same hybrid search engine and
// metadata store used by the indexer and watcher commands. It carries no
// transport of its own - callers embed it behind whatever surface they
// need (an HTTP handler, an in-process call, a future wire protocol).
type Service struct {
	engine   query.SearchEngine
	metadata store.MetadataStore
	embedder embed.Embedder // nil is valid - reported as unavailable
	config   *config.Config
	logger   *slog.Logger

	projectID string
	rootPath  string

	// indexProgress is non-nil while a background index run is active.
	indexProgress *async.IndexProgress

	mu sync.RWMutex
}

// NewService creates a new Service. rootPath is used for project-type
// detection (go.mod, package.json, etc.) and for relative-path resolution
// in ReadResource.
func NewService(engine query.SearchEngine, metadata store.MetadataStore, embedder embed.Embedder, cfg *config.Config, projectID, rootPath string) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("search engine is required")
	}
	if metadata == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	return &Service{
		engine:    engine,
		metadata:  metadata,
		embedder:  embedder,
		config:    cfg,
		projectID: projectID,
		rootPath:  rootPath,
		logger:    slog.Default(),
	}, nil
}

// SetIndexProgress attaches a background-indexing progress tracker. When
// set, Search reports indexing progress instead of (possibly incomplete)
// results, and IndexStatus includes an Indexing section.
func (s *Service) SetIndexProgress(progress *async.IndexProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexProgress = progress
}

// Operations lists the callable operations, analogous to a tool listing.
func (s *Service) Operations() []OperationInfo {
	return []OperationInfo{
		{Name: "search", Description: "Hybrid keyword + semantic search across the whole project."},
		{Name: "search_code", Description: "Code-scoped search with language and symbol-type filtering."},
		{Name: "search_docs", Description: "Documentation-scoped search, preserving section hierarchy."},
		{Name: "search_structured", Description: "Glob/substring match over element names in the Structured Index, with type/language/file filters."},
		{Name: "statistics", Description: "Element count and a histogram by type and language."},
		{Name: "get_children", Description: "Return the direct children of an element by id."},
		{Name: "index_status", Description: "Report whether the index is ready and which embedder is active."},
		{Name: "get_context_for_file", Description: "Return a file's elements plus its direct importers and importees."},
		{Name: "get_project_structure", Description: "Return the indexed directory/file tree with per-file element counts."},
		{Name: "get_dependencies", Description: "Return dependency-manifest files and parsed import/require edges."},
		{Name: "clean", Description: "Remove all persisted index state for the project."},
	}
}

// Search executes a hybrid search query and returns markdown-formatted results.
func (s *Service) Search(ctx context.Context, in SearchInput) (string, error) {
	if msg, indexing := s.indexingNotice(); indexing {
		return msg, nil
	}

	if strings.TrimSpace(in.Query) == "" {
		return "", NewInvalidParamsError("query cannot be empty or whitespace only")
	}

	start := time.Now()
	requestID := generateRequestID()
	limit := clampLimit(in.Limit, 10, 1, 50)

	s.logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("query", in.Query),
		slog.Int("limit", limit))

	opts := query.SearchOptions{
		Limit:    limit,
		Filter:   in.Filter,
		Language: in.Language,
		Scopes:   in.Scope,
	}

	results, err := s.engine.Search(ctx, in.Query, opts)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("search failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}

	s.logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(results)))

	return FormatSearchResults(in.Query, results), nil
}

// SearchCode executes a code-scoped search and returns markdown-formatted results.
func (s *Service) SearchCode(ctx context.Context, in SearchCodeInput) (string, error) {
	if strings.TrimSpace(in.Query) == "" {
		return "", NewInvalidParamsError("query parameter is required and must be a non-empty string")
	}

	start := time.Now()
	requestID := generateRequestID()
	limit := clampLimit(in.Limit, 10, 1, 50)

	s.logger.Info("search_code started",
		slog.String("request_id", requestID),
		slog.String("query", in.Query),
		slog.Int("limit", limit))

	opts := query.SearchOptions{
		Limit:    limit,
		Filter:   "code",
		Language: in.Language,
		Scopes:   in.Scope,
	}
	if in.SymbolType != "" && in.SymbolType != "any" {
		opts.SymbolType = in.SymbolType
	}

	results, err := s.engine.Search(ctx, in.Query, opts)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("search_code failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}

	s.logger.Info("search_code completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(results)))

	return FormatCodeResults(in.Query, results, in.Language), nil
}

// SearchDocs executes a documentation-scoped search and returns markdown-formatted results.
func (s *Service) SearchDocs(ctx context.Context, in SearchDocsInput) (string, error) {
	if strings.TrimSpace(in.Query) == "" {
		return "", NewInvalidParamsError("query parameter is required and must be a non-empty string")
	}

	start := time.Now()
	requestID := generateRequestID()
	limit := clampLimit(in.Limit, 10, 1, 50)

	s.logger.Info("search_docs started",
		slog.String("request_id", requestID),
		slog.String("query", in.Query),
		slog.Int("limit", limit))

	opts := query.SearchOptions{
		Limit:  limit,
		Filter: "docs",
		Scopes: in.Scope,
	}

	results, err := s.engine.Search(ctx, in.Query, opts)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("search_docs failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}

	s.logger.Info("search_docs completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(results)))

	return FormatDocsResults(in.Query, results), nil
}

// SearchStructured executes a structural query directly against the
// Structured Index (spec §4.4 search_structural): pattern is matched
// against element name as a glob when it contains any of "*?[", and as
// a plain substring otherwise, so "get_*" matches "get_user" and
// "get_users" but not "getUser". This is a name/metadata lookup, not a
// ranked content search - unlike Search/SearchCode/SearchDocs it never
// touches the BM25/vector hybrid engine.
func (s *Service) SearchStructured(ctx context.Context, in SearchStructuralInput) (SearchStructuralOutput, error) {
	if strings.TrimSpace(in.Pattern) == "" {
		return SearchStructuralOutput{}, NewInvalidParamsError("pattern parameter is required")
	}

	limit := clampLimit(in.Limit, 20, 1, 200)
	elements, err := s.metadata.SearchStructural(ctx, in.Pattern, in.Type, in.Language, in.File, limit)
	if err != nil {
		return SearchStructuralOutput{}, MapError(err)
	}

	out := SearchStructuralOutput{Results: make([]StructuralResultOutput, 0, len(elements))}
	for _, e := range elements {
		out.Results = append(out.Results, StructuralResultOutput{
			FilePath:  e.FilePath,
			Name:      e.Name,
			Type:      e.Type,
			Language:  e.Language,
			StartLine: e.StartLine,
			EndLine:   e.EndLine,
			Signature: e.Signature,
		})
	}
	return out, nil
}

// Statistics reports the element count and a type/language histogram
// for the project's Structured Index (spec §4.4 statistics()).
func (s *Service) Statistics(ctx context.Context) (*ElementStatisticsOutput, error) {
	stats, err := s.metadata.ElementStats(ctx, s.projectID)
	if err != nil {
		return nil, MapError(err)
	}
	return &ElementStatisticsOutput{
		ElementCount: stats.Count,
		ByType:       stats.ByType,
		ByLanguage:   stats.ByLanguage,
	}, nil
}

// GetChildren returns the direct children of the element with the given id
// (spec §4.4 get_children(id)), as recorded via each element's parent_id at
// index time.
func (s *Service) GetChildren(ctx context.Context, id string) (*GetChildrenOutput, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewInvalidParamsError("id parameter is required")
	}

	children, err := s.metadata.GetChildren(ctx, id)
	if err != nil {
		return nil, MapError(err)
	}

	out := &GetChildrenOutput{Children: make([]ElementOutput, 0, len(children))}
	for _, e := range children {
		out.Children = append(out.Children, ElementOutput{
			ID:        e.ID,
			FilePath:  e.FilePath,
			Type:      e.Type,
			Name:      e.Name,
			StartLine: e.StartLine,
			EndLine:   e.EndLine,
			Language:  e.Language,
			ParentID:  e.ParentID,
			Signature: e.Signature,
			Docstring: e.Docstring,
		})
	}
	return out, nil
}

// IndexStatus reports whether the index is ready and which embedder is active.
func (s *Service) IndexStatus(ctx context.Context) (*IndexStatusOutput, error) {
	start := time.Now()
	requestID := generateRequestID()
	s.logger.Info("index_status started", slog.String("request_id", requestID))

	stats := s.engine.Stats()

	var actualProvider, actualModel, semanticQuality, status string
	var dimensions int
	var isFallbackActive bool

	if s.embedder != nil {
		actualModel = s.embedder.ModelName()
		dimensions = s.embedder.Dimensions()
		isFallbackActive = actualModel == "static" || dimensions == embed.StaticDimensions

		if isFallbackActive {
			actualProvider = "static"
			semanticQuality = "low"
		} else {
			actualProvider = "ollama"
			semanticQuality = "high"
		}

		if s.embedder.Available(ctx) {
			status = "ready"
		} else {
			status = "unavailable"
		}
	} else {
		actualProvider = "none"
		actualModel = "none"
		isFallbackActive = true
		semanticQuality = "none"
		status = "unavailable"
	}

	detector := NewProjectDetector(s.rootPath, s.logger)
	projectInfo := detector.Detect()

	output := &IndexStatusOutput{
		Project: *projectInfo,
		Stats: IndexStats{
			LastIndexed: time.Now().Format(time.RFC3339),
		},
		Embeddings: EmbeddingInfo{
			Provider: s.config.Embeddings.Provider,
			Model:    s.config.Embeddings.ModelID,
			Status:   status,

			ActualProvider:   actualProvider,
			ActualModel:      actualModel,
			Dimensions:       dimensions,
			IsFallbackActive: isFallbackActive,
			SemanticQuality:  semanticQuality,
		},
	}

	if stats != nil {
		if stats.BM25Stats != nil {
			output.Stats.FileCount = stats.BM25Stats.DocumentCount
		}
		output.Stats.ChunkCount = stats.VectorCount
	}

	s.mu.RLock()
	progress := s.indexProgress
	s.mu.RUnlock()

	if progress != nil {
		snap := progress.Snapshot()
		output.Indexing = &IndexingProgress{
			Status:         snap.Status,
			Stage:          snap.Stage,
			FilesTotal:     snap.FilesTotal,
			FilesProcessed: snap.FilesProcessed,
			ChunksIndexed:  snap.ChunksIndexed,
			ProgressPct:    snap.ProgressPct,
			ElapsedSeconds: snap.ElapsedSeconds,
			ErrorMessage:   snap.ErrorMessage,
		}
	}

	s.logger.Info("index_status completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.String("project_name", projectInfo.Name),
		slog.String("project_type", projectInfo.Type))

	return output, nil
}

// GetContextForFile returns every element defined in path, plus the files
// that appear to import it and the files it appears to import, derived from
// the import/package-declaration text each parser captured in Chunk.Context.
// radius bounds how many importer/importee paths are reported; it does not
// walk multiple hops, since the index keeps no separate import-edge graph -
// see the Open Question in the design notes.
func (s *Service) GetContextForFile(ctx context.Context, path string, radius int) (*FileContextOutput, error) {
	if !isValidPath(path) {
		return nil, NewInvalidParamsError(fmt.Sprintf("invalid path: %s", path))
	}
	if radius <= 0 {
		radius = 10
	}

	file, err := s.metadata.GetFileByPath(ctx, s.projectID, path)
	if err != nil {
		return nil, MapError(err)
	}
	if file == nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("file not indexed: %s", path))
	}

	chunks, err := s.metadata.GetChunksByFile(ctx, file.ID)
	if err != nil {
		return nil, MapError(err)
	}

	out := &FileContextOutput{}
	var ownImports []string
	for _, c := range chunks {
		ownImports = append(ownImports, strings.Fields(c.Context)...)
		if len(c.Symbols) == 0 {
			out.Elements = append(out.Elements, ContextElement{
				FilePath: c.FilePath, StartLine: c.StartLine, EndLine: c.EndLine,
			})
			continue
		}
		for _, sym := range c.Symbols {
			out.Elements = append(out.Elements, ContextElement{
				FilePath: c.FilePath, Symbol: sym.Name, SymbolType: string(sym.Type),
				StartLine: sym.StartLine, EndLine: sym.EndLine,
			})
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	paths, err := s.metadata.GetFilePathsByProject(ctx, s.projectID)
	if err != nil {
		return nil, MapError(err)
	}

	for _, other := range paths {
		if other == path || len(out.Importers) >= radius && len(out.Importees) >= radius {
			continue
		}
		otherStem := strings.TrimSuffix(filepath.Base(other), filepath.Ext(other))

		if len(out.Importees) < radius && containsToken(ownImports, otherStem) {
			out.Importees = append(out.Importees, other)
		}

		if len(out.Importers) < radius {
			otherFile, err := s.metadata.GetFileByPath(ctx, s.projectID, other)
			if err != nil || otherFile == nil {
				continue
			}
			otherChunks, err := s.metadata.GetChunksByFile(ctx, otherFile.ID)
			if err != nil {
				continue
			}
			for _, c := range otherChunks {
				if strings.Contains(c.Context, stem) {
					out.Importers = append(out.Importers, other)
					break
				}
			}
		}
	}

	return out, nil
}

// containsToken reports whether any import token contains needle as a
// substring (import lines carry full module paths, not bare file stems).
func containsToken(tokens []string, needle string) bool {
	if needle == "" {
		return false
	}
	for _, t := range tokens {
		if strings.Contains(t, needle) {
			return true
		}
	}
	return false
}

// GetProjectStructure returns the indexed file tree with per-file element
// counts by symbol type.
func (s *Service) GetProjectStructure(ctx context.Context) (*ProjectStructureOutput, error) {
	paths, err := s.metadata.GetFilePathsByProject(ctx, s.projectID)
	if err != nil {
		return nil, MapError(err)
	}
	sort.Strings(paths)

	seenDirs := map[string]bool{}
	out := &ProjectStructureOutput{}

	for _, p := range paths {
		dir := filepath.Dir(p)
		for dir != "." && dir != string(filepath.Separator) && !seenDirs[dir] {
			seenDirs[dir] = true
			out.Entries = append(out.Entries, DirEntry{Path: dir, IsDir: true})
			dir = filepath.Dir(dir)
		}

		counts := map[string]int{}
		if file, err := s.metadata.GetFileByPath(ctx, s.projectID, p); err == nil && file != nil {
			if chunks, err := s.metadata.GetChunksByFile(ctx, file.ID); err == nil {
				for _, c := range chunks {
					for _, sym := range c.Symbols {
						counts[string(sym.Type)]++
					}
				}
			}
		}
		out.Entries = append(out.Entries, DirEntry{Path: p, IsDir: false, ElementCount: counts})
	}

	return out, nil
}

// GetDependencies returns the union of recognised dependency-manifest files
// (found even inside normally-excluded directories) and the import/require
// edges parsers captured per indexed chunk.
func (s *Service) GetDependencies(ctx context.Context) (*DependenciesOutput, error) {
	manifests, err := exclude.ScanDependencyFiles(s.rootPath)
	if err != nil {
		return nil, MapError(err)
	}

	paths, err := s.metadata.GetFilePathsByProject(ctx, s.projectID)
	if err != nil {
		return nil, MapError(err)
	}

	seen := map[string]bool{}
	out := &DependenciesOutput{Manifests: manifests}
	for _, p := range paths {
		file, err := s.metadata.GetFileByPath(ctx, s.projectID, p)
		if err != nil || file == nil {
			continue
		}
		chunks, err := s.metadata.GetChunksByFile(ctx, file.ID)
		if err != nil {
			continue
		}
		for _, c := range chunks {
			for _, tok := range strings.Fields(c.Context) {
				if !seen[tok] {
					seen[tok] = true
					out.Imports = append(out.Imports, tok)
				}
			}
		}
	}
	sort.Strings(out.Imports)

	return out, nil
}

// Clean removes all persisted index state for the project: structured
// metadata rows and the on-disk BM25/vector/checkpoint files under
// <root>/.contextbrain. With DryRun set it only reports what would be
// removed.
func (s *Service) Clean(ctx context.Context, in CleanInput) (*CleanOutput, error) {
	files, _, err := s.metadata.ListFiles(ctx, s.projectID, "", 1_000_000)
	if err != nil {
		return nil, MapError(err)
	}

	chunkCount := 0
	for _, f := range files {
		chunks, err := s.metadata.GetChunksByFile(ctx, f.ID)
		if err == nil {
			chunkCount += len(chunks)
		}
	}

	out := &CleanOutput{DryRun: in.DryRun, FilesRemoved: len(files), ChunksRemoved: chunkCount}
	if in.DryRun {
		return out, nil
	}

	if err := s.metadata.DeleteFilesByProject(ctx, s.projectID); err != nil {
		return nil, MapError(err)
	}

	dataDir := filepath.Join(s.rootPath, ".contextbrain")
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
	removedAny := false
	for _, p := range indexFiles {
		if rmErr := os.RemoveAll(p); rmErr == nil {
			removedAny = true
		}
	}
	out.DataDirRemoved = removedAny

	return out, nil
}

// ListResources lists indexed files as readable resources.
func (s *Service) ListResources(ctx context.Context) ([]ResourceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, _, err := s.metadata.ListFiles(ctx, s.projectID, "", 10000)
	if err != nil {
		return nil, MapError(err)
	}

	resources := make([]ResourceInfo, 0, len(files))
	for _, f := range files {
		resources = append(resources, ResourceInfo{
			URI:      fmt.Sprintf("file://%s", f.Path),
			Name:     f.Path,
			MIMEType: MimeTypeForPath(f.Path),
		})
	}
	return resources, nil
}

// ReadResource reads a resource by URI. Supported schemes are chunk:// (by
// chunk ID) and file:// (by path relative to the project root).
func (s *Service) ReadResource(ctx context.Context, uri string) (*ResourceContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case strings.HasPrefix(uri, "chunk://"):
		return s.readChunkResource(ctx, strings.TrimPrefix(uri, "chunk://"))
	case strings.HasPrefix(uri, "file://"):
		return s.readFileResource(ctx, strings.TrimPrefix(uri, "file://"))
	default:
		return nil, NewResourceNotFoundError(uri)
	}
}

func (s *Service) readChunkResource(ctx context.Context, chunkID string) (*ResourceContent, error) {
	c, err := s.metadata.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, MapError(err)
	}
	if c == nil {
		return nil, NewResourceNotFoundError("chunk://" + chunkID)
	}

	return &ResourceContent{
		URI:      "chunk://" + chunkID,
		Content:  c.Content,
		MIMEType: mimeTypeForLanguage(c.Language),
	}, nil
}

func (s *Service) readFileResource(ctx context.Context, relativePath string) (*ResourceContent, error) {
	if !isValidPath(relativePath) {
		return nil, NewInvalidParamsError(fmt.Sprintf("invalid path: %s", relativePath))
	}

	file, err := s.metadata.GetFileByPath(ctx, s.projectID, relativePath)
	if err != nil {
		return nil, MapError(err)
	}
	if file == nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("file not indexed: %s", relativePath))
	}

	fullPath := filepath.Join(s.rootPath, relativePath)

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeFileNotFound, Message: fmt.Sprintf("file not found: %s", relativePath)}
		}
		return nil, MapError(err)
	}
	if info.Size() > MaxResourceSize {
		return nil, &Error{Code: ErrCodeFileTooLarge, Message: fmt.Sprintf("file too large: %d bytes (max %d)", info.Size(), MaxResourceSize)}
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, MapError(err)
	}

	return &ResourceContent{
		URI:      "file://" + relativePath,
		Content:  string(content),
		MIMEType: MimeTypeForPath(relativePath),
	}, nil
}

// indexingNotice returns a human-readable progress notice and true when a
// background index run is currently active.
func (s *Service) indexingNotice() (string, bool) {
	s.mu.RLock()
	progress := s.indexProgress
	s.mu.RUnlock()

	if progress == nil || !progress.IsIndexing() {
		return "", false
	}

	snap := progress.Snapshot()
	return fmt.Sprintf("## Indexing in Progress\n\n"+
		"**Progress:** %.1f%% (%d/%d files)\n"+
		"**Stage:** %s\n\n"+
		"Search results may be incomplete or unavailable. Please try again in a moment.",
		snap.ProgressPct, snap.FilesProcessed, snap.FilesTotal, snap.Stage), true
}

// isValidPath rejects absolute paths and path traversal attempts.
func isValidPath(path string) bool {
	if path == "" {
		return false
	}
	if filepath.IsAbs(path) {
		return false
	}
	if len(path) >= 2 && path[1] == ':' {
		return false
	}

	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") {
		return false
	}
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return false
		}
	}
	return true
}

// mimeTypeForLanguage returns the MIME type for a programming language name,
// used when serving chunk:// resources that have a language but no path.
func mimeTypeForLanguage(lang string) string {
	switch strings.ToLower(lang) {
	case "go":
		return "text/x-go"
	case "typescript", "ts":
		return "text/typescript"
	case "javascript", "js":
		return "text/javascript"
	case "python", "py":
		return "text/x-python"
	case "rust", "rs":
		return "text/x-rust"
	case "java":
		return "text/x-java"
	case "c":
		return "text/x-c"
	case "cpp", "c++":
		return "text/x-c++"
	case "markdown", "md":
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// generateRequestID creates a short unique ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
