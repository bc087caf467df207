package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/RealFaceCode/ContextBrain/internal/chunk"
	"github.com/RealFaceCode/ContextBrain/internal/element"
	"github.com/RealFaceCode/ContextBrain/internal/exclude"
	"github.com/RealFaceCode/ContextBrain/internal/lockfile"
	"github.com/RealFaceCode/ContextBrain/internal/query"
	"github.com/RealFaceCode/ContextBrain/internal/store"
	"github.com/RealFaceCode/ContextBrain/internal/walker"
	"github.com/RealFaceCode/ContextBrain/internal/watcher"
)

// DefaultMaxFileSize is the default maximum file size to index (10MB),
// matching internal/walker.DefaultMaxFileSize.
const DefaultMaxFileSize int64 = walker.DefaultMaxFileSize

// CoordinatorConfig contains configuration for the Coordinator.
type CoordinatorConfig struct {
	// ProjectID is the unique identifier for this project.
	ProjectID string

	// RootPath is the absolute path to the project root.
	RootPath string

	// DataDir is the path to the .contextbrain directory.
	DataDir string

	// Engine is the query engine for indexing and deletion.
	Engine *query.Engine

	// Metadata is the metadata store for file/chunk tracking.
	Metadata store.MetadataStore

	// CodeChunker handles code files.
	CodeChunker chunk.Chunker

	// MDChunker handles markdown files.
	MDChunker chunk.Chunker

	// Filter is the exclusion filter used for gitignore reconciliation
	// (optional). When set, enables automatic index updates on
	// .gitignore / exclude-pattern changes.
	Filter *exclude.Filter

	// FilterOptions, when set, lets the Coordinator rebuild Filter from
	// scratch on a .gitignore change so newly added or removed patterns
	// (including in nested .gitignore files) take effect immediately. If
	// nil, Filter is reused as-is across reconciliations.
	FilterOptions *exclude.Options

	// MaxFileSize is the maximum file size to index in bytes (optional).
	// Files larger than this are skipped with a warning.
	// Defaults to DefaultMaxFileSize if zero.
	MaxFileSize int64
}

// Coordinator handles incremental index updates based on file events.
// It is the sole writer of the structured and vector indices (spec §5):
// all mutation flows through HandleEvents or the reconciliation methods,
// serialised by mu.
type Coordinator struct {
	config CoordinatorConfig
	mu     sync.Mutex
	lock   *lockfile.Lock
}

// NewCoordinator creates a new index coordinator.
func NewCoordinator(config CoordinatorConfig) *Coordinator {
	return &Coordinator{
		config: config,
		lock:   lockfile.New(config.DataDir),
	}
}

// Open acquires the cross-process lock on the project's data directory,
// failing fast if another process (a one-shot index run, or another
// watcher) is already writing to it.
func (c *Coordinator) Open() error {
	acquired, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("index directory %s is locked by another process", c.config.DataDir)
	}
	return nil
}

// Close releases the cross-process lock acquired by Open.
func (c *Coordinator) Close() error {
	return c.lock.Unlock()
}

// maxFileSize returns the effective maximum file size (uses default if not configured).
func (c *Coordinator) maxFileSize() int64 {
	if c.config.MaxFileSize > 0 {
		return c.config.MaxFileSize
	}
	return DefaultMaxFileSize
}

// HandleEvents processes a batch of file events.
func (c *Coordinator) HandleEvents(ctx context.Context, events []watcher.FileEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var processed int
	for _, event := range events {
		if err := c.handleEvent(ctx, event); err != nil {
			// Log warning but continue processing other events (graceful degradation)
			slog.Warn("failed to process file event",
				slog.String("path", event.Path),
				slog.String("operation", event.Operation.String()),
				slog.String("error", err.Error()))
			continue
		}
		processed++
	}

	// Update project stats after processing events (refresh indexed_at timestamp)
	if processed > 0 {
		if err := c.config.Metadata.RefreshProjectStats(ctx, c.config.ProjectID); err != nil {
			slog.Warn("failed to refresh project stats", slog.String("error", err.Error()))
		}
	}

	return nil
}

// handleEvent processes a single file event.
func (c *Coordinator) handleEvent(ctx context.Context, event watcher.FileEvent) error {
	slog.Debug("processing file event",
		slog.String("path", event.Path),
		slog.String("operation", event.Operation.String()),
		slog.Bool("is_dir", event.IsDir))

	// Skip directories
	if event.IsDir {
		return nil
	}

	switch event.Operation {
	case watcher.OpCreate, watcher.OpModify:
		return c.indexFile(ctx, event.Path)
	case watcher.OpDelete:
		return c.removeFile(ctx, event.Path)
	case watcher.OpRename:
		// Rename is handled as delete + create by the watcher
		return nil
	case watcher.OpGitignoreChange:
		return c.reconcileGitignoreInternal(ctx)
	case watcher.OpConfigChange:
		return c.handleConfigChange(ctx)
	default:
		return nil
	}
}

// indexFile indexes or re-indexes a file.
func (c *Coordinator) indexFile(ctx context.Context, relPath string) error {
	absPath := filepath.Join(c.config.RootPath, relPath)

	// Use Lstat to detect symlinks without following them.
	info, err := os.Lstat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	// Skip symlinks to prevent security issues and infinite loops.
	if info.Mode()&os.ModeSymlink != 0 {
		slog.Debug("skipping symlink", slog.String("path", relPath))
		return nil
	}

	// Check file size before reading to prevent memory exhaustion.
	maxSize := c.maxFileSize()
	if info.Size() > maxSize {
		slog.Warn("skipping oversized file",
			slog.String("path", relPath),
			slog.Int64("size", info.Size()),
			slog.Int64("max", maxSize))
		return nil // Skip gracefully, don't error
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Skip binary files
	if isBinaryContent(content) {
		return nil
	}

	// Detect language and content type
	language := walker.DetectLanguage(relPath)
	if language == "" {
		return nil
	}
	contentType := detectContentType(language)

	// Skip files without a matching chunker (only code and markdown are indexed)
	if contentType != chunk.ContentTypeCode && contentType != chunk.ContentTypeMarkdown {
		return nil
	}

	// Remove existing chunks for this file (for modifications)
	// Ignore error - file might not exist in index yet
	_ = c.removeFile(ctx, relPath)

	// Select the appropriate chunker
	var chunker chunk.Chunker
	switch contentType {
	case chunk.ContentTypeCode:
		chunker = c.config.CodeChunker
	case chunk.ContentTypeMarkdown:
		chunker = c.config.MDChunker
	default:
		return nil
	}

	// Chunk the file
	fileInput := &chunk.FileInput{
		Path:     relPath,
		Content:  content,
		Language: language,
	}

	chunks, elements, err := chunker.Chunk(ctx, fileInput)
	if err != nil {
		return fmt.Errorf("failed to chunk file: %w", err)
	}

	if len(chunks) == 0 && len(elements) == 0 {
		return nil
	}

	fileID := generateFileID(c.config.ProjectID, relPath)

	// Save file record FIRST (chunks have foreign key to files)
	file := &store.File{
		ID:          fileID,
		ProjectID:   c.config.ProjectID,
		Path:        relPath,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentHash: hashContent(content),
		Language:    language,
		ContentType: string(contentType),
	}

	if err := c.config.Metadata.SaveFiles(ctx, []*store.File{file}); err != nil {
		return fmt.Errorf("failed to save file record: %w", err)
	}

	// Convert to store.Chunk format
	storeChunks := make([]*store.Chunk, len(chunks))
	for i, ch := range chunks {
		symbols := make([]*store.Symbol, len(ch.Symbols))
		for j, sym := range ch.Symbols {
			symbols[j] = &store.Symbol{
				Name:       sym.Name,
				Type:       store.SymbolType(sym.Type),
				StartLine:  sym.StartLine,
				EndLine:    sym.EndLine,
				Signature:  sym.Signature,
				DocComment: sym.DocComment,
			}
		}
		storeChunks[i] = &store.Chunk{
			ID:          ch.ID,
			FileID:      fileID,
			FilePath:    relPath,
			Content:     ch.Content,
			RawContent:  ch.RawContent,
			Context:     ch.Context,
			ContentType: store.ContentType(ch.ContentType),
			Language:    ch.Language,
			StartLine:   ch.StartLine,
			EndLine:     ch.EndLine,
			Symbols:     symbols,
			Metadata:    ch.Metadata,
		}
	}

	// Index the chunks (engine handles embeddings and saves to metadata)
	if err := c.config.Engine.Index(ctx, storeChunks); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	// Replace the Structured Index's element rows for this file
	// atomically (spec §4.4 upsert_elements), so the canonical parsed
	// record survives past chunking instead of being a throwaway
	// intermediate.
	storeElements := convertElementsToStore(c.config.ProjectID, fileID, elements)
	if err := c.config.Metadata.UpsertElements(ctx, fileID, storeElements); err != nil {
		return fmt.Errorf("failed to save elements: %w", err)
	}

	return nil
}

// convertElementsToStore maps the chunker's parsed element.Element
// graph onto the Structured Index's persisted store.Element rows.
func convertElementsToStore(projectID, fileID string, elements []*element.Element) []*store.Element {
	out := make([]*store.Element, len(elements))
	for i, e := range elements {
		out[i] = &store.Element{
			ID:           e.ID,
			ProjectID:    projectID,
			FileID:       fileID,
			FilePath:     e.FilePath,
			Type:         string(e.Type),
			Name:         e.Name,
			StartLine:    e.StartLine,
			EndLine:      e.EndLine,
			Language:     e.Language,
			ParentID:     e.ParentID,
			ChildrenIDs:  e.ChildrenIDs,
			Signature:    e.Signature,
			Docstring:    e.Docstring,
			Dependencies: e.Dependencies,
			Content:      e.Content,
			Metadata:     e.Metadata,
		}
	}
	return out
}

// removeFile removes a file's chunks from the index.
func (c *Coordinator) removeFile(ctx context.Context, relPath string) error {
	fileID := generateFileID(c.config.ProjectID, relPath)

	// Get existing chunks for this file
	chunks, err := c.config.Metadata.GetChunksByFile(ctx, fileID)
	if err != nil {
		// File might not exist in index
		return nil
	}

	if len(chunks) == 0 {
		// No chunks, but file record might exist - still try to delete it
		if err := c.config.Metadata.DeleteFile(ctx, fileID); err != nil {
			slog.Warn("failed to delete orphan file record",
				slog.String("file_id", fileID),
				slog.String("path", relPath),
				slog.String("error", err.Error()))
		}
		return nil
	}

	// Collect chunk IDs
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}

	// Delete from search indices
	if err := c.config.Engine.Delete(ctx, chunkIDs); err != nil {
		return fmt.Errorf("failed to delete from index: %w", err)
	}

	// Delete file record from metadata (this cascades to chunks via ON DELETE CASCADE)
	if err := c.config.Metadata.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// handleConfigChange handles .contextbrain.yaml configuration file changes.
// Full hot-reload of config requires a restart; this triggers a
// reconciliation pass so files newly in/out of scope based on exclusion
// patterns already loaded are caught without waiting for the next full run.
func (c *Coordinator) handleConfigChange(ctx context.Context) error {
	slog.Info("configuration file changed",
		slog.String("note", "restart to fully reload configuration"))

	if c.config.Filter == nil {
		slog.Warn("config change detected but filter not configured, skipping reconciliation")
		return nil
	}

	return c.reconcileGitignoreInternal(ctx)
}

// generateFileID creates a deterministic file ID.
func generateFileID(projectID, path string) string {
	input := fmt.Sprintf("%s:%s", projectID, path)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// hashContent creates a hash of file content.
func hashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// detectContentType classifies a detected language as code or markdown.
func detectContentType(language string) chunk.ContentType {
	if language == "markdown" {
		return chunk.ContentTypeMarkdown
	}
	return chunk.ContentTypeCode
}

// isBinaryContent checks if content appears to be binary.
func isBinaryContent(content []byte) bool {
	checkLen := 512
	if len(content) < checkLen {
		checkLen = len(content)
	}

	for i := 0; i < checkLen; i++ {
		if content[i] == 0 {
			return true
		}
	}

	return false
}

// GitignoreHashKey is the state key for storing the gitignore hash.
// Exported for use by the index command to save the hash after completion.
const GitignoreHashKey = "gitignore_hash"

// ComputeGitignoreHash computes a SHA256 hash of the project's .gitignore files.
// Directories whose names start with "." and node_modules/vendor directories
// are not searched.
// The hash is deterministic: files are sorted by path and each contributes "path:content".
func ComputeGitignoreHash(rootPath string) (string, error) {
	var gitignorePaths []string

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if d.IsDir() {
			name := d.Name()
			if name != "." && (name[0] == '.' || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == ".gitignore" {
			gitignorePaths = append(gitignorePaths, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(gitignorePaths)

	h := sha256.New()
	for _, path := range gitignorePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue // Skip unreadable files
		}
		relPath, _ := filepath.Rel(rootPath, path)
		h.Write([]byte(relPath))
		h.Write([]byte(":"))
		h.Write(content)
		h.Write([]byte("\n"))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReconcileOnStartup checks if .gitignore files have changed since last run
// and reconciles the index if needed. This handles changes made while the
// watcher was stopped.
func (c *Coordinator) ReconcileOnStartup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.Filter == nil {
		slog.Debug("startup reconciliation skipped: filter not configured")
		return nil
	}

	cachedHash, err := c.config.Metadata.GetState(ctx, GitignoreHashKey)
	if err != nil {
		slog.Warn("failed to get cached gitignore hash", slog.String("error", err.Error()))
	}

	currentHash, err := ComputeGitignoreHash(c.config.RootPath)
	if err != nil {
		slog.Warn("failed to compute gitignore hash", slog.String("error", err.Error()))
		return nil // Non-fatal, skip reconciliation
	}

	if cachedHash == currentHash && cachedHash != "" {
		slog.Debug("gitignore unchanged since last run, skipping startup reconciliation")
		return nil
	}

	slog.Info("gitignore changed since last run, reconciling index")

	if err := c.reconcileGitignoreInternal(ctx); err != nil {
		return fmt.Errorf("startup reconciliation failed: %w", err)
	}

	if err := c.config.Metadata.SetState(ctx, GitignoreHashKey, currentHash); err != nil {
		slog.Warn("failed to save gitignore hash", slog.String("error", err.Error()))
	}

	return nil
}

// reconcileGitignoreInternal re-walks the project and brings the index in
// sync with the current exclusion filter. It is called both from runtime
// watcher events (gitignore/config changes) and from ReconcileOnStartup.
func (c *Coordinator) reconcileGitignoreInternal(ctx context.Context) error {
	if c.config.Filter == nil {
		return nil
	}

	if c.config.FilterOptions != nil {
		c.config.Filter = exclude.NewFilter(*c.config.FilterOptions)
	}

	slog.Debug("reconciling index against current exclusion rules")

	indexedPaths, err := c.config.Metadata.GetFilePathsByProject(ctx, c.config.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get indexed files: %w", err)
	}

	indexedSet := make(map[string]bool, len(indexedPaths))
	for _, p := range indexedPaths {
		indexedSet[p] = true
	}

	shouldBeIndexed, err := c.scanCurrentFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan for reconciliation: %w", err)
	}

	var toRemove []string
	for path := range indexedSet {
		if _, ok := shouldBeIndexed[path]; !ok {
			toRemove = append(toRemove, path)
		}
	}

	var toAdd []string
	for path := range shouldBeIndexed {
		if !indexedSet[path] {
			toAdd = append(toAdd, path)
		}
	}

	for _, path := range toRemove {
		if err := c.removeFile(ctx, path); err != nil {
			slog.Warn("failed to remove file during reconciliation",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	for _, path := range toAdd {
		if err := c.indexFile(ctx, path); err != nil {
			slog.Warn("failed to index file during reconciliation",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	if len(toRemove) > 0 || len(toAdd) > 0 {
		slog.Info("reconciliation completed",
			slog.Int("removed", len(toRemove)),
			slog.Int("added", len(toAdd)))
	} else {
		slog.Debug("reconciliation: no changes needed")
	}

	return nil
}

// scanCurrentFiles walks the project with the current exclusion filter and
// returns the set of paths that should be indexed.
func (c *Coordinator) scanCurrentFiles(ctx context.Context) (map[string]*walker.Entry, error) {
	resultChan, err := walker.Walk(ctx, walker.Options{
		Root:   c.config.RootPath,
		Filter: c.config.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start walk: %w", err)
	}

	current := make(map[string]*walker.Entry)
	for result := range resultChan {
		if result.Err != nil || result.Entry == nil {
			continue
		}
		contentType := detectContentType(result.Entry.Language)
		if contentType == chunk.ContentTypeCode || contentType == chunk.ContentTypeMarkdown {
			current[result.Entry.Path] = result.Entry
		}
	}
	return current, nil
}

// ChangeType represents the type of file change detected during reconciliation.
type ChangeType int

const (
	// ChangeTypeAdded indicates a new file that needs indexing.
	ChangeTypeAdded ChangeType = iota
	// ChangeTypeModified indicates a file that was modified and needs re-indexing.
	ChangeTypeModified
	// ChangeTypeDeleted indicates a file that was deleted and needs removal from index.
	ChangeTypeDeleted
)

// FileChange represents a detected file change during startup reconciliation.
type FileChange struct {
	Path string
	Type ChangeType
}

// ReconcileFilesOnStartup detects and reconciles file changes that occurred
// while the watcher was stopped: new files that need indexing, modified
// files that need re-indexing, and deleted files that need chunk removal.
func (c *Coordinator) ReconcileFilesOnStartup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.Filter == nil {
		slog.Debug("file reconciliation skipped: filter not configured")
		return nil
	}

	slog.Debug("starting file reconciliation check")

	indexedFiles, err := c.config.Metadata.GetFilesForReconciliation(ctx, c.config.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get indexed files: %w", err)
	}

	if len(indexedFiles) == 0 {
		slog.Debug("no indexed files found, skipping file reconciliation")
		return nil
	}

	currentFiles, err := c.scanCurrentFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan filesystem: %w", err)
	}

	changes := c.detectFileChanges(indexedFiles, currentFiles)

	if len(changes) == 0 {
		slog.Debug("no file changes detected since last index")
		return nil
	}

	var added, modified, deleted int
	for _, ch := range changes {
		switch ch.Type {
		case ChangeTypeAdded:
			added++
		case ChangeTypeModified:
			modified++
		case ChangeTypeDeleted:
			deleted++
		}
	}

	slog.Info("file changes detected, reconciling",
		slog.Int("added", added),
		slog.Int("modified", modified),
		slog.Int("deleted", deleted))

	if err := c.applyFileChanges(ctx, changes); err != nil {
		return fmt.Errorf("failed to apply file changes: %w", err)
	}

	slog.Info("file reconciliation completed",
		slog.Int("total_changes", len(changes)))

	return nil
}

// detectFileChanges compares indexed vs current files and returns changes.
func (c *Coordinator) detectFileChanges(indexed map[string]*store.File, current map[string]*walker.Entry) []FileChange {
	var changes []FileChange

	for path, indexedFile := range indexed {
		currentFile, exists := current[path]
		if !exists {
			changes = append(changes, FileChange{Path: path, Type: ChangeTypeDeleted})
			continue
		}
		if currentFile.Size != indexedFile.Size {
			changes = append(changes, FileChange{Path: path, Type: ChangeTypeModified})
		}
	}

	for path := range current {
		if _, exists := indexed[path]; !exists {
			changes = append(changes, FileChange{Path: path, Type: ChangeTypeAdded})
		}
	}

	// Sort changes for deterministic processing: deletions first, then modifications, then additions
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Type != changes[j].Type {
			return changes[i].Type > changes[j].Type // Deleted (2) > Modified (1) > Added (0)
		}
		return changes[i].Path < changes[j].Path
	})

	return changes
}

// applyFileChanges processes the detected changes, checking for shutdown
// before each file operation so a cancelled context stops cleanly rather
// than racing a closing store.
func (c *Coordinator) applyFileChanges(ctx context.Context, changes []FileChange) error {
	var deleted, modified, added int

	for i, change := range changes {
		select {
		case <-ctx.Done():
			slog.Debug("file reconciliation interrupted by shutdown",
				slog.Int("processed", i),
				slog.Int("remaining", len(changes)-i))
			return nil // Graceful shutdown, not an error
		default:
		}

		switch change.Type {
		case ChangeTypeDeleted:
			if err := c.removeFile(ctx, change.Path); err != nil {
				slog.Warn("failed to remove deleted file from index",
					slog.String("path", change.Path),
					slog.String("error", err.Error()))
			} else {
				deleted++
			}
		case ChangeTypeModified:
			if err := c.indexFile(ctx, change.Path); err != nil {
				slog.Warn("failed to re-index modified file",
					slog.String("path", change.Path),
					slog.String("error", err.Error()))
			} else {
				modified++
			}
		case ChangeTypeAdded:
			if err := c.indexFile(ctx, change.Path); err != nil {
				slog.Warn("failed to index new file",
					slog.String("path", change.Path),
					slog.String("error", err.Error()))
			} else {
				added++
			}
		}
	}

	slog.Debug("file reconciliation applied",
		slog.Int("deleted", deleted),
		slog.Int("modified", modified),
		slog.Int("added", added))

	return nil
}
