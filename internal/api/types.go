package api

// SearchInput is the input for the Search operation.
type SearchInput struct {
	Query    string
	Limit    int
	Filter   string // "all", "code", "docs"
	Language string
	Scope    []string
}

// SearchCodeInput is the input for the SearchCode operation.
type SearchCodeInput struct {
	Query      string
	Language   string
	SymbolType string
	Limit      int
	Scope      []string
}

// SearchDocsInput is the input for the SearchDocs operation.
type SearchDocsInput struct {
	Query string
	Limit int
	Scope []string
}

// SearchOutput is the output of any of the search operations.
type SearchOutput struct {
	Results []SearchResultOutput
}

// SearchResultOutput is a single search result with context-rich metadata
// explaining why it matched.
type SearchResultOutput struct {
	FilePath     string
	Content      string
	Score        float64
	Language     string
	MatchReason  string
	Symbol       string
	SymbolType   string
	Signature    string
	MatchedTerms []string
	InBothLists  bool
}

// SearchStructuralInput is the input for the SearchStructured operation
// (spec §4.4 search_structural): a substring or glob pattern matched
// against element names, with optional type/language/file filters.
type SearchStructuralInput struct {
	Pattern  string
	Type     string // "function", "class", ... - empty matches any
	Language string
	File     string
	Limit    int
}

// StructuralResultOutput is one element matched by SearchStructured,
// found directly in the Structured Index rather than via the
// keyword/semantic hybrid engine.
type StructuralResultOutput struct {
	FilePath  string
	Name      string
	Type      string
	Language  string
	StartLine int
	EndLine   int
	Signature string
}

// SearchStructuralOutput is the output of the SearchStructured operation.
type SearchStructuralOutput struct {
	Results []StructuralResultOutput
}

// ElementStatisticsOutput is the output of the Statistics operation
// (spec §4.4 statistics()).
type ElementStatisticsOutput struct {
	ElementCount int
	ByType       map[string]int
	ByLanguage   map[string]int
}

// ElementOutput is one element of the Structured Index, as returned by
// GetChildren.
type ElementOutput struct {
	ID        string
	FilePath  string
	Type      string
	Name      string
	StartLine int
	EndLine   int
	Language  string
	ParentID  string
	Signature string
	Docstring string
}

// GetChildrenOutput is the output of the GetChildren operation
// (spec §4.4 get_children(id)).
type GetChildrenOutput struct {
	Children []ElementOutput
}

// IndexStatusOutput is the output of the IndexStatus operation.
type IndexStatusOutput struct {
	Project    ProjectInfo
	Stats      IndexStats
	Embeddings EmbeddingInfo
	Indexing   *IndexingProgress // non-nil while background indexing is in progress
}

// IndexingProgress describes ongoing background indexing.
type IndexingProgress struct {
	Status         string // "indexing", "ready", or "error"
	Stage          string // "scanning", "chunking", "embedding", "indexing"
	FilesTotal     int
	FilesProcessed int
	ChunksIndexed  int
	ProgressPct    float64
	ElapsedSeconds int
	ErrorMessage   string
}

// ProjectInfo describes the indexed project.
type ProjectInfo struct {
	Name     string
	RootPath string
	Type     string
}

// IndexStats describes the structured/semantic index state.
type IndexStats struct {
	FileCount      int
	ChunkCount     int
	IndexSizeBytes int64
	LastIndexed    string
}

// EmbeddingInfo describes the embedding configuration and runtime state, so
// callers can adjust their search strategy when semantic quality is degraded.
type EmbeddingInfo struct {
	Provider string
	Model    string
	Status   string

	ActualProvider   string
	ActualModel      string
	Dimensions       int
	IsFallbackActive bool
	SemanticQuality  string // "high", "low", or "none" (no embedder)
}

// ResourceInfo describes a file exposed as a readable resource.
type ResourceInfo struct {
	URI      string
	Name     string
	MIMEType string
}

// ResourceContent is the content of a resource read by URI.
type ResourceContent struct {
	URI      string
	Content  string
	MIMEType string
}

// ContextElement is one structural element returned by GetContextForFile or
// GetProjectStructure: a chunk's identity plus its symbol, without the full
// content payload a search result carries.
type ContextElement struct {
	FilePath   string
	Symbol     string
	SymbolType string
	StartLine  int
	EndLine    int
}

// FileContextOutput is the output of GetContextForFile.
type FileContextOutput struct {
	Elements  []ContextElement // every element defined in the file itself
	Importers []string         // files that appear to import this file directly (one hop only), at most radius paths
	Importees []string         // files this file appears to import directly (one hop only), at most radius paths
}

// DirEntry is one node in the tree returned by GetProjectStructure.
type DirEntry struct {
	Path         string
	IsDir        bool
	ElementCount map[string]int // symbol type -> count, files only
}

// ProjectStructureOutput is the output of GetProjectStructure.
type ProjectStructureOutput struct {
	Entries []DirEntry
}

// DependenciesOutput is the output of GetDependencies.
type DependenciesOutput struct {
	Manifests []string // recognised dependency-manifest files (go.mod, package.json, ...)
	Imports   []string // best-effort import/require edges extracted from indexed chunks
}

// CleanInput is the input for the Clean operation.
type CleanInput struct {
	DryRun bool
}

// CleanOutput is the output of the Clean operation: what was (or, for a dry
// run, would be) removed.
type CleanOutput struct {
	DryRun         bool
	FilesRemoved   int
	ChunksRemoved  int
	DataDirRemoved bool
}
