package query

import (
	"context"
	"sync"
	"time"

	"github.com/RealFaceCode/ContextBrain/internal/store"
)

// MockBM25Index is a configurable test double for store.BM25Index.
type MockBM25Index struct {
	SearchFn func(ctx context.Context, query string, limit int) ([]*store.BM25Result, error)
	StatsFn  func() *store.IndexStats
}

func (m *MockBM25Index) Index(_ context.Context, _ []*store.Document) error { return nil }

func (m *MockBM25Index) Search(ctx context.Context, query string, limit int) ([]*store.BM25Result, error) {
	if m.SearchFn == nil {
		return nil, nil
	}
	return m.SearchFn(ctx, query, limit)
}

func (m *MockBM25Index) Delete(_ context.Context, _ []string) error { return nil }
func (m *MockBM25Index) AllIDs() ([]string, error)                 { return nil, nil }

func (m *MockBM25Index) Stats() *store.IndexStats {
	if m.StatsFn == nil {
		return &store.IndexStats{}
	}
	return m.StatsFn()
}

func (m *MockBM25Index) Save(_ string) error { return nil }
func (m *MockBM25Index) Load(_ string) error { return nil }
func (m *MockBM25Index) Close() error        { return nil }

// MockVectorStore is a configurable test double for store.VectorStore.
type MockVectorStore struct {
	SearchFn func(ctx context.Context, query []float32, k int) ([]*store.VectorResult, error)
	CountFn  func() int
}

func (m *MockVectorStore) Add(_ context.Context, _ []string, _ [][]float32) error { return nil }

func (m *MockVectorStore) Search(ctx context.Context, query []float32, k int) ([]*store.VectorResult, error) {
	if m.SearchFn == nil {
		return nil, nil
	}
	return m.SearchFn(ctx, query, k)
}

func (m *MockVectorStore) Delete(_ context.Context, _ []string) error { return nil }
func (m *MockVectorStore) AllIDs() []string                          { return nil }
func (m *MockVectorStore) Contains(_ string) bool                    { return false }

func (m *MockVectorStore) Count() int {
	if m.CountFn == nil {
		return 0
	}
	return m.CountFn()
}

func (m *MockVectorStore) Save(_ string) error { return nil }
func (m *MockVectorStore) Load(_ string) error { return nil }
func (m *MockVectorStore) Close() error        { return nil }

// MockEmbedder is a configurable test double for embed.Embedder.
type MockEmbedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
	DimensionsFn func() int
	ModelNameFn  func() string
	AvailableFn  func(ctx context.Context) bool
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFn == nil {
		return make([]float32, m.Dimensions()), nil
	}
	return m.EmbedFn(ctx, text)
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedBatchFn != nil {
		return m.EmbedBatchFn(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() int {
	if m.DimensionsFn == nil {
		return 768
	}
	return m.DimensionsFn()
}

func (m *MockEmbedder) ModelName() string {
	if m.ModelNameFn == nil {
		return "mock-embedder"
	}
	return m.ModelNameFn()
}

func (m *MockEmbedder) Available(ctx context.Context) bool {
	if m.AvailableFn == nil {
		return true
	}
	return m.AvailableFn(ctx)
}

func (m *MockEmbedder) Close() error { return nil }

// MockMetadataStore is an in-memory test double for store.MetadataStore,
// backing just the operations the search engine exercises directly.
type MockMetadataStore struct {
	mu            sync.Mutex
	chunks        map[string]*store.Chunk
	chunksByFile  map[string][]string
	state         map[string]string
	SaveChunksErr error
}

// NewMockMetadataStore creates an empty in-memory metadata store double.
func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{
		chunks:       make(map[string]*store.Chunk),
		chunksByFile: make(map[string][]string),
		state:        make(map[string]string),
	}
}

func (m *MockMetadataStore) SaveProject(_ context.Context, _ *store.Project) error { return nil }
func (m *MockMetadataStore) GetProject(_ context.Context, _ string) (*store.Project, error) {
	return nil, nil
}
func (m *MockMetadataStore) UpdateProjectStats(_ context.Context, _ string, _, _ int) error {
	return nil
}
func (m *MockMetadataStore) RefreshProjectStats(_ context.Context, _ string) error { return nil }

func (m *MockMetadataStore) SaveFiles(_ context.Context, _ []*store.File) error { return nil }
func (m *MockMetadataStore) GetFileByPath(_ context.Context, _, _ string) (*store.File, error) {
	return nil, nil
}
func (m *MockMetadataStore) GetChangedFiles(_ context.Context, _ string, _ time.Time) ([]*store.File, error) {
	return nil, nil
}
func (m *MockMetadataStore) ListFiles(_ context.Context, _, _ string, _ int) ([]*store.File, string, error) {
	return nil, "", nil
}
func (m *MockMetadataStore) GetFilePathsByProject(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}
func (m *MockMetadataStore) GetFilesForReconciliation(_ context.Context, _ string) (map[string]*store.File, error) {
	return nil, nil
}
func (m *MockMetadataStore) ListFilePathsUnder(_ context.Context, _, _ string) ([]string, error) {
	return nil, nil
}
func (m *MockMetadataStore) DeleteFile(_ context.Context, _ string) error           { return nil }
func (m *MockMetadataStore) DeleteFilesByProject(_ context.Context, _ string) error { return nil }

func (m *MockMetadataStore) SaveChunks(_ context.Context, chunks []*store.Chunk) error {
	if m.SaveChunksErr != nil {
		return m.SaveChunksErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
		if c.FileID != "" {
			m.chunksByFile[c.FileID] = append(m.chunksByFile[c.FileID], c.ID)
		}
	}
	return nil
}

func (m *MockMetadataStore) GetChunk(_ context.Context, id string) (*store.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chunks[id], nil
}

func (m *MockMetadataStore) GetChunks(_ context.Context, ids []string) ([]*store.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockMetadataStore) GetChunksByFile(_ context.Context, fileID string) ([]*store.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.chunksByFile[fileID]
	out := make([]*store.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockMetadataStore) DeleteChunks(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.chunks, id)
	}
	return nil
}

func (m *MockMetadataStore) DeleteChunksByFile(_ context.Context, _ string) error { return nil }

func (m *MockMetadataStore) UpsertElements(_ context.Context, _ string, _ []*store.Element) error {
	return nil
}
func (m *MockMetadataStore) DeleteElementsByFile(_ context.Context, _ string) error { return nil }
func (m *MockMetadataStore) GetElementsByFile(_ context.Context, _ string) ([]*store.Element, error) {
	return nil, nil
}
func (m *MockMetadataStore) GetElement(_ context.Context, _ string) (*store.Element, error) {
	return nil, nil
}
func (m *MockMetadataStore) GetChildren(_ context.Context, _ string) ([]*store.Element, error) {
	return nil, nil
}
func (m *MockMetadataStore) SearchStructural(_ context.Context, _, _, _, _ string, _ int) ([]*store.Element, error) {
	return nil, nil
}
func (m *MockMetadataStore) ElementStats(_ context.Context, _ string) (*store.ElementStats, error) {
	return &store.ElementStats{ByType: map[string]int{}, ByLanguage: map[string]int{}}, nil
}

func (m *MockMetadataStore) GetState(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state[key], nil
}

func (m *MockMetadataStore) SetState(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = value
	return nil
}

func (m *MockMetadataStore) SaveChunkEmbeddings(_ context.Context, _ []string, _ [][]float32, _ string) error {
	return nil
}
func (m *MockMetadataStore) GetAllEmbeddings(_ context.Context) (map[string][]float32, error) {
	return nil, nil
}
func (m *MockMetadataStore) GetEmbeddingStats(_ context.Context) (int, int, error) {
	return 0, 0, nil
}

func (m *MockMetadataStore) SaveIndexCheckpoint(_ context.Context, _ string, _, _ int, _ string) error {
	return nil
}
func (m *MockMetadataStore) LoadIndexCheckpoint(_ context.Context) (*store.IndexCheckpoint, error) {
	return nil, nil
}
func (m *MockMetadataStore) ClearIndexCheckpoint(_ context.Context) error { return nil }

func (m *MockMetadataStore) Close() error { return nil }
