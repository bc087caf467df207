package query

import (
	"context"
	"testing"

	"github.com/RealFaceCode/ContextBrain/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunk(id, path string) *store.Chunk {
	return &store.Chunk{
		ID:          id,
		FileID:      "file-" + path,
		FilePath:    path,
		Content:     "func Example() { return }",
		ContentType: store.ContentTypeCode,
		Language:    "go",
		StartLine:   1,
		EndLine:     3,
	}
}

func TestNewEngine_NilDependency_ReturnsError(t *testing.T) {
	bm25 := &MockBM25Index{}
	vec := &MockVectorStore{}
	embedder := &MockEmbedder{}
	metadata := NewMockMetadataStore()

	_, err := NewEngine(nil, vec, embedder, metadata, DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = NewEngine(bm25, nil, embedder, metadata, DefaultConfig())
	require.Error(t, err)

	_, err = NewEngine(bm25, vec, nil, metadata, DefaultConfig())
	require.Error(t, err)

	_, err = NewEngine(bm25, vec, embedder, nil, DefaultConfig())
	require.Error(t, err)
}

func TestEngine_Search_FusesBM25AndVectorResults(t *testing.T) {
	metadata := NewMockMetadataStore()
	require.NoError(t, metadata.SaveChunks(context.Background(), []*store.Chunk{
		newTestChunk("a", "internal/foo.go"),
		newTestChunk("b", "internal/bar.go"),
	}))

	bm25 := &MockBM25Index{
		SearchFn: func(_ context.Context, _ string, _ int) ([]*store.BM25Result, error) {
			return []*store.BM25Result{{DocID: "a", Score: 2.0, MatchedTerms: []string{"example"}}}, nil
		},
		StatsFn: func() *store.IndexStats { return &store.IndexStats{DocumentCount: 2} },
	}
	vec := &MockVectorStore{
		SearchFn: func(_ context.Context, _ []float32, _ int) ([]*store.VectorResult, error) {
			return []*store.VectorResult{{ID: "b", Score: 0.9}}, nil
		},
		CountFn: func() int { return 2 },
	}
	embedder := &MockEmbedder{}

	engine, err := NewEngine(bm25, vec, embedder, metadata, DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.Search(context.Background(), "example", SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)

	ids := []string{results[0].Chunk.ID, results[1].Chunk.ID}
	assert.Contains(t, ids, "a")
	assert.Contains(t, ids, "b")
}

func TestEngine_Search_EmptyQuery_ReturnsNil(t *testing.T) {
	engine, err := NewEngine(&MockBM25Index{}, &MockVectorStore{}, &MockEmbedder{}, NewMockMetadataStore(), DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.Search(context.Background(), "   ", SearchOptions{})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestEngine_Search_BM25Only_SkipsVectorSearch(t *testing.T) {
	metadata := NewMockMetadataStore()
	require.NoError(t, metadata.SaveChunks(context.Background(), []*store.Chunk{newTestChunk("a", "internal/foo.go")}))

	vectorCalled := false
	bm25 := &MockBM25Index{
		SearchFn: func(_ context.Context, _ string, _ int) ([]*store.BM25Result, error) {
			return []*store.BM25Result{{DocID: "a", Score: 1.0}}, nil
		},
	}
	vec := &MockVectorStore{
		SearchFn: func(_ context.Context, _ []float32, _ int) ([]*store.VectorResult, error) {
			vectorCalled = true
			return nil, nil
		},
	}

	engine, err := NewEngine(bm25, vec, &MockEmbedder{}, metadata, DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.Search(context.Background(), "example", SearchOptions{BM25Only: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, vectorCalled, "vector search should be skipped in BM25-only mode")
}

func TestEngine_Search_DimensionMismatch_FallsBackToBM25(t *testing.T) {
	metadata := NewMockMetadataStore()
	require.NoError(t, metadata.SaveChunks(context.Background(), []*store.Chunk{newTestChunk("a", "internal/foo.go")}))
	require.NoError(t, metadata.SetState(context.Background(), store.StateKeyIndexDimension, "384"))
	require.NoError(t, metadata.SetState(context.Background(), store.StateKeyIndexModel, "old-model"))

	vectorCalled := false
	bm25 := &MockBM25Index{
		SearchFn: func(_ context.Context, _ string, _ int) ([]*store.BM25Result, error) {
			return []*store.BM25Result{{DocID: "a", Score: 1.0}}, nil
		},
	}
	vec := &MockVectorStore{
		SearchFn: func(_ context.Context, _ []float32, _ int) ([]*store.VectorResult, error) {
			vectorCalled = true
			return nil, nil
		},
	}
	embedder := &MockEmbedder{DimensionsFn: func() int { return 768 }, ModelNameFn: func() string { return "new-model" }}

	engine, err := NewEngine(bm25, vec, embedder, metadata, DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.Search(context.Background(), "example", SearchOptions{Explain: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, vectorCalled, "vector search should be skipped on dimension mismatch")
	require.NotNil(t, results[0].Explain)
}

func TestEngine_Index_StoresChunksAndEmbeddingInfo(t *testing.T) {
	metadata := NewMockMetadataStore()
	bm25 := &MockBM25Index{}
	vec := &MockVectorStore{}
	embedder := &MockEmbedder{DimensionsFn: func() int { return 256 }, ModelNameFn: func() string { return "static" }}

	engine, err := NewEngine(bm25, vec, embedder, metadata, DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	chunks := []*store.Chunk{newTestChunk("a", "internal/foo.go")}
	require.NoError(t, engine.Index(context.Background(), chunks))

	stored, err := metadata.GetChunk(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, stored)

	dim, err := metadata.GetState(context.Background(), store.StateKeyIndexDimension)
	require.NoError(t, err)
	assert.Equal(t, "256", dim)
}

func TestEngine_Delete_RemovesFromMetadata(t *testing.T) {
	metadata := NewMockMetadataStore()
	require.NoError(t, metadata.SaveChunks(context.Background(), []*store.Chunk{newTestChunk("a", "internal/foo.go")}))

	engine, err := NewEngine(&MockBM25Index{}, &MockVectorStore{}, &MockEmbedder{}, metadata, DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	require.NoError(t, engine.Delete(context.Background(), []string{"a"}))

	stored, err := metadata.GetChunk(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestEngine_Stats_ReturnsCombinedCounts(t *testing.T) {
	bm25 := &MockBM25Index{StatsFn: func() *store.IndexStats { return &store.IndexStats{DocumentCount: 5} }}
	vec := &MockVectorStore{CountFn: func() int { return 5 }}

	engine, err := NewEngine(bm25, vec, &MockEmbedder{}, NewMockMetadataStore(), DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	stats := engine.Stats()
	assert.Equal(t, 5, stats.BM25Stats.DocumentCount)
	assert.Equal(t, 5, stats.VectorCount)
}
