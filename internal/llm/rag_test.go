package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeRAG serves an embeddings endpoint and a Pinecone-style index.
func newFakeRAG(t *testing.T, matches string) (*RAGService, *int32) {
	t.Helper()
	var upserts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float32{0.1, 0.2, float32(i)}}
		}
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pc-key", r.Header.Get("Api-Key"))
		var req struct {
			TopK            int  `json:"topK"`
			IncludeMetadata bool `json:"includeMetadata"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.TopK)
		assert.True(t, req.IncludeMetadata)
		w.Write([]byte(matches))
	})
	mux.HandleFunc("/vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upserts, 1)
		w.Write([]byte(`{"upsertedCount":1}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewRAGServiceWithCache(&Config{
		EmbeddingURL:   srv.URL + "/v1/embeddings",
		EmbeddingModel: defaultEmbeddingModel,
		PineconeKey:    "pc-key",
		PineconeHost:   srv.URL,
	}, nil)
	return svc, &upserts
}

func TestRAGSearch(t *testing.T) {
	svc, _ := newFakeRAG(t, `{"matches":[
		{"score":0.91,"metadata":{"text":"PageRank is a link analysis algorithm."}},
		{"score":0.80,"metadata":{"text":"  "}},
		{"score":0.75,"metadata":{"text":"HITS computes hubs and authorities."}}
	]}`)

	chunks, err := svc.Search(context.Background(), "pagerank", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"PageRank is a link analysis algorithm.", "HITS computes hubs and authorities."}, chunks)
	assert.NoError(t, svc.Close())
}

func TestRAGSearchNoMatches(t *testing.T) {
	svc, _ := newFakeRAG(t, `{"matches":[]}`)

	chunks, err := svc.Search(context.Background(), "quantum gravity", 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestGenerateAndUpsertVectors(t *testing.T) {
	svc, upserts := newFakeRAG(t, `{}`)
	ctx := context.Background()

	vectors, err := svc.GenerateVectorsForChunks(ctx, []string{"chunk one", "chunk two"}, "lectures/ranking.md")
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, GenerateCacheKey("lectures/ranking.md::chunk one"), vectors[0].ID)
	assert.Equal(t, "lectures/ranking.md", vectors[1].Metadata["source"])
	assert.Equal(t, []float32{0.1, 0.2, 1}, vectors[1].Values)

	many := make([]Vector, 250)
	for i := range many {
		many[i] = vectors[i%2]
	}
	require.NoError(t, svc.UpsertVectors(ctx, many))
	assert.Equal(t, int32(3), atomic.LoadInt32(upserts), "vectors are upserted in batches of 100")
}

func TestLoadConfigRequiresPinecone(t *testing.T) {
	t.Setenv("PINECONE_API_KEY", "")
	t.Setenv("PINECONE_INDEX_HOST", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PINECONE_API_KEY", "k")
	t.Setenv("PINECONE_INDEX_HOST", "https://idx.example.io/")
	t.Setenv("EMBEDDING_MODEL", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://idx.example.io", cfg.PineconeHost)
	assert.Equal(t, defaultEmbeddingModel, cfg.EmbeddingModel)
}
