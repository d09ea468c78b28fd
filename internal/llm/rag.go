// In file: internal/llm/rag.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dileep-u-k/course-assistant/internal/version"

	"github.com/redis/go-redis/v9"
)

// =================================================================================
// Configuration
// =================================================================================

const (
	// Defaults target a local Ollama server.
	defaultEmbeddingModel  = "nomic-embed-text"
	defaultEmbeddingAPIURL = "http://localhost:11434/v1/embeddings"

	pineconeQueryPath  = "/query"
	pineconeUpsertPath = "/vectors/upsert"
	upsertBatchSize    = 100

	embeddingCachePrefix = "embeddingcache:"
	searchCachePrefix    = "searchcache"
	embeddingCacheTTL    = 7 * 24 * time.Hour
	searchCacheTTL       = 24 * time.Hour
)

// Config holds all the configuration for the RAG service.
type Config struct {
	EmbeddingKey   string
	EmbeddingURL   string
	EmbeddingModel string
	PineconeKey    string
	PineconeHost   string
	// RedisAddr is optional; empty disables caching.
	RedisAddr string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		EmbeddingKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingURL:   getEnv("EMBEDDING_API_URL", defaultEmbeddingAPIURL),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", defaultEmbeddingModel),
		PineconeKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeHost:   strings.TrimRight(os.Getenv("PINECONE_INDEX_HOST"), "/"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
	}
	if cfg.PineconeKey == "" || cfg.PineconeHost == "" {
		return nil, errors.New("PINECONE_API_KEY and PINECONE_INDEX_HOST must be set")
	}
	return cfg, nil
}

// getEnv is a helper to read an env var or return a default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// =================================================================================
// RAG Service
// =================================================================================

// RAGService embeds queries and retrieves course-material chunks from the
// Pinecone index. With a Redis client it caches embeddings and search results.
type RAGService struct {
	config      *Config
	httpClient  *http.Client
	redisClient *redis.Client
}

// NewRAGService connects the optional Redis cache and returns the service.
// An unreachable Redis is logged and the service runs uncached.
func NewRAGService(ctx context.Context, cfg *Config) (*RAGService, error) {
	if cfg == nil {
		return nil, errors.New("rag config cannot be nil")
	}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("⚠️ Could not connect to Redis at %s, caching disabled: %v", cfg.RedisAddr, err)
			rdb.Close()
			rdb = nil
		} else {
			log.Printf("✅ Redis cache connected at %s.", cfg.RedisAddr)
		}
	}
	return NewRAGServiceWithCache(cfg, rdb), nil
}

// NewRAGServiceWithCache builds the service around an existing Redis client.
// A nil client disables caching.
func NewRAGServiceWithCache(cfg *Config, rdb *redis.Client) *RAGService {
	return &RAGService{
		config:      cfg,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		redisClient: rdb,
	}
}

// Close releases the Redis connection, if any.
func (s *RAGService) Close() error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Close()
}

// Search returns up to k chunks most similar to query, in index order.
func (s *RAGService) Search(ctx context.Context, query string, k int) ([]string, error) {
	cacheKey := version.GenerateVersionedCacheKey(searchCachePrefix, fmt.Sprintf("%d|%s", k, query))
	if chunks, ok := s.cachedChunks(ctx, cacheKey); ok {
		return chunks, nil
	}

	embedding, err := s.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding for search: %w", err)
	}
	chunks, err := s.QueryPinecone(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query pinecone: %w", err)
	}

	s.cacheChunks(ctx, cacheKey, chunks)
	return chunks, nil
}

// GetEmbedding retrieves a vector embedding for text, consulting the cache first.
func (s *RAGService) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	cacheKey := embeddingCachePrefix + GenerateCacheKey(s.config.EmbeddingModel+"::"+text)
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var embedding []float32
			if err := json.Unmarshal(cached, &embedding); err == nil {
				return embedding, nil
			}
			log.Printf("Error unmarshalling cached embedding: %v", err)
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("Redis GET error for embedding: %v", err)
		}
	}

	embeddings, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	embedding := embeddings[0]

	if s.redisClient != nil {
		if data, err := json.Marshal(embedding); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, data, embeddingCacheTTL).Err(); err != nil {
				log.Printf("Failed to set embedding cache in Redis: %v", err)
			}
		}
	}
	return embedding, nil
}

// QueryPinecone returns the metadata text of the topK nearest vectors.
// No matches is an empty result, not an error.
func (s *RAGService) QueryPinecone(ctx context.Context, embedding []float32, topK int) ([]string, error) {
	type apiRequest struct {
		Vector          []float32 `json:"vector"`
		TopK            int       `json:"topK"`
		IncludeMetadata bool      `json:"includeMetadata"`
	}
	type apiResponse struct {
		Matches []struct {
			Score    float64 `json:"score"`
			Metadata struct {
				Text string `json:"text"`
			} `json:"metadata"`
		} `json:"matches"`
	}

	payload, err := json.Marshal(apiRequest{Vector: embedding, TopK: topK, IncludeMetadata: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Pinecone request: %w", err)
	}
	body, err := s.doRequestWithRetry(ctx, s.config.PineconeHost+pineconeQueryPath, payload, s.pineconeHeaders())
	if err != nil {
		return nil, fmt.Errorf("pinecone query API request failed: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Pinecone response: %w", err)
	}
	chunks := make([]string, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if text := strings.TrimSpace(m.Metadata.Text); text != "" {
			chunks = append(chunks, text)
		}
	}
	return chunks, nil
}

// GenerateVectorsForChunks embeds a batch of chunks from one source file.
func (s *RAGService) GenerateVectorsForChunks(ctx context.Context, chunks []string, source string) ([]Vector, error) {
	embeddings, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}
	vectors := make([]Vector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = Vector{
			ID:     GenerateCacheKey(source + "::" + chunk),
			Values: embeddings[i],
			Metadata: map[string]interface{}{
				"text":   chunk,
				"source": source,
			},
		}
	}
	return vectors, nil
}

// UpsertVectors writes vectors to Pinecone in batches.
func (s *RAGService) UpsertVectors(ctx context.Context, vectors []Vector) error {
	type apiRequest struct {
		Vectors []Vector `json:"vectors"`
	}
	for start := 0; start < len(vectors); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(vectors))
		payload, err := json.Marshal(apiRequest{Vectors: vectors[start:end]})
		if err != nil {
			return fmt.Errorf("failed to marshal Pinecone upsert: %w", err)
		}
		if _, err := s.doRequestWithRetry(ctx, s.config.PineconeHost+pineconeUpsertPath, payload, s.pineconeHeaders()); err != nil {
			return fmt.Errorf("pinecone upsert of vectors %d-%d failed: %w", start, end, err)
		}
	}
	return nil
}

// embed calls the OpenAI-compatible embeddings endpoint for a batch of inputs.
func (s *RAGService) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	type apiRequest struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	type apiResponse struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	payload, err := json.Marshal(apiRequest{Input: inputs, Model: s.config.EmbeddingModel})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}
	headers := map[string]string{}
	if s.config.EmbeddingKey != "" {
		headers["Authorization"] = "Bearer " + s.config.EmbeddingKey
	}
	body, err := s.doRequestWithRetry(ctx, s.config.EmbeddingURL, payload, headers)
	if err != nil {
		return nil, fmt.Errorf("embedding API request failed: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding response: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("mismatch between inputs (%d) and embeddings (%d)", len(inputs), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// =================================================================================
// Search-result cache
// =================================================================================

func (s *RAGService) cachedChunks(ctx context.Context, key string) ([]string, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	val, err := s.redisClient.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("Redis GET error for search cache: %v", err)
		return nil, false
	}
	var chunks []string
	if err := json.Unmarshal(val, &chunks); err != nil {
		return nil, false
	}
	return chunks, true
}

func (s *RAGService) cacheChunks(ctx context.Context, key string, chunks []string) {
	if s.redisClient == nil || len(chunks) == 0 {
		return
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, key, data, searchCacheTTL).Err(); err != nil {
		log.Printf("Redis SET error for search cache: %v", err)
	}
}

// =================================================================================
// Utility and Helper Functions
// =================================================================================

func (s *RAGService) pineconeHeaders() map[string]string {
	return map[string]string{"Api-Key": s.config.PineconeKey}
}

// doRequestWithRetry POSTs payload with exponential backoff. Client errors
// (4xx) are not retried.
func (s *RAGService) doRequestWithRetry(ctx context.Context, url string, payload []byte, headers map[string]string) ([]byte, error) {
	var lastErr error
	delay := initialRetryDelay
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", i+1, maxRetries, err)
			log.Println(lastErr)
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}
		lastErr = fmt.Errorf("API error (attempt %d/%d): status %d, body: %s", i+1, maxRetries, resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
