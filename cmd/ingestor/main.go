// In file: cmd/ingestor/main.go

// Package main implements the offline ingestion tool for the course
// assistant. It walks a directory of course materials, splits each file into
// chunks, embeds them and upserts the vectors into the Pinecone index the
// search tool queries.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dileep-u-k/course-assistant/internal/llm"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// =================================================================================
// Configuration
// =================================================================================

const (
	defaultSourceDataDir = "data/course_materials"
	defaultConcurrency   = 4
	embeddingBatchSize   = 64
)

// Config holds the ingestor's own settings; the embedding and index
// settings come from llm.LoadConfig.
type Config struct {
	SourceDataDir string
	Concurrency   int
}

func loadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found. Relying on environment variables.")
	}
	cfg := &Config{
		SourceDataDir: getEnv("SOURCE_DATA_DIR", defaultSourceDataDir),
		Concurrency:   defaultConcurrency,
	}
	if n, err := strconv.Atoi(os.Getenv("INGEST_CONCURRENCY")); err == nil && n > 0 {
		cfg.Concurrency = n
	}
	return cfg
}

// getEnv is a helper to read an env var or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// =================================================================================
// Ingestor Service
// =================================================================================

// vectorSink is the part of the RAG service the ingestor writes through.
type vectorSink interface {
	GenerateVectorsForChunks(ctx context.Context, chunks []string, source string) ([]llm.Vector, error)
	UpsertVectors(ctx context.Context, vectors []llm.Vector) error
}

// Ingestor embeds and upserts every supported file under one directory.
type Ingestor struct {
	config *Config
	sink   vectorSink
}

func NewIngestor(cfg *Config, sink vectorSink) *Ingestor {
	return &Ingestor{config: cfg, sink: sink}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cfg := loadConfig()

	ragConfig, err := llm.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load RAG Service config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ragService, err := llm.NewRAGService(ctx, ragConfig)
	if err != nil {
		log.Fatalf("❌ Failed to create RAG Service: %v", err)
	}
	defer ragService.Close()

	count, err := NewIngestor(cfg, ragService).Run(ctx)
	if err != nil {
		log.Fatalf("❌ Ingestion process failed: %v", err)
	}
	log.Printf("✅ Data ingestion complete: %d chunks indexed.", count)
}

// Run processes every file with bounded concurrency and returns the number
// of chunks indexed. The first failure cancels the remaining files.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	log.Printf("🚀 Starting course-material ingestion from %s...", i.config.SourceDataDir)
	files, err := i.discoverFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to discover course materials: %w", err)
	}
	if len(files) == 0 {
		log.Printf("No .md or .txt files found in %s.", i.config.SourceDataDir)
		return 0, nil
	}

	counts := make([]int, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.config.Concurrency)
	for idx, path := range files {
		g.Go(func() error {
			n, err := i.ingestFile(gctx, path)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			counts[idx] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// discoverFiles lists the supported files under the source directory, sorted.
func (i *Ingestor) discoverFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(i.config.SourceDataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (i *Ingestor) ingestFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	chunks := splitIntoChunks(string(content))
	if len(chunks) == 0 {
		log.Printf("⚠️  No usable chunks in %s, skipping.", path)
		return 0, nil
	}

	source := filepath.ToSlash(path)
	if rel, err := filepath.Rel(i.config.SourceDataDir, path); err == nil {
		source = filepath.ToSlash(rel)
	}
	log.Printf("📚 %s: %d chunks", source, len(chunks))

	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(chunks))
		vectors, err := i.sink.GenerateVectorsForChunks(ctx, chunks[start:end], source)
		if err != nil {
			return 0, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if err := i.sink.UpsertVectors(ctx, vectors); err != nil {
			return 0, fmt.Errorf("failed to upsert vectors: %w", err)
		}
	}
	return len(chunks), nil
}
