package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu       sync.Mutex
	sources  map[string]int
	upserted int
	failOn   string
}

func (f *fakeSink) GenerateVectorsForChunks(_ context.Context, chunks []string, source string) ([]llm.Vector, error) {
	if source == f.failOn {
		return nil, errors.New("embedding API request failed: status 500")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[source] += len(chunks)
	vectors := make([]llm.Vector, len(chunks))
	for i, c := range chunks {
		vectors[i] = llm.Vector{ID: llm.GenerateCacheKey(source + "::" + c), Values: []float32{1}}
	}
	return vectors, nil
}

func (f *fakeSink) UpsertVectors(_ context.Context, vectors []llm.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted += len(vectors)
	return nil
}

func writeMaterials(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"ranking.md":        "# PageRank\n" + paragraph("pr", 3) + "\n# HITS\n" + paragraph("hits", 3),
		"notes.txt":         paragraph("notes", 2),
		"diagram.png":       "not text",
		"week2/indexing.md": "# Inverted index\n" + paragraph("idx", 30),
		"empty.md":          "tiny",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestIngestorRun(t *testing.T) {
	dir := writeMaterials(t)
	sink := &fakeSink{sources: map[string]int{}}

	count, err := NewIngestor(&Config{SourceDataDir: dir, Concurrency: 2}, sink).Run(context.Background())
	require.NoError(t, err)

	var sources []string
	for s := range sink.sources {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	assert.Equal(t, []string{"notes.txt", "ranking.md", "week2/indexing.md"}, sources)
	assert.Equal(t, 2, sink.sources["ranking.md"])
	assert.Equal(t, count, sink.upserted)

	want := 0
	for _, name := range []string{"ranking.md", "notes.txt", "week2/indexing.md"} {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		require.NoError(t, err)
		want += len(splitIntoChunks(string(data)))
	}
	assert.Equal(t, want, count)
}

func TestIngestorRunFailsOnSinkError(t *testing.T) {
	dir := writeMaterials(t)
	sink := &fakeSink{sources: map[string]int{}, failOn: "notes.txt"}

	_, err := NewIngestor(&Config{SourceDataDir: dir, Concurrency: 1}, sink).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestIngestorRunEmptyDir(t *testing.T) {
	count, err := NewIngestor(&Config{SourceDataDir: t.TempDir(), Concurrency: 1}, &fakeSink{sources: map[string]int{}}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
