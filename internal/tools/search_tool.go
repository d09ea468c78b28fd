// In file: internal/tools/search_tool.go
package tools

import (
	"context"
	"fmt"
	"strings"
)

// --- Course Material Search Tool Implementation ---

const defaultSearchTopK = 5

// DocumentIndex is a similarity index over course material. Search returns
// up to k raw text chunks, most relevant first.
type DocumentIndex interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// SearchTool answers search_course_materials from a DocumentIndex.
type SearchTool struct {
	index DocumentIndex
	topK  int
}

// Statically verify that SearchTool implements the CourseSearcher interface.
var _ CourseSearcher = (*SearchTool)(nil)

// NewSearchTool wraps an index; topK <= 0 means 5.
func NewSearchTool(index DocumentIndex, topK int) *SearchTool {
	if topK <= 0 {
		topK = defaultSearchTopK
	}
	return &SearchTool{index: index, topK: topK}
}

func searchDefinition() Tool {
	return NewFunctionTool(
		NameSearchCourseMaterials,
		"Search the Information Retrieval course materials (lecture notes, papers, documentation). "+
			"Use it for IR concepts, course content, algorithms or theory.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"query": {
					Type:        "string",
					Description: "The concept or question to look up, e.g., 'PageRank'.",
				},
			},
			Required: []string{"query"},
		},
	)
}

// Search retrieves chunks and formats them as numbered evidence blocks.
func (st *SearchTool) Search(ctx context.Context, args SearchArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	chunks, err := st.index.Search(ctx, args.Query, st.topK)
	if err != nil {
		return "", serviceErrorf("Error searching course materials: %v", err)
	}
	if len(chunks) == 0 {
		return "No relevant information found in course materials.", nil
	}
	return FormatChunks(chunks), nil
}

// FormatChunks renders retrieved chunks the way the search tool returns them.
func FormatChunks(chunks []string) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("📄 Chunk %d:\n%s", i+1, strings.TrimSpace(c))
	}
	return strings.Repeat("=", 50) + "\n\n" + strings.Join(blocks, "\n\n")
}
