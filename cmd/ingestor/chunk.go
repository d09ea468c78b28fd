// In file: cmd/ingestor/chunk.go
package main

import (
	"strings"
)

const (
	chunkSize     = 1000
	chunkOverlap  = 100
	minChunkChars = 100
)

// splitIntoChunks splits a document by top-level headings first, then cuts
// long sections into windows of about chunkSize characters that overlap by
// chunkOverlap. Chunks too short to be useful and credit lines are dropped.
func splitIntoChunks(content string) []string {
	var chunks []string
	for _, section := range splitSections(content) {
		if len([]rune(section)) <= chunkSize {
			chunks = append(chunks, section)
			continue
		}
		chunks = append(chunks, windowSection(section)...)
	}
	return filterChunks(chunks)
}

// splitSections cuts at "# " headings, keeping each heading with its section.
func splitSections(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	parts := strings.Split(content, "\n# ")
	sections := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = "# " + part
		}
		if part = strings.TrimSpace(part); part != "" {
			sections = append(sections, part)
		}
	}
	return sections
}

// windowSection accumulates whole lines up to chunkSize, carrying the last
// chunkOverlap characters into the next window.
func windowSection(section string) []string {
	var chunks []string
	var current []rune
	for _, line := range splitLongLines(strings.Split(section, "\n")) {
		lineRunes := []rune(line + "\n")
		if len(current)+len(lineRunes) > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(string(current)))
			current = append([]rune(nil), tail(current, chunkOverlap)...)
		}
		current = append(current, lineRunes...)
	}
	if text := strings.TrimSpace(string(current)); text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// splitLongLines hard-wraps lines that alone exceed a window.
func splitLongLines(lines []string) []string {
	limit := chunkSize - chunkOverlap - 1
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		r := []rune(line)
		for len(r) > limit {
			out = append(out, string(r[:limit]))
			r = r[limit:]
		}
		out = append(out, string(r))
	}
	return out
}

func tail(r []rune, n int) []rune {
	if len(r) <= n {
		return r
	}
	return r[len(r)-n:]
}

func filterChunks(chunks []string) []string {
	kept := chunks[:0]
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if len([]rune(c)) <= minChunkChars || strings.HasPrefix(c, "Credit:") {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
