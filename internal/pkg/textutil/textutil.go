// Package textutil provides text processing helpers for the retrieval
// pipeline.
package textutil

import (
	"math"
	"strings"
)

// SplitIntoChunks splits text into overlapping chunks of at most chunkSize
// whitespace-delimited tokens, with overlap tokens shared between consecutive
// chunks. Text that fits in a single chunk is returned whole and unmodified.
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	step := chunkSize - overlap

	for i := 0; i < len(tokens); i += step {
		end := i + chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[i:end], " "))
		if end == len(tokens) {
			break
		}
	}

	return chunks
}

// CosineSimilarity computes the cosine similarity of two vectors.
// The result is in [-1, 1]; mismatched or empty vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// JoinContext concatenates retrieved passages in rank order with a newline
// separator, producing the grounding block for generation.
func JoinContext(passages []string) string {
	return strings.Join(passages, "\n")
}
