package embeddings

import (
	"context"
	"math"
)

// Provider turns text into a dense vector. Vectors from the same
// provider are comparable with cosine similarity; vectors from different
// providers are not.
type Provider interface {
	// Embed computes the embedding vector for a text
	Embed(ctx context.Context, text string) ([]float64, error)

	// IsHealthy checks if the provider is available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either vector is empty or zero-length
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
