package providers

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const defaultDimensions = 384

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#.\-]*`)

// HashingProvider produces embeddings by feature hashing word unigrams
// and bigrams into a fixed number of buckets. It needs no model files or
// network access and is fully deterministic, which makes it the default
// and the provider used in tests. Vectors are L2-normalized.
type HashingProvider struct {
	dimensions int
}

// NewHashingProvider creates a hashing provider. dimensions <= 0 falls
// back to the default.
func NewHashingProvider(dimensions int) *HashingProvider {
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &HashingProvider{dimensions: dimensions}
}

// Embed computes the embedding vector for a text
func (p *HashingProvider) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, p.dimensions)

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	for i, token := range tokens {
		p.accumulate(vector, token)
		if i+1 < len(tokens) {
			p.accumulate(vector, token+" "+tokens[i+1])
		}
	}

	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}

	return vector, nil
}

// accumulate adds a signed unit weight for a feature. One hash drives
// both the bucket and the sign so collisions partially cancel.
func (p *HashingProvider) accumulate(vector []float64, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(p.dimensions))
	if sum&(1<<63) != 0 {
		vector[bucket] -= 1
	} else {
		vector[bucket] += 1
	}
}

// IsHealthy checks if the provider is available
func (p *HashingProvider) IsHealthy(_ context.Context) error {
	return nil
}

// GetProviderName returns the name of the provider
func (p *HashingProvider) GetProviderName() string {
	return "hashing"
}
