package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsonar/internal/embeddings/providers"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"empty", nil, nil, 0},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestHashingProviderDeterministic(t *testing.T) {
	provider := providers.NewHashingProvider(64)
	ctx := context.Background()

	a, err := provider.Embed(ctx, "senior golang developer with kubernetes")
	require.NoError(t, err)
	b, err := provider.Embed(ctx, "senior golang developer with kubernetes")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashingProviderVectorsAreNormalized(t *testing.T) {
	provider := providers.NewHashingProvider(128)
	vec, err := provider.Embed(context.Background(), "backend engineer postgres redis docker")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestHashingProviderSimilarTextsScoreHigher(t *testing.T) {
	provider := providers.NewHashingProvider(384)
	ctx := context.Background()

	profile, err := provider.Embed(ctx, "golang developer kubernetes docker postgres microservices")
	require.NoError(t, err)
	related, err := provider.Embed(ctx, "we need a golang developer experienced with kubernetes and postgres")
	require.NoError(t, err)
	unrelated, err := provider.Embed(ctx, "cat pictures and cooking recipes for the weekend")
	require.NoError(t, err)

	assert.Greater(t, CosineSimilarity(profile, related), CosineSimilarity(profile, unrelated))
}

func TestHashingProviderEmptyText(t *testing.T) {
	provider := providers.NewHashingProvider(32)
	vec, err := provider.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, 32)
	assert.Equal(t, 0.0, CosineSimilarity(vec, vec))
}

func TestFactorySupportedProviders(t *testing.T) {
	supported := NewFactory(nil).GetSupportedProviders()
	assert.Contains(t, supported, "hashing")
	assert.Contains(t, supported, "openai")
}
