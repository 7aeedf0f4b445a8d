package embeddings

import (
	"fmt"

	"jobsonar/internal/config"
	"jobsonar/internal/embeddings/providers"
)

// Factory creates embedding provider instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new embeddings factory instance
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: cfg,
	}
}

// CreateProvider creates an embedding provider based on the configuration
func (f *Factory) CreateProvider() (Provider, error) {
	switch f.config.Embeddings.Provider {
	case "hashing", "":
		return providers.NewHashingProvider(f.config.Embeddings.Dimensions), nil
	case "openai":
		return providers.NewOpenAIProvider(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", f.config.Embeddings.Provider)
	}
}

// GetSupportedProviders returns a list of supported embedding providers
func (f *Factory) GetSupportedProviders() []string {
	return []string{"hashing", "openai"}
}
