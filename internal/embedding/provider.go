package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks golfrules-ai/internal/embedding Provider

import "context"

// Provider maps text to fixed-length float vectors. Document-mode and
// query-mode embedding are distinct operations because some providers
// produce different vectors for the two roles.
//
// A provider's dimensionality is fixed for its lifetime; swapping providers
// without a full re-ingestion is unsupported, and every implementation
// validates returned vector sizes against Dimensions.
type Provider interface {
	// EmbedDocuments embeds a batch of document chunks, one vector per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the fixed length of every vector this provider returns.
	Dimensions() int

	// Name identifies the provider for usage accounting and for tests that
	// must assert which provider was actually used.
	Name() string
}
