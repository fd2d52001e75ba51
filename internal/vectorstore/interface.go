package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks golfrules-ai/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult is a single nearest-neighbour hit. Score is cosine
// similarity (1 - cosine distance), so higher is closer.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore is the narrow seam the retrieval engine stores vectors
// behind. Implementations must use cosine similarity and must not require
// callers to pre-normalize vectors.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k stored points nearest to query by cosine
	// similarity. Fewer than k results are returned when the collection is
	// smaller; an empty collection yields an empty slice, not an error.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Clear atomically drops every point in the collection.
	Clear(ctx context.Context, collection string) error

	// Count returns the number of stored points.
	Count(ctx context.Context, collection string) (int, error)
}
