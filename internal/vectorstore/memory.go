package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore. It exists for tests and for
// single-binary deployments where running Qdrant is not worth it; the
// corpus of rule documents is small enough for a brute-force scan.
type MemoryStore struct {
	vectorSize int

	mu     sync.RWMutex
	points map[string][]Point // collection -> points in insertion order
}

// NewMemoryStore creates a memory store that accepts vectors of exactly
// vectorSize dimensions. A mismatched vector is a configuration error.
func NewMemoryStore(vectorSize int) *MemoryStore {
	return &MemoryStore{
		vectorSize: vectorSize,
		points:     make(map[string][]Point),
	}
}

// Upsert inserts or replaces points by ID.
func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	for _, p := range points {
		if len(p.Vec) != s.vectorSize {
			return fmt.Errorf("point %s has vector size %d, expected %d", p.ID, len(p.Vec), s.vectorSize)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.points[collection]
	index := make(map[string]int, len(existing))
	for i, p := range existing {
		index[p.ID] = i
	}
	for _, p := range points {
		if i, ok := index[p.ID]; ok {
			existing[i] = p
		} else {
			index[p.ID] = len(existing)
			existing = append(existing, p)
		}
	}
	s.points[collection] = existing
	return nil
}

// Search scans the whole collection and returns the k nearest points by
// cosine similarity, highest first.
func (s *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(query) != s.vectorSize {
		return nil, fmt.Errorf("query vector size %d, expected %d", len(query), s.vectorSize)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.points[collection]
	results := make([]SearchResult, 0, len(stored))
	for _, p := range stored {
		results = append(results, SearchResult{
			PointID: p.ID,
			Score:   float32(cosineSimilarity(query, p.Vec)),
			Meta:    p.Meta,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Clear drops all points in the collection.
func (s *MemoryStore) Clear(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.points, collection)
	return nil
}

// Count returns the number of stored points in the collection.
func (s *MemoryStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points[collection]), nil
}

// cosineSimilarity computes dot(a,b) / (|a| * |b|) without requiring the
// inputs to be pre-normalized. Zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
